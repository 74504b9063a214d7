package handlers

import (
	"net/http"
	"strings"
	"time"

	"labmatch/internal/app"
	"labmatch/internal/common"
	"labmatch/internal/domain/user"
	"labmatch/internal/http/middleware"
	"labmatch/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter}
}

type submitRequest struct {
	ProjectID   string   `json:"project_id"`
	CoverLetter string   `json:"cover_letter"`
	Documents   []string `json:"documents"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"project_id": "project_id is required"}))
		return
	}
	projectID, err := common.ParseUUID(req.ProjectID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"project_id": "invalid uuid"}))
		return
	}
	if h.limiter != nil {
		key := "apply:" + studentID.String()
		if !h.limiter.Allow(key, 5, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
			return
		}
	}
	created, err := h.applications.Submit(r.Context(), studentID, projectID, req.CoverLetter, req.Documents)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// List dispatches on the caller's role: students see their own applications,
// professors see applications across their projects.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	switch role {
	case user.RoleStudent:
		items, err := h.applications.ListMine(r.Context(), actorID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, items)
	case user.RoleProfessor:
		items, err := h.applications.ListForSupervisor(r.Context(), actorID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, items)
	default:
		response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
	}
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idParam(r, "applicationID")
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.applications.Get(r.Context(), actorID, applicationID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	professorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idParam(r, "applicationID")
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.Approve(r.Context(), professorID, applicationID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	professorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idParam(r, "applicationID")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req rejectRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			response.Error(w, err)
			return
		}
	}
	updated, err := h.applications.Reject(r.Context(), professorID, applicationID, req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idParam(r, "applicationID")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.applications.Withdraw(r.Context(), studentID, applicationID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// Stats returns role-appropriate aggregates for the caller.
func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	role, _ := middleware.RoleFromContext(r.Context())
	switch role {
	case user.RoleStudent:
		stats, err := h.applications.StudentStats(r.Context(), actorID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, stats)
	case user.RoleProfessor:
		stats, err := h.applications.SupervisorStats(r.Context(), actorID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, stats)
	default:
		response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
	}
}
