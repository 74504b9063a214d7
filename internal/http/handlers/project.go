package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"labmatch/internal/app"
	"labmatch/internal/domain/project"
	"labmatch/internal/http/middleware"
	"labmatch/internal/http/response"
)

type ProjectHandler struct {
	projects *app.ProjectService
}

func NewProjectHandler(projects *app.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Department     string   `json:"department"`
	Category       string   `json:"category"`
	Technologies   []string `json:"technologies"`
	RequiredSkills []string `json:"required_skills"`
	MaxInterns     int      `json:"max_interns"`
	Status         string   `json:"status"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	supervisorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.projects.Create(r.Context(), project.Project{
		Title:          req.Title,
		Description:    req.Description,
		SupervisorID:   supervisorID,
		Department:     req.Department,
		Category:       req.Category,
		Technologies:   req.Technologies,
		RequiredSkills: req.RequiredSkills,
		MaxInterns:     req.MaxInterns,
		Status:         project.Status(req.Status),
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

type projectPatchRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Department     *string  `json:"department"`
	Category       *string  `json:"category"`
	Technologies   []string `json:"technologies"`
	RequiredSkills []string `json:"required_skills"`
	MaxInterns     *int     `json:"max_interns"`
	Status         *string  `json:"status"`
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	supervisorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idParam(r, "projectID")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req projectPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	patch := app.ProjectPatch{
		Title:          req.Title,
		Description:    req.Description,
		Department:     req.Department,
		Category:       req.Category,
		Technologies:   req.Technologies,
		RequiredSkills: req.RequiredSkills,
		MaxInterns:     req.MaxInterns,
	}
	if req.Status != nil {
		status := project.Status(*req.Status)
		patch.Status = &status
	}
	updated, err := h.projects.Update(r.Context(), supervisorID, projectID, patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	supervisorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idParam(r, "projectID")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.projects.Delete(r.Context(), supervisorID, projectID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

type projectListResponse struct {
	Items []project.Project `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	items, total, err := h.projects.List(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []project.Project{}
	}
	response.JSON(w, http.StatusOK, projectListResponse{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit})
}

func (h *ProjectHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	supervisorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.projects.ListMine(r.Context(), supervisorID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

type applyRequest struct {
	CoverLetter string   `json:"cover_letter"`
	Documents   []string `json:"documents"`
}

// Apply is the project-scoped application route. It shares the submit path
// with POST /applications.
func (h *ProjectHandler) Apply(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idParam(r, "projectID")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.projects.Apply(r.Context(), studentID, projectID, req.CoverLetter, req.Documents)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.projects.Stats(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func filterFromQuery(r *http.Request) project.Filter {
	q := r.URL.Query()
	filter := project.Filter{
		Department: strings.TrimSpace(q.Get("department")),
		Category:   strings.TrimSpace(q.Get("category")),
		Status:     project.Status(strings.TrimSpace(q.Get("status"))),
		Search:     strings.TrimSpace(q.Get("search")),
		Page:       1,
		Limit:      20,
	}
	if skills := strings.TrimSpace(q.Get("skills")); skills != "" {
		for _, skill := range strings.Split(skills, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				filter.Skills = append(filter.Skills, skill)
			}
		}
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		filter.Limit = limit
	}
	return filter
}
