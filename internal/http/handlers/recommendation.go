package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"labmatch/internal/app"
	"labmatch/internal/http/middleware"
	"labmatch/internal/http/response"
)

type RecommendationHandler struct {
	recommendations *app.RecommendationService
}

func NewRecommendationHandler(recommendations *app.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

func (h *RecommendationHandler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	ranked, err := h.recommendations.RecommendProjects(r.Context(), studentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ranked)
}

func (h *RecommendationHandler) Top(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	limit, _ := strconv.Atoi(chi.URLParam(r, "limit"))
	ranked, err := h.recommendations.TopRecommendations(r.Context(), studentID, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ranked)
}

func (h *RecommendationHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	professorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	projectID, err := idParam(r, "projectID")
	if err != nil {
		response.Error(w, err)
		return
	}
	ranked, err := h.recommendations.RankCandidates(r.Context(), professorID, projectID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ranked)
}

func (h *RecommendationHandler) Match(w http.ResponseWriter, r *http.Request) {
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
	details, err := h.recommendations.MatchDetails(r.Context(), actorID, applicationID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, details)
}

func (h *RecommendationHandler) SkillGap(w http.ResponseWriter, r *http.Request) {
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
	report, err := h.recommendations.SkillGap(r.Context(), studentID, projectID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}
