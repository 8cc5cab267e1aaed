package handlers

import (
	"net/http"
	"strconv"

	"github.com/RakhaaNZ/CompVerse-app/internal/repository"

	"github.com/go-chi/chi/v5"
)

// CompetitionHandler handles competition reads.
type CompetitionHandler struct {
	competitionRepo *repository.CompetitionRepository
}

// NewCompetitionHandler creates a new competition handler.
func NewCompetitionHandler(competitionRepo *repository.CompetitionRepository) *CompetitionHandler {
	return &CompetitionHandler{competitionRepo: competitionRepo}
}

// List handles GET /api/competitions/
func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	competitionType := r.URL.Query().Get("type")

	competitions := h.competitionRepo.List(r.Context(), category, competitionType)
	respondJSON(w, http.StatusOK, competitions)
}

// Get handles GET /api/competitions/{id}/
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	competition, err := h.competitionRepo.GetByID(r.Context(), id)
	if err != nil {
		respondDetail(w, "Not found.", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, competition)
}
