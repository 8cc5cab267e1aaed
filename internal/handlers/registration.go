package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/middleware"
	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/repository"

	"github.com/rs/zerolog/log"
)

// RegistrationHandler handles individual registrations.
type RegistrationHandler struct {
	registrationRepo *repository.RegistrationRepository
	competitionRepo  *repository.CompetitionRepository
	userRepo         *repository.UserRepository
}

// NewRegistrationHandler creates a new registration handler.
func NewRegistrationHandler(
	registrationRepo *repository.RegistrationRepository,
	competitionRepo *repository.CompetitionRepository,
	userRepo *repository.UserRepository,
) *RegistrationHandler {
	return &RegistrationHandler{
		registrationRepo: registrationRepo,
		competitionRepo:  competitionRepo,
		userRepo:         userRepo,
	}
}

// CreateRegistrationRequest is the body for POST /api/registrations/.
type CreateRegistrationRequest struct {
	CompetitionID int64 `json:"competition_id"`
}

// Create handles POST /api/registrations/
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CompetitionID == 0 {
		respondError(w, "competition_id is required", http.StatusBadRequest)
		return
	}

	competition, err := h.competitionRepo.GetByID(ctx, req.CompetitionID)
	if err != nil {
		respondError(w, "Competition not found", http.StatusNotFound)
		return
	}
	if competition.RegistrationClosed(time.Now()) {
		respondError(w, "Registration for this competition is closed", http.StatusBadRequest)
		return
	}

	rec, err := h.registrationRepo.Create(ctx, userID, competition.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondError(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	log.Info().
		Int64("user_id", userID).
		Int64("competition_id", competition.ID).
		Msg("Registration created")

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		respondError(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, models.Registration{
		ID:           rec.ID,
		User:         *user,
		Competition:  *competition,
		RegisteredAt: rec.RegisteredAt,
	})
}

// List handles GET /api/registrations/
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var competitionID, userID int64
	if raw := r.URL.Query().Get("competition"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, "Invalid competition filter", http.StatusBadRequest)
			return
		}
		competitionID = id
	}
	if raw := r.URL.Query().Get("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, "Invalid user filter", http.StatusBadRequest)
			return
		}
		userID = id
	}

	records := h.registrationRepo.List(ctx, competitionID, userID)
	out := make([]models.Registration, 0, len(records))
	for _, rec := range records {
		user, err := h.userRepo.GetByID(ctx, rec.UserID)
		if err != nil {
			continue
		}
		competition, err := h.competitionRepo.GetByID(ctx, rec.CompetitionID)
		if err != nil {
			continue
		}
		out = append(out, models.Registration{
			ID:           rec.ID,
			User:         *user,
			Competition:  *competition,
			RegisteredAt: rec.RegisteredAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
