package handlers

import (
	"net/http"

	"github.com/RakhaaNZ/CompVerse-app/internal/middleware"
	"github.com/RakhaaNZ/CompVerse-app/internal/repository"
)

// UserHandler handles profile reads.
type UserHandler struct {
	userRepo *repository.UserRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Current handles GET /api/users/ and resolves the authenticated profile.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondDetail(w, "Not found.", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
