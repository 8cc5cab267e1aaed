package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RakhaaNZ/CompVerse-app/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles account creation and token issuance.
type AuthHandler struct {
	userRepo *repository.UserRepository
	tokens   *Tokens
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userRepo *repository.UserRepository, tokens *Tokens) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, tokens: tokens}
}

// SignUpRequest is the body for POST /api/auth/register/.
type SignUpRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// TokenRequest is the body for POST /api/token/.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the issued token pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest is the body for POST /api/token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// SignUp handles POST /api/auth/register/
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	user, err := h.userRepo.Create(r.Context(), req.FirstName, req.LastName, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondError(w, err.Error(), http.StatusConflict)
			return
		}
		respondError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User created")
	respondJSON(w, http.StatusCreated, user)
}

// Token handles POST /api/token/
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		respondDetail(w, "No active account found with the given credentials", http.StatusUnauthorized)
		return
	}

	hash, err := h.userRepo.PasswordHash(r.Context(), user.ID)
	if err != nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		respondDetail(w, "No active account found with the given credentials", http.StatusUnauthorized)
		return
	}

	access, refresh, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}

// Refresh handles POST /api/token/refresh/
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.tokens.ValidateRefresh(req.Refresh)
	if err != nil {
		respondDetail(w, "Token is invalid or expired", http.StatusUnauthorized)
		return
	}

	access, refresh, err := h.tokens.Issue(userID)
	if err != nil {
		respondError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}
