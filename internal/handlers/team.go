package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/middleware"
	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TeamHandler handles team formation and roster management.
type TeamHandler struct {
	teamRepo         *repository.TeamRepository
	userRepo         *repository.UserRepository
	competitionRepo  *repository.CompetitionRepository
	registrationRepo *repository.RegistrationRepository
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(
	teamRepo *repository.TeamRepository,
	userRepo *repository.UserRepository,
	competitionRepo *repository.CompetitionRepository,
	registrationRepo *repository.RegistrationRepository,
) *TeamHandler {
	return &TeamHandler{
		teamRepo:         teamRepo,
		userRepo:         userRepo,
		competitionRepo:  competitionRepo,
		registrationRepo: registrationRepo,
	}
}

// CreateTeamRequest is the body for POST /api/teams/.
type CreateTeamRequest struct {
	TeamName      string `json:"team_name"`
	CompetitionID int64  `json:"competition_id"`
}

// AddMemberRequest is the body for POST /api/teams/{id}/add-member/.
type AddMemberRequest struct {
	Email string `json:"email"`
}

// List handles GET /api/teams/
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var competitionID int64
	if raw := r.URL.Query().Get("competition"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, "Invalid competition filter", http.StatusBadRequest)
			return
		}
		competitionID = id
	}
	onlyOpen := r.URL.Query().Get("is_looking_for_members") == "true"

	records := h.teamRepo.ListByCompetition(ctx, competitionID)
	out := make([]models.Team, 0, len(records))
	for i := range records {
		team, err := h.hydrate(r.Context(), &records[i])
		if err != nil {
			continue
		}
		if onlyOpen && !team.IsLookingForMembers {
			continue
		}
		out = append(out, *team)
	}
	respondJSON(w, http.StatusOK, out)
}

// Get handles GET /api/teams/{id}/
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, "Invalid team id", http.StatusBadRequest)
		return
	}

	rec, err := h.teamRepo.GetByID(r.Context(), id)
	if err != nil {
		respondDetail(w, "Not found.", http.StatusNotFound)
		return
	}

	team, err := h.hydrate(r.Context(), rec)
	if err != nil {
		respondError(w, "Failed to load team", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// Create handles POST /api/teams/. The creator becomes the leader and is
// registered for the competition in the same request.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TeamName) == "" {
		respondError(w, "team_name is required", http.StatusBadRequest)
		return
	}

	competition, err := h.competitionRepo.GetByID(ctx, req.CompetitionID)
	if err != nil {
		respondError(w, "Competition not found", http.StatusNotFound)
		return
	}
	if !competition.IsTeamBased {
		respondError(w, "Competition is not team-based", http.StatusBadRequest)
		return
	}
	if competition.RegistrationClosed(time.Now()) {
		respondError(w, "Registration for this competition is closed", http.StatusBadRequest)
		return
	}

	if _, err := h.registrationRepo.Create(ctx, userID, competition.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondError(w, "Failed to create team", http.StatusInternalServerError)
		return
	}

	rec := h.teamRepo.Create(ctx, strings.TrimSpace(req.TeamName), competition.ID, userID)

	log.Info().
		Int64("team_id", rec.ID).
		Int64("leader_id", userID).
		Int64("competition_id", competition.ID).
		Msg("Team created")

	team, err := h.hydrate(r.Context(), rec)
	if err != nil {
		respondError(w, "Failed to load team", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

// Join handles POST /api/teams/{id}/join/
func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, "Invalid team id", http.StatusBadRequest)
		return
	}

	rec, err := h.teamRepo.GetByID(ctx, id)
	if err != nil {
		respondError(w, "Team not found", http.StatusNotFound)
		return
	}

	competition, err := h.competitionRepo.GetByID(ctx, rec.CompetitionID)
	if err != nil {
		respondError(w, "Competition not found", http.StatusNotFound)
		return
	}
	if competition.RegistrationClosed(time.Now()) {
		respondError(w, "Registration for this competition is closed", http.StatusBadRequest)
		return
	}
	if h.registrationRepo.Exists(ctx, userID, competition.ID) {
		respondError(w, repository.ErrAlreadyRegistered.Error(), http.StatusBadRequest)
		return
	}

	if err := h.teamRepo.AddMember(ctx, rec.ID, userID, competition.MaxParticipants); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyMember), errors.Is(err, repository.ErrTeamFull):
			respondError(w, err.Error(), http.StatusBadRequest)
		default:
			respondError(w, "Failed to join team", http.StatusInternalServerError)
		}
		return
	}
	if _, err := h.registrationRepo.Create(ctx, userID, competition.ID); err != nil {
		respondError(w, "Failed to join team", http.StatusInternalServerError)
		return
	}

	log.Info().
		Int64("team_id", rec.ID).
		Int64("user_id", userID).
		Msg("User joined team")

	updated, err := h.teamRepo.GetByID(ctx, rec.ID)
	if err != nil {
		respondError(w, "Failed to load team", http.StatusInternalServerError)
		return
	}
	team, err := h.hydrate(r.Context(), updated)
	if err != nil {
		respondError(w, "Failed to load team", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// AddMember handles POST /api/teams/{id}/add-member/. Leader only.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, "Invalid team id", http.StatusBadRequest)
		return
	}

	rec, err := h.teamRepo.GetByID(ctx, id)
	if err != nil {
		respondError(w, "Team not found", http.StatusNotFound)
		return
	}
	if rec.LeaderID != userID {
		respondDetail(w, "You do not have permission to perform this action.", http.StatusForbidden)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		respondError(w, "email is required", http.StatusBadRequest)
		return
	}

	member, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		respondError(w, "User not found", http.StatusBadRequest)
		return
	}

	competition, err := h.competitionRepo.GetByID(ctx, rec.CompetitionID)
	if err != nil {
		respondError(w, "Competition not found", http.StatusNotFound)
		return
	}
	if h.registrationRepo.Exists(ctx, member.ID, competition.ID) {
		if rec.HasMember(member.ID) {
			respondError(w, repository.ErrAlreadyMember.Error(), http.StatusBadRequest)
			return
		}
		respondError(w, repository.ErrAlreadyRegistered.Error(), http.StatusBadRequest)
		return
	}

	if err := h.teamRepo.AddMember(ctx, rec.ID, member.ID, competition.MaxParticipants); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyMember), errors.Is(err, repository.ErrTeamFull):
			respondError(w, err.Error(), http.StatusBadRequest)
		default:
			respondError(w, "Failed to add member", http.StatusInternalServerError)
		}
		return
	}
	if _, err := h.registrationRepo.Create(ctx, member.ID, competition.ID); err != nil {
		respondError(w, "Failed to add member", http.StatusInternalServerError)
		return
	}

	log.Info().
		Int64("team_id", rec.ID).
		Int64("member_id", member.ID).
		Msg("Member added")

	updated, err := h.teamRepo.GetByID(ctx, rec.ID)
	if err != nil {
		respondError(w, "Failed to load team", http.StatusInternalServerError)
		return
	}
	team, err := h.hydrate(r.Context(), updated)
	if err != nil {
		respondError(w, "Failed to load team", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// RemoveMember handles DELETE /api/teams/{id}/remove-member/{memberID}/.
// Leader only; the leader cannot be removed.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, "Invalid team id", http.StatusBadRequest)
		return
	}
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		respondError(w, "Invalid member id", http.StatusBadRequest)
		return
	}

	rec, err := h.teamRepo.GetByID(ctx, id)
	if err != nil {
		respondError(w, "Team not found", http.StatusNotFound)
		return
	}
	if rec.LeaderID != userID {
		respondDetail(w, "You do not have permission to perform this action.", http.StatusForbidden)
		return
	}
	if memberID == rec.LeaderID {
		respondError(w, "Cannot remove the team leader", http.StatusBadRequest)
		return
	}

	if err := h.teamRepo.RemoveMember(ctx, rec.ID, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Member not found", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to remove member", http.StatusInternalServerError)
		return
	}
	h.registrationRepo.Delete(ctx, memberID, rec.CompetitionID)

	log.Info().
		Int64("team_id", rec.ID).
		Int64("member_id", memberID).
		Msg("Member removed")

	w.WriteHeader(http.StatusNoContent)
}

// hydrate expands a stored team into its wire shape. is_looking_for_members
// is computed server-side from the roster size and the competition cap.
func (h *TeamHandler) hydrate(ctx context.Context, rec *repository.TeamRecord) (*models.Team, error) {
	competition, err := h.competitionRepo.GetByID(ctx, rec.CompetitionID)
	if err != nil {
		return nil, err
	}
	leader, err := h.userRepo.GetByID(ctx, rec.LeaderID)
	if err != nil {
		return nil, err
	}

	members := make([]models.User, 0, len(rec.MemberIDs))
	for _, memberID := range rec.MemberIDs {
		member, err := h.userRepo.GetByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}

	return &models.Team{
		ID:                  rec.ID,
		Name:                rec.Name,
		Competition:         *competition,
		Leader:              *leader,
		Members:             members,
		IsLookingForMembers: len(members) < competition.MaxParticipants,
		CreatedAt:           rec.CreatedAt,
	}, nil
}
