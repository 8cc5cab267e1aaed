package services

import (
	"context"
	"strings"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"
	"github.com/RakhaaNZ/CompVerse-app/internal/session"

	"github.com/rs/zerolog/log"
)

// TeamAPI is the slice of the API the team service drives.
type TeamAPI interface {
	GetTeam(ctx context.Context, id int64) (*models.Team, error)
	AddTeamMember(ctx context.Context, teamID int64, email string) error
	RemoveTeamMember(ctx context.Context, teamID, memberID int64) error
}

// ConfirmFunc gates destructive operations. It returns true when the user
// confirmed the prompt.
type ConfirmFunc func(prompt string) bool

// TeamService manages a team's roster after formation. Add and remove are
// leader-only; the server enforces that authoritatively, IsLeader only
// controls what the client offers.
type TeamService struct {
	api     TeamAPI
	session *session.Session
	confirm ConfirmFunc
}

// NewTeamService creates a team service. confirm may be nil, in which case
// removals are always declined.
func NewTeamService(apiClient TeamAPI, sess *session.Session, confirm ConfirmFunc) *TeamService {
	return &TeamService{
		api:     apiClient,
		session: sess,
		confirm: confirm,
	}
}

// Team fetches a team's current roster.
func (s *TeamService) Team(ctx context.Context, teamID int64) (*models.Team, error) {
	return s.api.GetTeam(ctx, teamID)
}

// IsLeader reports whether the session's user leads the team. An identity
// that cannot be resolved degrades to false, never an error.
func (s *TeamService) IsLeader(team *models.Team) bool {
	userID, ok := s.session.UserID()
	return ok && userID == team.Leader.ID
}

// AddMember adds a user to the team by email and re-fetches the roster.
// The returned team is the server's post-mutation state; no local merge is
// performed. An "already a member" rejection is surfaced as
// ErrAlreadyMember.
func (s *TeamService) AddMember(ctx context.Context, teamID int64, email string) (*models.Team, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !plausibleEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := s.api.AddTeamMember(ctx, teamID, email); err != nil {
		if strings.Contains(err.Error(), "already a member") {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	log.Info().
		Int64("team_id", teamID).
		Str("email", email).
		Msg("Member added")

	return s.api.GetTeam(ctx, teamID)
}

// RemoveMember removes a member after user confirmation and re-fetches the
// roster. The leader can never be removed through this path; the guard
// rejects before any request is issued.
func (s *TeamService) RemoveMember(ctx context.Context, team *models.Team, memberID int64) (*models.Team, error) {
	if memberID == team.Leader.ID {
		return nil, ErrRemoveLeader
	}
	if s.confirm == nil || !s.confirm("Are you sure you want to remove this member?") {
		return nil, ErrNotConfirmed
	}

	if err := s.api.RemoveTeamMember(ctx, team.ID, memberID); err != nil {
		return nil, err
	}

	log.Info().
		Int64("team_id", team.ID).
		Int64("member_id", memberID).
		Msg("Member removed")

	return s.api.GetTeam(ctx, team.ID)
}

// plausibleEmail is a cheap syntactic check, not validation. The server
// decides whether the address maps to a user.
func plausibleEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}
