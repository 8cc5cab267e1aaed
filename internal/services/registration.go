package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"

	"github.com/rs/zerolog/log"
)

// Mode is the registration workflow's client-visible state.
type Mode int

const (
	// ModeIndividual registers the caller directly; the only state for
	// non-team competitions.
	ModeIndividual Mode = iota
	// ModeChoose picks between finding and creating a team.
	ModeChoose
	// ModeFind lists open teams to join.
	ModeFind
	// ModeCreate collects a team name and invites.
	ModeCreate
	// ModeDone is terminal; the caller is registered.
	ModeDone
)

func (m Mode) String() string {
	switch m {
	case ModeIndividual:
		return "individual"
	case ModeChoose:
		return "choose"
	case ModeFind:
		return "find"
	case ModeCreate:
		return "create"
	case ModeDone:
		return "done"
	default:
		return "unknown"
	}
}

// RegistrationAPI is the slice of the API the coordinator drives.
type RegistrationAPI interface {
	ListOpenTeams(ctx context.Context, competitionID int64) ([]models.Team, error)
	JoinTeam(ctx context.Context, teamID int64) error
	CreateTeam(ctx context.Context, name string, competitionID int64) (*models.Team, error)
	AddTeamMember(ctx context.Context, teamID int64, email string) error
	CreateRegistration(ctx context.Context, competitionID int64) (*models.Registration, error)
}

// RegistrationCoordinator drives one user's registration into one
// competition. Mutating operations are serialized: a second call while one
// is in flight returns ErrBusy without issuing a request.
type RegistrationCoordinator struct {
	api          RegistrationAPI
	competition  models.Competition
	onRegistered func()
	now          func() time.Time

	mu             sync.Mutex
	busy           bool
	mode           Mode
	teams          []models.Team
	selectedTeamID int64
	lastErr        error
}

// NewRegistrationCoordinator creates a coordinator for one competition.
// onRegistered may be nil; it fires once on successful registration.
func NewRegistrationCoordinator(apiClient RegistrationAPI, competition models.Competition, onRegistered func()) *RegistrationCoordinator {
	mode := ModeIndividual
	if competition.IsTeamBased {
		mode = ModeChoose
	}
	return &RegistrationCoordinator{
		api:          apiClient,
		competition:  competition,
		onRegistered: onRegistered,
		now:          time.Now,
		mode:         mode,
	}
}

// Mode returns the current workflow state.
func (c *RegistrationCoordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// LastError returns the most recent failure, nil after a success.
func (c *RegistrationCoordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Teams returns the open teams fetched for ModeFind.
func (c *RegistrationCoordinator) Teams() []models.Team {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.teams
}

// SelectedTeamID returns the team chosen in ModeFind, 0 when none.
func (c *RegistrationCoordinator) SelectedTeamID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedTeamID
}

// ChooseFind switches a team-based workflow to ModeFind and fetches the
// open teams. A fetch failure records the error but stays in ModeFind so
// the user can retry.
func (c *RegistrationCoordinator) ChooseFind(ctx context.Context) error {
	c.mu.Lock()
	if !c.competition.IsTeamBased {
		c.mu.Unlock()
		return fmt.Errorf("competition %d is not team-based", c.competition.ID)
	}
	if c.mode != ModeChoose && c.mode != ModeFind {
		mode := c.mode
		c.mu.Unlock()
		return fmt.Errorf("cannot find teams from mode %s", mode)
	}
	c.mode = ModeFind
	c.mu.Unlock()

	return c.ListOpenTeams(ctx)
}

// ChooseCreate switches a team-based workflow to ModeCreate.
func (c *RegistrationCoordinator) ChooseCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.competition.IsTeamBased {
		return fmt.Errorf("competition %d is not team-based", c.competition.ID)
	}
	if c.mode != ModeChoose {
		return fmt.Errorf("cannot create a team from mode %s", c.mode)
	}
	c.mode = ModeCreate
	return nil
}

// Back returns from ModeFind or ModeCreate to ModeChoose, discarding any
// team selection.
func (c *RegistrationCoordinator) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeFind || c.mode == ModeCreate {
		c.mode = ModeChoose
		c.selectedTeamID = 0
		c.lastErr = nil
	}
}

// ListOpenTeams fetches the teams accepting members for this competition.
// Never called for individual competitions.
func (c *RegistrationCoordinator) ListOpenTeams(ctx context.Context) error {
	c.mu.Lock()
	if !c.competition.IsTeamBased {
		c.mu.Unlock()
		return fmt.Errorf("competition %d is not team-based", c.competition.ID)
	}
	competitionID := c.competition.ID
	c.mu.Unlock()

	teams, err := c.api.ListOpenTeams(ctx, competitionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		return err
	}
	c.teams = teams
	c.lastErr = nil
	return nil
}

// SelectTeam records the team to join in ModeFind.
func (c *RegistrationCoordinator) SelectTeam(teamID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedTeamID = teamID
}

// RegisterIndividual issues the individual registration request. Success
// transitions to ModeDone and fires onRegistered.
func (c *RegistrationCoordinator) RegisterIndividual(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	_, err := c.api.CreateRegistration(ctx, c.competition.ID)
	if err != nil {
		return c.fail(err)
	}

	log.Info().
		Int64("competition_id", c.competition.ID).
		Msg("Registered for competition")
	c.finish()
	return nil
}

// JoinTeam joins the selected team. Requires a prior SelectTeam; without
// one it fails locally with ErrNoTeamSelected and issues no request. An
// "already registered" rejection from the server is surfaced as
// ErrAlreadyRegistered.
func (c *RegistrationCoordinator) JoinTeam(ctx context.Context) error {
	c.mu.Lock()
	if c.selectedTeamID == 0 {
		c.lastErr = ErrNoTeamSelected
		c.mu.Unlock()
		return ErrNoTeamSelected
	}
	teamID := c.selectedTeamID
	c.mu.Unlock()

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.api.JoinTeam(ctx, teamID); err != nil {
		if strings.Contains(err.Error(), "already registered") {
			return c.fail(ErrAlreadyRegistered)
		}
		return c.fail(err)
	}

	log.Info().
		Int64("competition_id", c.competition.ID).
		Int64("team_id", teamID).
		Msg("Joined team")
	c.finish()
	return nil
}

// CreateTeam creates a team with the caller as leader; the server registers
// the leader for the competition as part of creation. Invite emails are
// delivered best-effort after creation: a failed invite is logged but does
// not fail the registration.
func (c *RegistrationCoordinator) CreateTeam(ctx context.Context, name string, inviteEmails []string) error {
	if strings.TrimSpace(name) == "" {
		c.mu.Lock()
		c.lastErr = ErrTeamNameRequired
		c.mu.Unlock()
		return ErrTeamNameRequired
	}

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	team, err := c.api.CreateTeam(ctx, strings.TrimSpace(name), c.competition.ID)
	if err != nil {
		return c.fail(err)
	}

	log.Info().
		Int64("competition_id", c.competition.ID).
		Int64("team_id", team.ID).
		Str("team_name", team.Name).
		Msg("Team created")

	for _, email := range inviteEmails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if err := c.api.AddTeamMember(ctx, team.ID, email); err != nil {
			log.Warn().
				Err(err).
				Int64("team_id", team.ID).
				Str("email", email).
				Msg("Failed to invite member")
		}
	}

	c.finish()
	return nil
}

// begin acquires the mutating-operation slot. It rejects with ErrBusy when
// another mutation is in flight and with ErrRegistrationClosed once the
// competition's registration deadline has passed; neither case issues a
// request.
func (c *RegistrationCoordinator) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.competition.RegistrationClosed(c.now()) {
		c.lastErr = ErrRegistrationClosed
		return ErrRegistrationClosed
	}
	c.busy = true
	return nil
}

func (c *RegistrationCoordinator) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// fail records the error; the mode is kept so the user can retry.
func (c *RegistrationCoordinator) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

// finish transitions to ModeDone and signals the caller.
func (c *RegistrationCoordinator) finish() {
	c.mu.Lock()
	c.mode = ModeDone
	c.lastErr = nil
	c.mu.Unlock()

	if c.onRegistered != nil {
		c.onRegistered()
	}
}
