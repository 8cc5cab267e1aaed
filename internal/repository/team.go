package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// TeamRecord is the stored shape of a team. Member ids include the leader.
type TeamRecord struct {
	ID            int64
	Name          string
	CompetitionID int64
	LeaderID      int64
	MemberIDs     []int64
	CreatedAt     time.Time
}

// HasMember reports whether the user is on the roster.
func (t *TeamRecord) HasMember(userID int64) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TeamRepository stores stub teams.
type TeamRepository struct {
	mu     sync.Mutex
	teams  map[int64]*TeamRecord
	nextID int64
}

// NewTeamRepository creates an empty team repository.
func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[int64]*TeamRecord)}
}

// Create stores a new team with the leader as its first member.
func (r *TeamRepository) Create(ctx context.Context, name string, competitionID, leaderID int64) *TeamRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	team := &TeamRecord{
		ID:            r.nextID,
		Name:          name,
		CompetitionID: competitionID,
		LeaderID:      leaderID,
		MemberIDs:     []int64{leaderID},
		CreatedAt:     time.Now(),
	}
	r.teams[team.ID] = team
	return team
}

// GetByID retrieves a team by id.
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*TeamRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	copied := *team
	copied.MemberIDs = append([]int64(nil), team.MemberIDs...)
	return &copied, nil
}

// ListByCompetition retrieves teams for a competition, ordered by id.
func (r *TeamRepository) ListByCompetition(ctx context.Context, competitionID int64) []TeamRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TeamRecord, 0)
	for _, team := range r.teams {
		if competitionID != 0 && team.CompetitionID != competitionID {
			continue
		}
		copied := *team
		copied.MemberIDs = append([]int64(nil), team.MemberIDs...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddMember appends a user to the roster, capped at maxMembers.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID int64, maxMembers int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	if team.HasMember(userID) {
		return ErrAlreadyMember
	}
	if maxMembers > 0 && len(team.MemberIDs) >= maxMembers {
		return ErrTeamFull
	}
	team.MemberIDs = append(team.MemberIDs, userID)
	return nil
}

// RemoveMember drops a user from the roster.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	for i, id := range team.MemberIDs {
		if id == userID {
			team.MemberIDs = append(team.MemberIDs[:i], team.MemberIDs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("member %d: %w", userID, ErrNotFound)
}
