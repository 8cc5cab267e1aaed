package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"
)

// CompetitionRepository stores stub competitions.
type CompetitionRepository struct {
	mu           sync.Mutex
	competitions map[int64]models.Competition
	nextID       int64
}

// NewCompetitionRepository creates an empty competition repository.
func NewCompetitionRepository() *CompetitionRepository {
	return &CompetitionRepository{competitions: make(map[int64]models.Competition)}
}

// Create stores a competition and assigns its id.
func (r *CompetitionRepository) Create(ctx context.Context, competition models.Competition) models.Competition {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	competition.ID = r.nextID
	r.competitions[competition.ID] = competition
	return competition
}

// GetByID retrieves a competition by id.
func (r *CompetitionRepository) GetByID(ctx context.Context, id int64) (*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	competition, ok := r.competitions[id]
	if !ok {
		return nil, fmt.Errorf("competition %d: %w", id, ErrNotFound)
	}
	return &competition, nil
}

// List retrieves competitions, optionally filtered by category and type.
// Results are ordered by id.
func (r *CompetitionRepository) List(ctx context.Context, category, competitionType string) []models.Competition {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Competition, 0, len(r.competitions))
	for _, competition := range r.competitions {
		if category != "" && competition.Category != category {
			continue
		}
		if competitionType != "" && competition.Type != competitionType {
			continue
		}
		out = append(out, competition)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
