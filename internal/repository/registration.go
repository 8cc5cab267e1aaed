package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RegistrationRecord binds a user id to a competition id. Team joins and
// team creation register members through this repository too, so the
// one-registration-per-user-per-competition rule has a single enforcement
// point.
type RegistrationRecord struct {
	ID            int64
	UserID        int64
	CompetitionID int64
	RegisteredAt  time.Time
}

// RegistrationRepository stores stub registrations.
type RegistrationRepository struct {
	mu            sync.Mutex
	registrations map[int64]RegistrationRecord
	nextID        int64
}

// NewRegistrationRepository creates an empty registration repository.
func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{registrations: make(map[int64]RegistrationRecord)}
}

// Create registers a user for a competition. A duplicate (user,
// competition) pair returns ErrAlreadyRegistered.
func (r *RegistrationRepository) Create(ctx context.Context, userID, competitionID int64) (*RegistrationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.registrations {
		if rec.UserID == userID && rec.CompetitionID == competitionID {
			return nil, ErrAlreadyRegistered
		}
	}

	r.nextID++
	rec := RegistrationRecord{
		ID:            r.nextID,
		UserID:        userID,
		CompetitionID: competitionID,
		RegisteredAt:  time.Now(),
	}
	r.registrations[rec.ID] = rec
	return &rec, nil
}

// Exists reports whether the user is registered for the competition.
func (r *RegistrationRepository) Exists(ctx context.Context, userID, competitionID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.registrations {
		if rec.UserID == userID && rec.CompetitionID == competitionID {
			return true
		}
	}
	return false
}

// Delete removes the registration binding the user to the competition.
// Missing registrations are ignored.
func (r *RegistrationRepository) Delete(ctx context.Context, userID, competitionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.registrations {
		if rec.UserID == userID && rec.CompetitionID == competitionID {
			delete(r.registrations, id)
			return
		}
	}
}

// List retrieves registrations, optionally filtered by competition and
// user. Zero values skip the corresponding filter.
func (r *RegistrationRepository) List(ctx context.Context, competitionID, userID int64) []RegistrationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RegistrationRecord, 0)
	for _, rec := range r.registrations {
		if competitionID != 0 && rec.CompetitionID != competitionID {
			continue
		}
		if userID != 0 && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
