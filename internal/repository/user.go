// Package repository holds the stub API server's in-memory state. Each
// repository guards its own maps with a mutex; there is no persistence, a
// restart starts empty.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"
)

// UserRepository stores stub user accounts.
type UserRepository struct {
	mu     sync.Mutex
	users  map[int64]*userRecord
	nextID int64
}

type userRecord struct {
	user         models.User
	passwordHash []byte
}

// NewUserRepository creates an empty user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*userRecord)}
}

// Create stores a new user. Emails are unique.
func (r *UserRepository) Create(ctx context.Context, firstName, lastName, email string, passwordHash []byte) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.users {
		if rec.user.Email == email {
			return nil, ErrEmailTaken
		}
	}

	r.nextID++
	user := models.User{
		ID:        r.nextID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}
	r.users[user.ID] = &userRecord{user: user, passwordHash: passwordHash}
	return &user, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	user := rec.user
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.users {
		if rec.user.Email == email {
			user := rec.user
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

// PasswordHash returns the stored credential for a user id.
func (r *UserRepository) PasswordHash(ctx context.Context, id int64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return rec.passwordHash, nil
}
