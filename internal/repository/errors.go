package repository

import "errors"

// Domain rule violations reported by the in-memory repositories. Handlers
// map these onto the API error envelope.
var (
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("a user with this email already exists")
	ErrAlreadyRegistered = errors.New("User is already registered for this competition")
	ErrAlreadyMember     = errors.New("User is already a member of this team")
	ErrTeamFull          = errors.New("Team already has the maximum number of members")
)
