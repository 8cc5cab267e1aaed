package services

import "errors"

// Validation errors reported before any request is issued.
var (
	ErrBusy               = errors.New("another operation is in progress")
	ErrRegistrationClosed = errors.New("registration for this competition is closed")
	ErrNoTeamSelected     = errors.New("please select a team first")
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrRemoveLeader       = errors.New("the team leader cannot be removed")
	ErrNotConfirmed       = errors.New("removal was not confirmed")
)

// Conflicts recognized from server error messages.
var (
	ErrAlreadyRegistered = errors.New("you're already registered for this competition")
	ErrAlreadyMember     = errors.New("this user is already a member of the team")
)
