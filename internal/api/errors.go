package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for 401 responses so callers can route the
// user to sign-in instead of showing an inline message.
var ErrUnauthorized = errors.New("authentication required")

const genericFailureMessage = "request failed"

// Error is a non-2xx API response. Message carries the best available text
// from the response envelope.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// envelope is the error body shape the backend responds with. detail is
// preferred over error when both are present.
type envelope struct {
	Detail string `json:"detail"`
	ErrMsg string `json:"error"`
}

func (e *envelope) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.ErrMsg != "" {
		return e.ErrMsg
	}
	return genericFailureMessage
}

// newError maps a non-2xx status and decoded envelope to an error value.
func newError(statusCode int, env envelope) error {
	if statusCode == 401 {
		return fmt.Errorf("%s: %w", env.message(), ErrUnauthorized)
	}
	return &Error{StatusCode: statusCode, Message: env.message()}
}
