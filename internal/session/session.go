// Package session owns the caller's credentials for the lifetime of a run.
// Components receive a *Session explicitly instead of reading ambient
// storage, so there is a single owner for the token and the identity
// derived from it.
package session

import (
	"os"
	"strings"
)

// TokenEnvVar is consulted before the token file.
const TokenEnvVar = "COMPVERSE_TOKEN"

// Session carries the bearer token and the fallback identity used when the
// token payload cannot be decoded.
type Session struct {
	token          string
	fallbackUserID int64
}

// New creates a session around an explicit token.
func New(token string) *Session {
	return &Session{token: strings.TrimSpace(token)}
}

// Load resolves the token from the environment, then from the token file.
// An unreadable or absent file yields an anonymous session, not an error;
// authenticated calls will fail with 401 and surface from there.
func Load(tokenFile string, fallbackUserID int64) *Session {
	s := &Session{fallbackUserID: fallbackUserID}

	if token := os.Getenv(TokenEnvVar); token != "" {
		s.token = strings.TrimSpace(token)
		return s
	}

	if tokenFile != "" {
		if data, err := os.ReadFile(tokenFile); err == nil {
			s.token = strings.TrimSpace(string(data))
		}
	}

	return s
}

// SetFallbackUserID records the locally cached identity used when the token
// payload cannot be decoded.
func (s *Session) SetFallbackUserID(id int64) {
	s.fallbackUserID = id
}

// Token returns the raw bearer token, empty when anonymous.
func (s *Session) Token() string {
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

// UserID resolves the caller's user id from the token claims, falling back
// to the locally cached id when decoding fails. The second return is false
// when no identity could be resolved at all.
func (s *Session) UserID() (int64, bool) {
	if s.token != "" {
		if claims, err := DecodeClaims(s.token); err == nil && claims.UserID != 0 {
			return claims.UserID, true
		}
	}
	if s.fallbackUserID != 0 {
		return s.fallbackUserID, true
	}
	return 0, false
}
