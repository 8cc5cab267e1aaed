package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the token payload the client cares about.
type Claims struct {
	UserID int64 `json:"user_id"`
}

// DecodeClaims extracts claims from the token payload without verifying the
// signature. The server is the only party that verifies tokens; the client
// only needs the identity hint. Any malformed token returns an error, never
// a panic.
func DecodeClaims(token string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("failed to decode token payload: %w", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("unexpected token claims type")
	}

	raw, ok := mapClaims["user_id"]
	if !ok {
		return Claims{}, fmt.Errorf("user_id not found in token")
	}

	var userID int64
	switch v := raw.(type) {
	case float64:
		userID = int64(v)
	case string:
		if _, err := fmt.Sscan(v, &userID); err != nil {
			return Claims{}, fmt.Errorf("invalid user_id claim %q", v)
		}
	default:
		return Claims{}, fmt.Errorf("invalid user_id claim type %T", raw)
	}

	return Claims{UserID: userID}, nil
}
