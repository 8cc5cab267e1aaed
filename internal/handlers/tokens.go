package handlers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Tokens issues and validates the stub server's HS256 bearer tokens. The
// payload carries the same user_id claim the production auth provider
// issues, so the client's identity decoding works against the stub.
type Tokens struct {
	secret string
}

// NewTokens creates a token issuer around a shared secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: secret}
}

// Issue returns an access and a refresh token for a user.
func (t *Tokens) Issue(userID int64) (access, refresh string, err error) {
	access, err = t.sign(userID, "access", accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = t.sign(userID, "refresh", refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *Tokens) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"jti":        uuid.NewString(),
		"exp":        time.Now().Add(ttl).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks an access token and returns the user id it carries.
func (t *Tokens) Validate(tokenString string) (int64, error) {
	return t.validate(tokenString, "access")
}

// ValidateRefresh checks a refresh token and returns the user id.
func (t *Tokens) ValidateRefresh(tokenString string) (int64, error) {
	return t.validate(tokenString, "refresh")
}

func (t *Tokens) validate(tokenString, wantType string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != wantType {
		return 0, fmt.Errorf("token is not an %s token", wantType)
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("user_id not found in token")
	}
	return int64(userID), nil
}
