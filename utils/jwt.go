package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionAudience is the audience Supabase stamps on end-user access tokens.
const SessionAudience = "authenticated"

// SessionClaims mirrors the claims of a Supabase access token. The user id
// travels in the subject.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject as the user's uuid.
func (c *SessionClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

var errNoSecret = errors.New("session secret is not configured")

// GenerateSessionToken signs a token shaped like the ones the identity provider
// issues. Used by tests and local tooling.
func GenerateSessionToken(secret string, userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errNoSecret
	}

	claims := SessionClaims{
		Email: email,
		Role:  SessionAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{SessionAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken verifies an access token against the project's JWT secret.
func ValidateSessionToken(secret, tokenString string) (*SessionClaims, error) {
	if secret == "" {
		return nil, errNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience(SessionAudience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		if _, err := claims.UserID(); err != nil {
			return nil, err
		}
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
