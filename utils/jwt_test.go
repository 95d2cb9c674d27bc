package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-key-for-unit-tests"

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestGenerateSessionToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateSessionToken(testSecret, userID, "member@test.com", time.Hour)
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	claims, err := ValidateSessionToken(testSecret, token)
	if err != nil {
		t.Fatalf("expected no error validating token, got: %v", err)
	}

	got, err := claims.UserID()
	if err != nil {
		t.Fatalf("expected subject to parse, got: %v", err)
	}
	if got != userID {
		t.Errorf("expected user %s, got %s", userID, got)
	}
	if claims.Email != "member@test.com" {
		t.Errorf("expected email member@test.com, got %s", claims.Email)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, uuid.New(), "expired@test.com", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateSessionToken(testSecret, token); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestSessionWrongSecretRejected(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Audience:  jwt.ClaimStrings{SessionAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := signClaims(t, jwt.SigningMethodHS256, []byte("some-other-secret"), claims)

	if _, err := ValidateSessionToken(testSecret, token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestSessionWrongAudienceRejected(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Audience:  jwt.ClaimStrings{"anon"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

	if _, err := ValidateSessionToken(testSecret, token); err == nil {
		t.Fatal("expected error for wrong audience")
	}
}

func TestSessionNonUUIDSubjectRejected(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Audience:  jwt.ClaimStrings{SessionAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

	if _, err := ValidateSessionToken(testSecret, token); err == nil {
		t.Fatal("expected error for non-uuid subject")
	}
}

func TestSessionMissingExpiryRejected(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  uuid.New().String(),
			Audience: jwt.ClaimStrings{SessionAudience},
		},
	}
	token := signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

	if _, err := ValidateSessionToken(testSecret, token); err == nil {
		t.Fatal("expected error for token without expiry")
	}
}

func TestSessionGarbageRejected(t *testing.T) {
	if _, err := ValidateSessionToken(testSecret, "not.a.jwt"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestSessionEmptySecretRejected(t *testing.T) {
	if _, err := GenerateSessionToken("", uuid.New(), "member@test.com", time.Hour); err == nil {
		t.Fatal("expected error signing without a secret")
	}

	token, err := GenerateSessionToken(testSecret, uuid.New(), "member@test.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateSessionToken("", token); err == nil {
		t.Fatal("expected error validating without a secret")
	}
}
