package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionTokenService_SignParse(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	token, err := svc.Sign("session-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sessionID, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sessionID != "session-1" {
		t.Fatalf("expected session-1, got %s", sessionID)
	}
}

func TestSessionTokenService_Expired(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Minute)
	issued := time.Now().UTC().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.Sign("session-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	svc.now = func() time.Time { return time.Now().UTC() }

	if _, err := svc.Parse(token); !errors.Is(err, ErrSessionTokenExpired) {
		t.Fatalf("expected ErrSessionTokenExpired, got %v", err)
	}
}

func TestSessionTokenService_RejectsForeignTokens(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	other := NewSessionTokenService("other-secret", time.Hour)
	foreign, err := other.Sign("session-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Parse(foreign); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid for wrong secret, got %v", err)
	}

	wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   "session-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := wrongType.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign wrong type: %v", err)
	}
	if _, err := svc.Parse(signed); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid for wrong token type, got %v", err)
	}

	if _, err := svc.Parse("   "); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid for blank token, got %v", err)
	}
}

func TestSessionTokenService_EmptySecret(t *testing.T) {
	svc := NewSessionTokenService("", time.Hour)
	if _, err := svc.Sign("session-1"); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
	}
}
