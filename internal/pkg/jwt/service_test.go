package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	tok, err := svc.GenerateAccessToken(userID, "jordan@example.com")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "jordan@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("token type = %q, want access", claims.TokenType)
	}
	if svc.IsRefreshToken(claims) {
		t.Error("access token classified as refresh")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	tok, err := svc.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if !svc.IsRefreshToken(claims) {
		t.Error("refresh token not classified as refresh")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService()

	for _, tok := range []string{"", "not.a.jwt", "a.b.c"} {
		if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ValidateToken(%q) err = %v, want ErrTokenInvalid", tok, err)
		}
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	other := NewHMACService("other-access", "other-refresh", time.Minute, time.Hour)
	tok, err := other.GenerateAccessToken(uuid.New(), "x@y.z")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := newTestService().ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := svc.GenerateAccessToken(uuid.New(), "x@y.z")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestGenerateRequiresConfiguredSecrets(t *testing.T) {
	svc := NewHMACService("", "", 0, 0)

	if _, err := svc.GenerateAccessToken(uuid.New(), "x@y.z"); err == nil {
		t.Error("expected error with an unconfigured access secret")
	}
	if _, err := svc.GenerateRefreshToken(uuid.New()); err == nil {
		t.Error("expected error with an unconfigured refresh secret")
	}
}
