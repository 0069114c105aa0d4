package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager("unit-test-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateAccessToken("user-1", "jane@example.com", "patient")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := mgr.VerifyAccessToken(token)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "user-1" || claims.Email != "jane@example.com" || claims.Role != "patient" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	if claims.TokenType != "access" {
		t.Fatalf("unexpected token type %q", claims.TokenType)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	mgr := newTestManager()

	raw, jti, expiresAt, err := mgr.GenerateRefreshToken("user-1", "jane@example.com", "patient")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if jti == "" {
		t.Fatal("expected a jti")
	}

	if time.Until(expiresAt) < 23*time.Hour {
		t.Fatalf("refresh expiry too short: %v", expiresAt)
	}

	claims, err := mgr.VerifyRefreshToken(raw)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.JTI != jti {
		t.Fatalf("jti mismatch: %q vs %q", claims.JTI, jti)
	}
}

func TestTokenTypeIsEnforced(t *testing.T) {
	mgr := newTestManager()

	access, err := mgr.GenerateAccessToken("user-1", "jane@example.com", "patient")

	if err != nil {
		t.Fatalf("generate access: %v", err)
	}

	refresh, _, _, err := mgr.GenerateRefreshToken("user-1", "jane@example.com", "patient")

	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	if _, err := mgr.VerifyRefreshToken(access); err == nil {
		t.Fatal("access token must not pass refresh verification")
	}

	if _, err := mgr.VerifyAccessToken(refresh); err == nil {
		t.Fatal("refresh token must not pass access verification")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateAccessToken("user-1", "jane@example.com", "patient")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// flip a character in the signature segment
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	if _, err := mgr.VerifyAccessToken(strings.Join(parts, ".")); err == nil {
		t.Fatal("tampered token must be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	mgr := newTestManager()
	other := NewManager("different-secret", 15*time.Minute, 24*time.Hour)

	token, err := mgr.GenerateAccessToken("user-1", "jane@example.com", "patient")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.VerifyAccessToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestHashRefreshTokenIsDeterministic(t *testing.T) {
	mgr := newTestManager()

	a := mgr.HashRefreshToken("some-raw-token")
	b := mgr.HashRefreshToken("some-raw-token")
	c := mgr.HashRefreshToken("another-token")

	if a != b {
		t.Fatal("same input must hash the same")
	}

	if a == c {
		t.Fatal("different inputs must not collide trivially")
	}
}
