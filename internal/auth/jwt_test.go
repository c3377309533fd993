package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Johnhpure/meet/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken("admin")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyToken(token)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.Username != "admin" {
		t.Fatalf("username = %q, want admin", claims.Username)
	}

	if claims.JTI == "" {
		t.Fatalf("expected a token id")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := auth.NewManager("secret-a", time.Hour).GenerateToken("admin")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = auth.NewManager("secret-b", time.Hour).VerifyToken(token)

	if err == nil {
		t.Fatalf("token signed with another secret verified")
	}
}

func TestTokenTampered(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken("admin")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")

	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}

	tampered := parts[0] + ".eyJ1c2VybmFtZSI6InJvb3QifQ." + parts[2]

	_, err = m.VerifyToken(tampered)

	if err == nil {
		t.Fatalf("tampered token verified")
	}
}

func TestTokenExpired(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.GenerateToken("admin")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = m.VerifyToken(token)

	if err == nil {
		t.Fatalf("expired token verified")
	}
}

func TestGarbageToken(t *testing.T) {
	_, err := auth.NewManager("test-secret", time.Hour).VerifyToken("not-a-jwt")

	if err == nil {
		t.Fatalf("garbage input verified")
	}
}
