package auth

import (
	"strings"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	a, err := New("test-secret", 1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	token, err := a.GenerateToken(42, "owner@example.com", "client")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "owner@example.com" || claims.Role != "client" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyTokenBearerPrefix(t *testing.T) {
	a, _ := New("test-secret", 1, 4)
	token, err := a.GenerateToken(1, "a@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := a.VerifyToken("Bearer " + token); err != nil {
		t.Fatalf("VerifyToken with Bearer prefix: %v", err)
	}
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	a, _ := New("test-secret", 1, 4)
	token, _ := a.GenerateToken(1, "a@example.com", "client")

	tampered := token[:len(token)-2] + "xx"
	if _, err := a.VerifyToken(tampered); err == nil {
		t.Fatalf("expected tampered token to fail")
	}

	other, _ := New("other-secret", 1, 4)
	if _, err := other.VerifyToken(token); err == nil {
		t.Fatalf("expected foreign-secret token to fail")
	}
}

func TestVerifyTokenMissing(t *testing.T) {
	a, _ := New("test-secret", 1, 4)
	if _, err := a.VerifyToken("  "); err == nil {
		t.Fatalf("expected missing token to fail")
	}
	if _, err := a.VerifyToken("Bearer "); err == nil {
		t.Fatalf("expected empty bearer token to fail")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	a, _ := New("test-secret", 1, 4)

	hash, err := a.HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if strings.Contains(hash, "Abcdef1!") {
		t.Fatalf("hash must not embed the plaintext")
	}

	if err := a.VerifyPassword("Abcdef1!", hash); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := a.VerifyPassword("wrong", hash); err == nil {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New("  ", 1, 4); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
