package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-signing-key", "storecore")

	token, err := m.Generate(TokenTypeService, "frontend", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != TokenTypeService {
		t.Fatalf("token type = %s, want service", claims.TokenType)
	}
	if claims.Subject != "frontend" {
		t.Fatalf("subject = %s, want frontend", claims.Subject)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("token with ttl has no expiry")
	}
}

func TestGenerateWithoutTTL(t *testing.T) {
	m := NewManager("test-signing-key", "storecore")

	token, err := m.Generate(TokenTypeWebhook, "provider", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", claims.ExpiresAt)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	m := NewManager("test-signing-key", "storecore")
	other := NewManager("another-key", "storecore")

	token, err := m.Generate(TokenTypeService, "frontend", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.Validate(token); err == nil {
		t.Fatal("token signed with another key validated")
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	m := NewManager("test-signing-key", "someone-else")
	verifier := NewManager("test-signing-key", "storecore")

	token, err := m.Generate(TokenTypeService, "frontend", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Fatal("token from another issuer validated")
	}
}
