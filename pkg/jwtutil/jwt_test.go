package jwtutil

import (
	"testing"

	"garden-service/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("a@x.com", 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Fatalf("expected malformed token to be rejected")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := GenerateToken("b@x.com", 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected token signed with a different key to be rejected")
	}
}
