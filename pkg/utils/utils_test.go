package utils

import (
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "secret"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !CheckPassword(password, hash) {
		t.Errorf("Expected password check to pass")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Errorf("Expected password check to fail")
	}
}

func TestJWT(t *testing.T) {
	secret := "supersecret"
	userID := "123"
	role := "mentor"

	token, err := GenerateToken(userID, role, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected UserID %s, got %s", userID, claims.UserID)
	}

	if claims.Role != role {
		t.Errorf("Expected Role %s, got %s", role, claims.Role)
	}

	_, err = ValidateToken(token, "wrongsecret")
	if err == nil {
		t.Errorf("Expected error with wrong secret")
	}
}

func TestGenerateTokenWithTTLExpires(t *testing.T) {
	token, err := GenerateTokenWithTTL("7", "mentor", "secret", -1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := ValidateToken(token, "secret"); err != nil {
		t.Fatalf("Expected non-positive ttl to fall back to default, got %v", err)
	}

	expired, err := GenerateTokenWithTTL("7", "mentor", "secret", time.Nanosecond)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := ValidateToken(expired, "secret"); err == nil {
		t.Errorf("Expected expired token to be rejected")
	}
}
