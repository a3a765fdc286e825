package services

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, jti, err := svc.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if jti == "" {
		t.Fatal("empty jti")
	}

	userID, gotJTI, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("userID = %q, want user-1", userID)
	}
	if gotJTI != jti {
		t.Fatalf("jti = %q, want %q", gotJTI, jti)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := NewTokenService("secret", -time.Minute)

	token, _, err := svc.GenerateToken("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expired token must not validate")
	}
}

func TestTokenGarbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	if _, _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatal("garbage must not validate")
	}
}
