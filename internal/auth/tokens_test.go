package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(store FingerprintStore) *TokenService {
	return NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour, store)
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	store := NewInMemoryFingerprintStore()
	svc := newTestService(store)

	tokens, err := svc.Issue(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}
	if tokens.AccessToken == tokens.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	accountID, err := svc.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if accountID != "account-1" {
		t.Fatalf("expected account-1 got %q", accountID)
	}

	fingerprint, err := store.Fingerprint(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if fingerprint != tokens.RefreshToken {
		t.Fatal("expected issued refresh token to be recorded as fingerprint")
	}
}

func TestTokenServiceIssueValidation(t *testing.T) {
	svc := newTestService(NewInMemoryFingerprintStore())
	if _, err := svc.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty account id")
	}
}

func TestTokenServiceVerifyRejectsWrongPurpose(t *testing.T) {
	svc := newTestService(NewInMemoryFingerprintStore())

	tokens, err := svc.Issue(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.VerifyAccess(tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token presented as access, got %v", err)
	}
}

func TestTokenServiceVerifyExpiredAccess(t *testing.T) {
	svc := newTestService(NewInMemoryFingerprintStore())

	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc.WithNowFunc(func() time.Time { return issuedAt })

	tokens, err := svc.Issue(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.WithNowFunc(func() time.Time { return issuedAt.Add(16 * time.Minute) })

	if _, err := svc.VerifyAccess(tokens.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken got %v", err)
	}
}

func TestTokenServiceRotateSingleUse(t *testing.T) {
	svc := newTestService(NewInMemoryFingerprintStore())

	first, err := svc.Issue(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// jwt timestamps have second precision; advance the clock so the rotated
	// pair is distinguishable from the first.
	svc.WithNowFunc(func() time.Time { return time.Now().Add(2 * time.Second) })

	second, err := svc.Rotate(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected rotation to mint a new refresh token")
	}

	if _, err := svc.Rotate(context.Background(), first.RefreshToken); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected ErrFingerprintMismatch replaying superseded token, got %v", err)
	}

	if _, err := svc.Rotate(context.Background(), second.RefreshToken); err != nil {
		t.Fatalf("rotate with current token: %v", err)
	}
}

func TestTokenServiceRevoke(t *testing.T) {
	svc := newTestService(NewInMemoryFingerprintStore())

	tokens, err := svc.Issue(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Revoke(context.Background(), "account-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := svc.Rotate(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected ErrFingerprintMismatch after revoke, got %v", err)
	}
}

func TestTokenServiceRotateRejectsGarbage(t *testing.T) {
	svc := newTestService(NewInMemoryFingerprintStore())

	if _, err := svc.Rotate(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("verify password: %v", err)
	}

	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}

	if _, err := HashPassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
}
