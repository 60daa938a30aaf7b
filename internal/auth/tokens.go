package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates the token failed signature, structure, or purpose checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the token verified but its lifetime window has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrFingerprintMismatch indicates a refresh token that verified cryptographically
	// but is not the one currently on record for the account (superseded or revoked).
	ErrFingerprintMismatch = errors.New("refresh token superseded")
)

const (
	purposeAccess  = "access"
	purposeRefresh = "refresh"
)

// FingerprintStore persists the single refresh-token fingerprint per account.
// Overwriting the fingerprint invalidates every previously issued refresh token.
type FingerprintStore interface {
	SetFingerprint(ctx context.Context, accountID, fingerprint string) error
	Fingerprint(ctx context.Context, accountID string) (string, error)
	ClearFingerprint(ctx context.Context, accountID string) error
}

type sessionClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService mints, verifies, and rotates the access/refresh token pair.
// Access tokens are stateless; refresh tokens are bound to the fingerprint
// stored on the account, so only the newest issuance can be rotated.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	store FingerprintStore
	now   func() time.Time
}

// NewTokenService constructs a TokenService signing with distinct secrets per purpose.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, store FingerprintStore) *TokenService {
	if store == nil {
		panic("auth: fingerprint store must not be nil")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		store:         store,
		now:           time.Now,
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (s *TokenService) WithNowFunc(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue mints a fresh token pair for the account and records the refresh
// token as the account's current fingerprint, overwriting any prior one.
func (s *TokenService) Issue(ctx context.Context, accountID string) (models.SessionTokens, error) {
	if accountID == "" {
		return models.SessionTokens{}, errors.New("account id must be provided")
	}

	now := s.now().UTC()
	accessExpiry := now.Add(s.accessTTL)
	refreshExpiry := now.Add(s.refreshTTL)

	accessToken, err := s.sign(accountID, purposeAccess, now, accessExpiry, s.accessSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.sign(accountID, purposeRefresh, now, refreshExpiry, s.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.store.SetFingerprint(ctx, accountID, refreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("persist refresh fingerprint: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// VerifyAccess checks an access token's signature, expiry, and purpose without
// touching the store, and returns the account it was issued to.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	return s.verify(token, purposeAccess, s.accessSecret)
}

// Rotate exchanges a refresh token for a new pair. The presented token must
// match the fingerprint currently stored on the account; a superseded token
// fails with ErrFingerprintMismatch even when still cryptographically valid.
func (s *TokenService) Rotate(ctx context.Context, presented string) (models.SessionTokens, error) {
	accountID, err := s.verify(presented, purposeRefresh, s.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}

	stored, err := s.store.Fingerprint(ctx, accountID)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("load refresh fingerprint: %w", err)
	}

	if stored == "" || stored != presented {
		return models.SessionTokens{}, ErrFingerprintMismatch
	}

	return s.Issue(ctx, accountID)
}

// Revoke clears the stored fingerprint so every outstanding refresh token
// becomes permanently unusable. Called on logout and on password change.
func (s *TokenService) Revoke(ctx context.Context, accountID string) error {
	if accountID == "" {
		return errors.New("account id must be provided")
	}
	return s.store.ClearFingerprint(ctx, accountID)
}

func (s *TokenService) sign(accountID, purpose string, issuedAt, expiresAt time.Time, secret []byte) (string, error) {
	claims := sessionClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(token, purpose string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
