package auth

import (
	"context"
	"sync"
)

// NewInMemoryFingerprintStore returns a FingerprintStore backed by an in-memory map.
func NewInMemoryFingerprintStore() *InMemoryFingerprintStore {
	return &InMemoryFingerprintStore{fingerprints: make(map[string]string)}
}

// InMemoryFingerprintStore implements FingerprintStore for tests and local development.
type InMemoryFingerprintStore struct {
	mu           sync.RWMutex
	fingerprints map[string]string
}

// SetFingerprint records the current refresh fingerprint for the account.
func (s *InMemoryFingerprintStore) SetFingerprint(_ context.Context, accountID, fingerprint string) error {
	s.mu.Lock()
	s.fingerprints[accountID] = fingerprint
	s.mu.Unlock()
	return nil
}

// Fingerprint returns the stored fingerprint, or empty when none is recorded.
func (s *InMemoryFingerprintStore) Fingerprint(_ context.Context, accountID string) (string, error) {
	s.mu.RLock()
	fingerprint := s.fingerprints[accountID]
	s.mu.RUnlock()
	return fingerprint, nil
}

// ClearFingerprint removes the stored fingerprint for the account.
func (s *InMemoryFingerprintStore) ClearFingerprint(_ context.Context, accountID string) error {
	s.mu.Lock()
	delete(s.fingerprints, accountID)
	s.mu.Unlock()
	return nil
}
