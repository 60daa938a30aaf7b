package relationship

import (
	"context"
	"sync"
)

type edgeKey struct {
	actorID  string
	targetID string
	kind     TargetKind
}

// NewInMemoryEdgeStore returns an EdgeStore backed by an in-memory map.
// Insert and Delete are atomic under the store's mutex, matching the
// conditional-write contract of the SQL-backed store.
func NewInMemoryEdgeStore() *InMemoryEdgeStore {
	return &InMemoryEdgeStore{edges: make(map[edgeKey]Edge)}
}

// InMemoryEdgeStore implements EdgeStore for tests and local development.
type InMemoryEdgeStore struct {
	mu    sync.Mutex
	edges map[edgeKey]Edge
}

// Insert stores the edge, failing when the key already exists.
func (s *InMemoryEdgeStore) Insert(_ context.Context, edge Edge) error {
	key := edgeKey{actorID: edge.ActorID, targetID: edge.TargetID, kind: edge.Kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[key]; ok {
		return ErrEdgeExists
	}
	s.edges[key] = edge
	return nil
}

// Delete removes the edge, failing when the key is absent.
func (s *InMemoryEdgeStore) Delete(_ context.Context, actorID, targetID string, kind TargetKind) error {
	key := edgeKey{actorID: actorID, targetID: targetID, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[key]; !ok {
		return ErrEdgeNotFound
	}
	delete(s.edges, key)
	return nil
}

// Has reports whether an edge exists. Useful for tests.
func (s *InMemoryEdgeStore) Has(actorID, targetID string, kind TargetKind) bool {
	key := edgeKey{actorID: actorID, targetID: targetID, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.edges[key]
	return ok
}

// Len reports the number of stored edges. Useful for tests.
func (s *InMemoryEdgeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}
