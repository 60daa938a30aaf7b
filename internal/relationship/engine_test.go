package relationship

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type staticDirectory struct {
	known map[string]bool
}

func (d staticDirectory) TargetExists(_ context.Context, targetID string, _ TargetKind) (bool, error) {
	return d.known[targetID], nil
}

func newTestEngine(store *InMemoryEdgeStore, targets ...string) *Engine {
	known := make(map[string]bool, len(targets))
	for _, id := range targets {
		known[id] = true
	}
	return NewEngine(store, staticDirectory{known: known})
}

func TestToggleCreatesThenRemoves(t *testing.T) {
	store := NewInMemoryEdgeStore()
	actor := uuid.NewString()
	target := uuid.NewString()
	engine := newTestEngine(store, target)

	result, err := engine.Toggle(context.Background(), actor, target, KindVideo)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if result.State != StateCreated {
		t.Fatalf("expected %q got %q", StateCreated, result.State)
	}
	if !store.Has(actor, target, KindVideo) {
		t.Fatal("expected edge to exist after first toggle")
	}

	result, err = engine.Toggle(context.Background(), actor, target, KindVideo)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if result.State != StateRemoved {
		t.Fatalf("expected %q got %q", StateRemoved, result.State)
	}
	if store.Has(actor, target, KindVideo) {
		t.Fatal("expected edge to be gone after second toggle")
	}
}

func TestToggleParity(t *testing.T) {
	store := NewInMemoryEdgeStore()
	actor := uuid.NewString()
	target := uuid.NewString()
	engine := newTestEngine(store, target)

	for i := 0; i < 7; i++ {
		if _, err := engine.Toggle(context.Background(), actor, target, KindTweet); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	if !store.Has(actor, target, KindTweet) {
		t.Fatal("expected edge present after odd number of toggles")
	}

	if _, err := engine.Toggle(context.Background(), actor, target, KindTweet); err != nil {
		t.Fatalf("final toggle: %v", err)
	}
	if store.Has(actor, target, KindTweet) {
		t.Fatal("expected edge absent after even number of toggles")
	}
}

func TestToggleKindsAreIndependentKeys(t *testing.T) {
	store := NewInMemoryEdgeStore()
	actor := uuid.NewString()
	target := uuid.NewString()
	engine := newTestEngine(store, target)

	if _, err := engine.Toggle(context.Background(), actor, target, KindVideo); err != nil {
		t.Fatalf("toggle video: %v", err)
	}
	if _, err := engine.Toggle(context.Background(), actor, target, KindChannel); err != nil {
		t.Fatalf("toggle channel: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("expected two edges, got %d", store.Len())
	}
}

func TestToggleRejectsMalformedTarget(t *testing.T) {
	store := NewInMemoryEdgeStore()
	engine := newTestEngine(store)

	_, err := engine.Toggle(context.Background(), uuid.NewString(), "not-a-uuid", KindVideo)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget got %v", err)
	}

	_, err = engine.Toggle(context.Background(), "not-a-uuid", uuid.NewString(), KindVideo)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for malformed actor, got %v", err)
	}

	_, err = engine.Toggle(context.Background(), uuid.NewString(), uuid.NewString(), TargetKind("playlist"))
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for unknown kind, got %v", err)
	}

	if store.Len() != 0 {
		t.Fatal("validation failures must not touch the store")
	}
}

func TestToggleMissingTarget(t *testing.T) {
	engine := newTestEngine(NewInMemoryEdgeStore())

	_, err := engine.Toggle(context.Background(), uuid.NewString(), uuid.NewString(), KindComment)
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound got %v", err)
	}
}

func TestToggleConcurrentParity(t *testing.T) {
	for _, n := range []int{8, 9} {
		store := NewInMemoryEdgeStore()
		actor := uuid.NewString()
		target := uuid.NewString()
		engine := newTestEngine(store, target)

		var wg sync.WaitGroup
		errs := make(chan error, n)
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				if _, err := engine.Toggle(context.Background(), actor, target, KindChannel); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Fatalf("concurrent toggle (n=%d): %v", n, err)
		}

		want := n%2 == 1
		if got := store.Has(actor, target, KindChannel); got != want {
			t.Fatalf("after %d concurrent toggles expected present=%v got %v", n, want, got)
		}
		if store.Len() > 1 {
			t.Fatalf("duplicate edges after %d concurrent toggles: %d", n, store.Len())
		}
	}
}

func TestParseTargetKind(t *testing.T) {
	for _, valid := range []string{"video", "comment", "tweet", "channel"} {
		if _, err := ParseTargetKind(valid); err != nil {
			t.Fatalf("expected %q to parse: %v", valid, err)
		}
	}

	if _, err := ParseTargetKind("playlist"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget got %v", err)
	}
}
