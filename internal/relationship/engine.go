// Package relationship manages presence/absence edges between accounts and
// their targets: subscriptions (account→channel) and likes
// (account→video/comment/tweet). An edge either exists or it does not; the
// only mutation is a toggle.
package relationship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTarget indicates a malformed target identifier or unknown kind,
	// detected before any store access.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrTargetNotFound indicates the referenced target does not exist.
	ErrTargetNotFound = errors.New("target not found")
	// ErrEdgeExists is returned by EdgeStore.Insert when the key already holds an edge.
	ErrEdgeExists = errors.New("edge already exists")
	// ErrEdgeNotFound is returned by EdgeStore.Delete when no edge matches the key.
	ErrEdgeNotFound = errors.New("edge not found")
)

// TargetKind tags what an edge points at.
type TargetKind string

const (
	KindVideo   TargetKind = "video"
	KindComment TargetKind = "comment"
	KindTweet   TargetKind = "tweet"
	KindChannel TargetKind = "channel"
)

// ParseTargetKind validates a kind string.
func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case KindVideo, KindComment, KindTweet, KindChannel:
		return TargetKind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, s)
	}
}

// Edge is a directed actor→target relationship fact.
type Edge struct {
	ActorID   string
	TargetID  string
	Kind      TargetKind
	CreatedAt time.Time
}

// ToggleState reports which transition a toggle performed.
type ToggleState string

const (
	StateCreated ToggleState = "created"
	StateRemoved ToggleState = "removed"
)

// ToggleResult describes the outcome of a toggle call.
type ToggleResult struct {
	State ToggleState `json:"state"`
	Edge  Edge        `json:"-"`
}

// EdgeStore persists edges keyed by (actor, target, kind). Insert must fail
// with ErrEdgeExists when the edge already exists and Delete with
// ErrEdgeNotFound when it does not; both checks must be atomic in the store,
// not read-then-write at this layer.
type EdgeStore interface {
	Insert(ctx context.Context, edge Edge) error
	Delete(ctx context.Context, actorID, targetID string, kind TargetKind) error
}

// TargetDirectory resolves whether a toggle target exists.
type TargetDirectory interface {
	TargetExists(ctx context.Context, targetID string, kind TargetKind) (bool, error)
}

// Engine applies toggle semantics on top of an EdgeStore.
type Engine struct {
	edges   EdgeStore
	targets TargetDirectory
	now     func() time.Time
}

// NewEngine constructs a toggle engine.
func NewEngine(edges EdgeStore, targets TargetDirectory) *Engine {
	if edges == nil || targets == nil {
		panic("relationship: edge store and target directory must not be nil")
	}
	return &Engine{edges: edges, targets: targets, now: time.Now}
}

// WithNowFunc overrides the time source. Useful for tests.
func (e *Engine) WithNowFunc(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Toggle removes the edge when present and creates it when absent.
//
// Both arms are single conditional store operations guarded by the edge's
// unique key, never an application-level read-modify-write. When an arm
// loses a race (delete matched nothing, or insert hit a conflict) a
// concurrent toggle already performed the opposite transition, so this
// call retries against the new state and still contributes exactly one
// transition of its own. A failed iteration requires another caller's
// toggle to have fully applied in between, so the loop terminates once
// contention drains; the request deadline bounds it otherwise.
func (e *Engine) Toggle(ctx context.Context, actorID, targetID string, kind TargetKind) (ToggleResult, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return ToggleResult{}, fmt.Errorf("%w: malformed actor id", ErrInvalidTarget)
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return ToggleResult{}, fmt.Errorf("%w: malformed %s id", ErrInvalidTarget, kind)
	}
	if _, err := ParseTargetKind(string(kind)); err != nil {
		return ToggleResult{}, err
	}

	found, err := e.targets.TargetExists(ctx, targetID, kind)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("resolve toggle target: %w", err)
	}
	if !found {
		return ToggleResult{}, fmt.Errorf("%w: %s %s", ErrTargetNotFound, kind, targetID)
	}

	edge := Edge{
		ActorID:   actorID,
		TargetID:  targetID,
		Kind:      kind,
		CreatedAt: e.now().UTC(),
	}

	for ctx.Err() == nil {
		err := e.edges.Delete(ctx, actorID, targetID, kind)
		switch {
		case err == nil:
			return ToggleResult{State: StateRemoved, Edge: edge}, nil
		case errors.Is(err, ErrEdgeNotFound):
			// Edge absent; fall through to create it.
		default:
			return ToggleResult{}, fmt.Errorf("delete edge: %w", err)
		}

		err = e.edges.Insert(ctx, edge)
		switch {
		case err == nil:
			return ToggleResult{State: StateCreated, Edge: edge}, nil
		case errors.Is(err, ErrEdgeExists):
			// A concurrent toggle created the edge first; retry as a removal.
		default:
			return ToggleResult{}, fmt.Errorf("insert edge: %w", err)
		}
	}

	return ToggleResult{}, fmt.Errorf("toggle %s %s: %w", kind, targetID, ctx.Err())
}
