package handlers

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/relationship"
)

// OwnerResolver resolves the owning account of a content record.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, targetID string, kind relationship.TargetKind) (string, error)
}

// requireOwner is the single ownership gate applied before every mutating
// content operation: it resolves the record's owner and fails with
// errNotOwner when the caller is someone else. Missing records propagate the
// resolver's not-found error.
func requireOwner(ctx context.Context, resolver OwnerResolver, callerID, targetID string, kind relationship.TargetKind) error {
	ownerID, err := resolver.OwnerOf(ctx, targetID, kind)
	if err != nil {
		return fmt.Errorf("resolve %s owner: %w", kind, err)
	}
	if ownerID != callerID {
		return errNotOwner
	}
	return nil
}
