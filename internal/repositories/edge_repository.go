package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/relationship"
)

// PostgresEdgeStore persists relationship edges to PostgreSQL. The
// (actor_id, target_id, target_kind) primary key makes both Insert and
// Delete single atomic conditional operations, which is what serializes
// concurrent toggles on the same key.
type PostgresEdgeStore struct {
	pool db.Pool
}

// NewPostgresEdgeStore constructs an edge store backed by PostgreSQL.
func NewPostgresEdgeStore(pool db.Pool) *PostgresEdgeStore {
	return &PostgresEdgeStore{pool: pool}
}

// Insert creates the edge, failing with relationship.ErrEdgeExists when the
// key is already present.
func (s *PostgresEdgeStore) Insert(ctx context.Context, edge relationship.Edge) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO edges (actor_id, target_id, target_kind, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (actor_id, target_id, target_kind) DO NOTHING
    `, edge.ActorID, edge.TargetID, string(edge.Kind), edge.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return relationship.ErrEdgeExists
		}
		return fmt.Errorf("insert edge: %w", mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return relationship.ErrEdgeExists
	}

	return nil
}

// Delete removes the edge, failing with relationship.ErrEdgeNotFound when the
// key is absent.
func (s *PostgresEdgeStore) Delete(ctx context.Context, actorID, targetID string, kind relationship.TargetKind) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM edges
        WHERE actor_id = $1 AND target_id = $2 AND target_kind = $3
    `, actorID, targetID, string(kind))
	if err != nil {
		return fmt.Errorf("delete edge: %w", mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return relationship.ErrEdgeNotFound
	}

	return nil
}

var _ relationship.EdgeStore = (*PostgresEdgeStore)(nil)
