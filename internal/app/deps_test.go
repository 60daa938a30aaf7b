package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		ObjectStore:        config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cleanup(ctx)
	}()

	if deps.Accounts == nil {
		t.Fatal("expected account repository to be configured")
	}
	if deps.Sessions == nil || deps.Verifier == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Content == nil {
		t.Fatal("expected content repository to be configured")
	}
	if deps.Toggles == nil {
		t.Fatal("expected toggle engine to be configured")
	}
	if deps.Stats == nil {
		t.Fatal("expected stats reader to be configured")
	}
	if deps.Storage == nil {
		t.Fatal("expected object storage to be configured")
	}
	if deps.Ingestor == nil {
		t.Fatal("expected asset ingestor to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
}

func TestBuildDependenciesRequiresBucket(t *testing.T) {
	cfg := config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
	}

	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg); err == nil {
		t.Fatal("expected error when object store bucket is missing")
	}
}
