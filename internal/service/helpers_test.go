package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/deskboard/internal/docstore"
	"github.com/sakif/deskboard/internal/repository/sqlite"
)

// countingStore wraps a real store and counts every call that reaches it.
type countingStore struct {
	DocumentStore
	calls atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, path string) (docstore.Snapshot, error) {
	c.calls.Add(1)
	return c.DocumentStore.Get(ctx, path)
}

func (c *countingStore) Set(ctx context.Context, path string, v any) error {
	c.calls.Add(1)
	return c.DocumentStore.Set(ctx, path, v)
}

func (c *countingStore) Update(ctx context.Context, path string, fields map[string]any) error {
	c.calls.Add(1)
	return c.DocumentStore.Update(ctx, path, fields)
}

func (c *countingStore) Remove(ctx context.Context, path string) error {
	c.calls.Add(1)
	return c.DocumentStore.Remove(ctx, path)
}

func (c *countingStore) Push(ctx context.Context, path string, v any) (string, error) {
	c.calls.Add(1)
	return c.DocumentStore.Push(ctx, path, v)
}

func (c *countingStore) Watch(ctx context.Context, path string) (<-chan docstore.Snapshot, error) {
	c.calls.Add(1)
	return c.DocumentStore.Watch(ctx, path)
}

// newTestStore returns a counting store over a fresh in-memory database.
func newTestStore(t *testing.T) *countingStore {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &countingStore{DocumentStore: docstore.New(db, discardLogger())}
}
