// Package service holds the business rules. Services sit between the HTTP
// handlers and storage:
//
//	handler (HTTP) → service (rules, validation) → DocumentStore / AccountRepository
//
// Services know nothing about HTTP. They return apperror values and the
// handlers decide what status code each one becomes.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/sakif/deskboard/internal/docstore"
)

// DocumentStore is the subset of *docstore.Store the services use. Tests
// substitute wrappers that count or fail calls.
type DocumentStore interface {
	Get(ctx context.Context, path string) (docstore.Snapshot, error)
	Set(ctx context.Context, path string, v any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Remove(ctx context.Context, path string) error
	Push(ctx context.Context, path string, v any) (string, error)
	Watch(ctx context.Context, path string) (<-chan docstore.Snapshot, error)
}

// compile-time check
var _ DocumentStore = (*docstore.Store)(nil)

// now is replaced in tests that need stable timestamps.
var now = func() time.Time { return time.Now().UTC() }

// timestamp is how times are written into the store.
func timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// validID reports whether id can be used as a single record key.
func validID(id string) bool {
	clean, err := docstore.Clean(id)
	return err == nil && clean != "" && clean == id && !strings.Contains(id, "/")
}

// mapStream turns a stream of snapshots into a stream of decoded values.
// Snapshots convert rejects are skipped. The output closes when in closes or
// ctx is done.
func mapStream[T any](ctx context.Context, in <-chan docstore.Snapshot, convert func(docstore.Snapshot) (T, bool)) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for snap := range in {
			v, ok := convert(snap)
			if !ok {
				continue
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
