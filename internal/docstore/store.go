// Package docstore is a hierarchical document store addressed by
// slash-separated paths such as "users/{uid}/products/{id}".
//
// The model is a JSON tree. Reading a path returns its whole subtree; writing
// a path replaces its whole subtree. Interior nodes exist only while they
// have descendants, so writing an empty object or nil removes a node.
//
// Store adds path validation, push keys and live watches on top of a
// repository.NodeRepository, which persists the tree flattened into leaves.
// Concurrent writers are not coordinated beyond the repository's
// transactions: the last write wins.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/deskboard/internal/repository"
)

// ErrRootWrite is returned when a write targets the root path.
var ErrRootWrite = errors.New("docstore: cannot write the root path")

// Store is safe for concurrent use.
type Store struct {
	repo   repository.NodeRepository
	logger *slog.Logger
	hub    *hub
}

func New(repo repository.NodeRepository, logger *slog.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
		hub:    newHub(),
	}
}

// NewKey allocates a unique key without writing anything.
//
// Keys are xids: 20 URL-safe characters that start with a timestamp, so
// lexical order is creation order.
func NewKey() string {
	return xid.New().String()
}

// Get reads the subtree at path.
func (s *Store) Get(ctx context.Context, path string) (Snapshot, error) {
	p, err := Clean(path)
	if err != nil {
		return Snapshot{}, err
	}

	leaves, err := s.repo.Leaves(ctx, p)
	if err != nil {
		return Snapshot{}, fmt.Errorf("docstore: reading %q: %w", p, err)
	}

	value, err := inflate(p, leaves)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Path: p, Value: value}, nil
}

// Set replaces the subtree at path with v. v may be any value encoding/json
// can marshal; nil removes the subtree.
func (s *Store) Set(ctx context.Context, path string, v any) error {
	p, err := Clean(path)
	if err != nil {
		return err
	}
	if p == "" {
		return ErrRootWrite
	}

	w, err := buildWrite(p, v)
	if err != nil {
		return err
	}
	if err := s.repo.Apply(ctx, []repository.NodeWrite{w}); err != nil {
		return fmt.Errorf("docstore: setting %q: %w", p, err)
	}

	s.hub.notify(p)
	return nil
}

// Update sets several children of path in one atomic write.
//
// Keys are relative paths and may span segments ("products/p1/stock").
// A nil value removes that child. Children not named in fields are left
// alone. Keys that overlap (one containing another) are rejected.
func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	base, err := Clean(path)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	targets := make([]string, 0, len(fields))
	writes := make([]repository.NodeWrite, 0, len(fields))
	for key, v := range fields {
		rel, err := Clean(key)
		if err != nil {
			return err
		}
		if rel == "" {
			return fmt.Errorf("%w: empty update key", ErrInvalidPath)
		}
		full := Join(base, rel)

		for _, other := range targets {
			if related(full, other) {
				return fmt.Errorf("%w: update keys %q and %q overlap", ErrInvalidPath, full, other)
			}
		}
		targets = append(targets, full)

		w, err := buildWrite(full, v)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}

	if err := s.repo.Apply(ctx, writes); err != nil {
		return fmt.Errorf("docstore: updating %q: %w", base, err)
	}

	s.hub.notify(targets...)
	return nil
}

// Remove deletes the subtree at path. Removing a missing path is not an error.
func (s *Store) Remove(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

// Push stores v under a freshly allocated key below path and returns the key.
func (s *Store) Push(ctx context.Context, path string, v any) (string, error) {
	p, err := Clean(path)
	if err != nil {
		return "", err
	}

	key := NewKey()
	if err := s.Set(ctx, Join(p, key), v); err != nil {
		return "", err
	}
	return key, nil
}

// buildWrite flattens v into the leaves that replace the subtree at p.
func buildWrite(p string, v any) (repository.NodeWrite, error) {
	normalized, err := normalize(v)
	if err != nil {
		return repository.NodeWrite{}, fmt.Errorf("docstore: encoding value for %q: %w", p, err)
	}

	w := repository.NodeWrite{Path: p}
	if err := flatten(p, normalized, &w.Leaves); err != nil {
		return repository.NodeWrite{}, err
	}
	return w, nil
}

// normalize turns any marshalable value (structs included) into the generic
// JSON shapes: map[string]any, []any, string, bool, json.Number, nil.
// json.Number keeps numbers exactly as encoded.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSON(b)
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// flatten appends one leaf per scalar in v. Arrays are stored as objects
// keyed by index. Empty objects and nils produce nothing.
func flatten(p string, v any, out *[]repository.Leaf) error {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		for k, child := range t {
			if err := validKey(k); err != nil {
				return fmt.Errorf("%w %q: %v", ErrInvalidPath, Join(p, k), err)
			}
			if err := flatten(Join(p, k), child, out); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, child := range t {
			if err := flatten(Join(p, strconv.Itoa(i)), child, out); err != nil {
				return err
			}
		}
		return nil
	default:
		if p == "" {
			return ErrRootWrite
		}
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("docstore: encoding leaf %q: %w", p, err)
		}
		*out = append(*out, repository.Leaf{Path: p, Value: b})
		return nil
	}
}

// inflate rebuilds the subtree at p from its leaves.
func inflate(p string, leaves []repository.Leaf) (any, error) {
	if len(leaves) == 0 {
		return nil, nil
	}

	root := make(map[string]any)
	for _, leaf := range leaves {
		value, err := decodeJSON(leaf.Value)
		if err != nil {
			return nil, fmt.Errorf("docstore: corrupt leaf %q: %w", leaf.Path, err)
		}

		if leaf.Path == p {
			// A scalar at p itself; writes never leave descendants beside it.
			return value, nil
		}

		rel := leaf.Path
		if p != "" {
			rel = strings.TrimPrefix(leaf.Path, p+"/")
		}
		segs := strings.Split(rel, "/")

		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segs[len(segs)-1]] = value
	}
	return root, nil
}
