package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrNoValue is returned by Snapshot.Decode when nothing is stored at the path.
var ErrNoValue = errors.New("docstore: no value at path")

// Snapshot is the value of a path at the moment it was read.
//
// Value is nil when nothing is stored, a scalar (string, bool, json.Number)
// for a leaf, or a map[string]any for an interior node.
type Snapshot struct {
	Path  string
	Value any
}

// Key is the last segment of the path ("" for the root).
func (s Snapshot) Key() string {
	return lastSegment(s.Path)
}

func (s Snapshot) Exists() bool {
	return s.Value != nil
}

// Decode stores the snapshot value into v the way encoding/json would.
func (s Snapshot) Decode(v any) error {
	if !s.Exists() {
		return fmt.Errorf("%w %q", ErrNoValue, s.Path)
	}
	b, err := json.Marshal(s.Value)
	if err != nil {
		return fmt.Errorf("docstore: encoding %q: %w", s.Path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("docstore: decoding %q: %w", s.Path, err)
	}
	return nil
}

// Children returns one snapshot per child key, sorted by key. Push keys sort
// by creation time, so for pushed collections this is insertion order.
func (s Snapshot) Children() []Snapshot {
	m, ok := s.Value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		out = append(out, Snapshot{Path: Join(s.Path, k), Value: m[k]})
	}
	return out
}
