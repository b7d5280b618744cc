package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/deskboard/internal/repository"
)

func leaf(path, value string) repository.Leaf {
	return repository.Leaf{Path: path, Value: []byte(value)}
}

func applyOrFail(t *testing.T, db *DB, writes ...repository.NodeWrite) {
	t.Helper()
	if err := db.Apply(context.Background(), writes); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
}

func leafPaths(leaves []repository.Leaf) []string {
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = l.Path
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLeaves_ReturnsSubtreeInPathOrder(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db, repository.NodeWrite{
		Path: "users/u1",
		Leaves: []repository.Leaf{
			leaf("users/u1/name", `"Ann"`),
			leaf("users/u1/products/p2/name", `"Bolt"`),
			leaf("users/u1/products/p1/name", `"Nut"`),
		},
	})

	leaves, err := db.Leaves(context.Background(), "users/u1/products")
	if err != nil {
		t.Fatalf("Leaves() error = %v", err)
	}

	want := []string{"users/u1/products/p1/name", "users/u1/products/p2/name"}
	if got := leafPaths(leaves); !equalStrings(got, want) {
		t.Errorf("Leaves() paths = %v, want %v", got, want)
	}
}

func TestLeaves_DoesNotMatchSiblingWithSamePrefix(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db,
		repository.NodeWrite{Path: "users/u1", Leaves: []repository.Leaf{leaf("users/u1/name", `"Ann"`)}},
		repository.NodeWrite{Path: "users/u10", Leaves: []repository.Leaf{leaf("users/u10/name", `"Ten"`)}},
		repository.NodeWrite{Path: "users/u1-x", Leaves: []repository.Leaf{leaf("users/u1-x/name", `"Dash"`)}},
	)

	leaves, err := db.Leaves(context.Background(), "users/u1")
	if err != nil {
		t.Fatalf("Leaves() error = %v", err)
	}
	if got := leafPaths(leaves); !equalStrings(got, []string{"users/u1/name"}) {
		t.Errorf("Leaves(users/u1) = %v, want only users/u1/name", got)
	}
}

func TestLeaves_RootReturnsEverything(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db,
		repository.NodeWrite{Path: "a", Leaves: []repository.Leaf{leaf("a", `1`)}},
		repository.NodeWrite{Path: "b/c", Leaves: []repository.Leaf{leaf("b/c", `2`)}},
	)

	leaves, err := db.Leaves(context.Background(), "")
	if err != nil {
		t.Fatalf("Leaves() error = %v", err)
	}
	if len(leaves) != 2 {
		t.Errorf("Leaves(root) returned %d leaves, want 2", len(leaves))
	}
}

func TestApply_ReplacesSubtree(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db, repository.NodeWrite{
		Path:   "articles/a1",
		Leaves: []repository.Leaf{leaf("articles/a1/title", `"old"`), leaf("articles/a1/content", `"body"`)},
	})
	applyOrFail(t, db, repository.NodeWrite{
		Path:   "articles/a1",
		Leaves: []repository.Leaf{leaf("articles/a1/title", `"new"`)},
	})

	leaves, err := db.Leaves(context.Background(), "articles/a1")
	if err != nil {
		t.Fatalf("Leaves() error = %v", err)
	}
	if len(leaves) != 1 || string(leaves[0].Value) != `"new"` {
		t.Errorf("after replace leaves = %v, want only the new title", leaves)
	}
}

func TestApply_EmptyLeavesRemoves(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db, repository.NodeWrite{
		Path:   "users/u1/products/p1",
		Leaves: []repository.Leaf{leaf("users/u1/products/p1/name", `"Nut"`)},
	})
	applyOrFail(t, db, repository.NodeWrite{Path: "users/u1/products/p1"})

	n, err := countNodes(db, "users/u1")
	if err != nil {
		t.Fatalf("countNodes: %v", err)
	}
	if n != 0 {
		t.Errorf("%d nodes remain after removal, want 0", n)
	}
}

func TestApply_ClearsScalarAncestor(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db, repository.NodeWrite{Path: "config", Leaves: []repository.Leaf{leaf("config", `"flat"`)}})
	applyOrFail(t, db, repository.NodeWrite{Path: "config/theme", Leaves: []repository.Leaf{leaf("config/theme", `"dark"`)}})

	leaves, err := db.Leaves(context.Background(), "config")
	if err != nil {
		t.Fatalf("Leaves() error = %v", err)
	}
	if got := leafPaths(leaves); !equalStrings(got, []string{"config/theme"}) {
		t.Errorf("Leaves(config) = %v, want [config/theme]", got)
	}
}

func TestApply_IsAtomic(t *testing.T) {
	db := newTestDB(t)
	applyOrFail(t, db, repository.NodeWrite{Path: "a", Leaves: []repository.Leaf{leaf("a", `1`)}})

	// The duplicate insert violates the primary key, so the first write
	// in the batch must be rolled back too.
	err := db.Apply(context.Background(), []repository.NodeWrite{
		{Path: "a", Leaves: []repository.Leaf{leaf("a", `2`)}},
		{Path: "b", Leaves: []repository.Leaf{leaf("b", `1`), leaf("b", `1`)}},
	})
	if err == nil {
		t.Fatal("Apply() with duplicate leaves should fail")
	}

	leaves, err := db.Leaves(context.Background(), "a")
	if err != nil {
		t.Fatalf("Leaves() error = %v", err)
	}
	if len(leaves) != 1 || string(leaves[0].Value) != `1` {
		t.Errorf("a = %v, want original value after rollback", leaves)
	}
}

func TestApply_RejectsRoot(t *testing.T) {
	db := newTestDB(t)

	if err := db.Apply(context.Background(), []repository.NodeWrite{{Path: ""}}); err == nil {
		t.Fatal("Apply() on root should fail")
	}
}

func TestAncestorsOf(t *testing.T) {
	got := ancestorsOf("users/u1/products/p1")
	want := []string{"users", "users/u1", "users/u1/products"}
	if !equalStrings(got, want) {
		t.Errorf("ancestorsOf() = %v, want %v", got, want)
	}
	if len(ancestorsOf("top")) != 0 {
		t.Error("ancestorsOf(single segment) should be empty")
	}
}

// countNodes reads raw storage, bypassing Leaves.
func countNodes(db *DB, prefix string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM nodes WHERE path = ? OR (path >= ? AND path < ?)`,
		prefix, prefix+"/", prefix+"0",
	).Scan(&n)
	return n, err
}
