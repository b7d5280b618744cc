package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/deskboard/internal/repository"
)

var _ repository.NodeRepository = (*DB)(nil)

// Leaves returns every leaf at or below path, ordered by path.
func (db *DB) Leaves(ctx context.Context, path string) ([]repository.Leaf, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if path == "" {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT path, value FROM nodes ORDER BY path`)
	} else {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT path, value FROM nodes
			 WHERE path = ? OR (path >= ? AND path < ?)
			 ORDER BY path`,
			path, path+"/", path+"0",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading nodes under %q: %w", path, err)
	}
	defer rows.Close()

	var leaves []repository.Leaf
	for rows.Next() {
		var (
			p     string
			value string
		)
		if err := rows.Scan(&p, &value); err != nil {
			return nil, fmt.Errorf("sqlite: scanning node row: %w", err)
		}
		leaves = append(leaves, repository.Leaf{Path: p, Value: []byte(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating nodes: %w", err)
	}

	return leaves, nil
}

// Apply runs all writes in a single transaction, so a multi-path update is
// either fully visible or not at all.
//
// For each write:
//  1. delete the subtree rooted at the path
//  2. delete scalars stored at any ancestor (a node cannot be both a scalar
//     and a parent)
//  3. insert the new leaves
func (db *DB) Apply(ctx context.Context, writes []repository.NodeWrite) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning node transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	for _, w := range writes {
		if w.Path == "" {
			return fmt.Errorf("sqlite: refusing to replace the root node")
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM nodes WHERE path = ? OR (path >= ? AND path < ?)`,
			w.Path, w.Path+"/", w.Path+"0",
		); err != nil {
			return fmt.Errorf("sqlite: clearing %q: %w", w.Path, err)
		}

		for _, ancestor := range ancestorsOf(w.Path) {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM nodes WHERE path = ?`, ancestor,
			); err != nil {
				return fmt.Errorf("sqlite: clearing ancestor %q: %w", ancestor, err)
			}
		}

		for _, leaf := range w.Leaves {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO nodes (path, value) VALUES (?, ?)`,
				leaf.Path, string(leaf.Value),
			); err != nil {
				return fmt.Errorf("sqlite: writing %q: %w", leaf.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing node transaction: %w", err)
	}
	return nil
}

// ancestorsOf returns the strict ancestors of p, nearest last.
// ancestorsOf("a/b/c") == ["a", "a/b"].
func ancestorsOf(p string) []string {
	var out []string
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[:i])
		}
	}
	return out
}
