// Package repository declares the persistence interfaces the services depend
// on. The sqlite subpackage is the only production implementation.
package repository

import (
	"context"

	"github.com/sakif/deskboard/internal/model"
)

// Leaf is one scalar stored in the document tree. Value is the JSON encoding
// of the scalar; Path is its full slash-separated location.
type Leaf struct {
	Path  string
	Value []byte
}

// NodeWrite replaces everything stored at and below Path with Leaves.
// An empty Leaves slice is a removal.
type NodeWrite struct {
	Path   string
	Leaves []Leaf
}

// NodeRepository persists the flattened document tree.
type NodeRepository interface {
	// Leaves returns the leaf at path and every leaf below it, ordered by path.
	// The empty path selects the whole tree.
	Leaves(ctx context.Context, path string) ([]Leaf, error)

	// Apply performs all writes in one transaction. Each write also clears any
	// scalar stored at an ancestor of its path.
	Apply(ctx context.Context, writes []NodeWrite) error
}

type AccountRepository interface {
	// CreateAccount assigns the ID and timestamps. Returns apperror.ErrConflict
	// when the email is already registered.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// UpsertGitHubAccount finds the account linked to account.GitHubID or
	// creates one, refreshing the email either way.
	UpsertGitHubAccount(ctx context.Context, account *model.Account) error
}
