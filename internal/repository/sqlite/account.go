package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/deskboard/internal/apperror"
	"github.com/sakif/deskboard/internal/model"
	"github.com/sakif/deskboard/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// accountExistsMessage is what registration shows for a duplicate email.
const accountExistsMessage = "Account already exists. Please log in."

const accountColumns = `id, email, password_hash, github_id, created_at, updated_at`

// CreateAccount inserts a new account.
//
// WHY UUID AND NOT xid?
// The account ID becomes the uid segment of the user's store paths and is
// handed to the browser. Push keys use xid because they must sort by
// creation time; uids only need to be unique and unguessable-looking.
func (db *DB) CreateAccount(ctx context.Context, account *model.Account) error {
	now := time.Now().UTC()
	account.ID = uuid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Email,
		account.PasswordHash,
		nullableInt64(account.GitHubID),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(accountExistsMessage)
		}
		return fmt.Errorf("sqlite: inserting account %s: %w", account.Email, err)
	}

	return nil
}

// GetAccountByID returns apperror.ErrNotFound when no account has that ID.
func (db *DB) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("account", id)
		}
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}
	return account, nil
}

// GetAccountByEmail matches case-insensitively (the column is NOCASE).
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)

	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("account", email)
		}
		return nil, fmt.Errorf("sqlite: getting account by email: %w", err)
	}
	return account, nil
}

// UpsertGitHubAccount links a GitHub identity to an account.
//
// An existing link keeps its internal ID (and therefore the user's data);
// only the email is refreshed. A new GitHub identity whose email is already
// registered with a password returns ErrConflict instead of silently merging
// the two.
func (db *DB) UpsertGitHubAccount(ctx context.Context, account *model.Account) error {
	if account.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting GitHub account without a GitHub ID")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE github_id = ?`, *account.GitHubID)
	existing, err := scanAccount(row)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up account by github_id %d: %w", *account.GitHubID, err)
	}

	if existing == nil {
		return db.CreateAccount(ctx, account)
	}

	existing.UpdatedAt = time.Now().UTC()
	if account.Email != "" {
		existing.Email = account.Email
	}
	_, err = db.conn.ExecContext(ctx,
		`UPDATE accounts SET email = ?, updated_at = ? WHERE id = ?`,
		existing.Email, existing.UpdatedAt, existing.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(accountExistsMessage)
		}
		return fmt.Errorf("sqlite: updating account %s: %w", existing.ID, err)
	}

	*account = *existing
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		a        model.Account
		githubID sql.NullInt64
	)
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&githubID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if githubID.Valid {
		id := githubID.Int64
		a.GitHubID = &id
	}
	return &a, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
