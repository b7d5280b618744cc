package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/deskboard/internal/apperror"
	"github.com/sakif/deskboard/internal/auth"
	"github.com/sakif/deskboard/internal/model"
	"github.com/sakif/deskboard/internal/repository"
)

// invalidCredentialsMessage is the only thing a failed login reveals. Unknown
// email and wrong password look the same from outside.
const invalidCredentialsMessage = "Invalid email or password."

// AuthService is the identity provider: registration, password login and
// GitHub sign-in, each ending in a signed session token.
//
//	AuthHandler (HTTP) → AuthService → AccountRepository (DB)
//	                               ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It does not set cookies or read requests; that is the handler's job.
type AuthService struct {
	accounts  repository.AccountRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	accounts repository.AccountRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its fresh token so the handler can set
// the cookie and respond in one step.
type AuthResult struct {
	Account *model.Account
	Token   string
}

// Session is the session the token carries.
func (r *AuthResult) Session() auth.Session {
	return auth.Session{AccountID: r.Account.ID, Email: r.Account.Email}
}

// normalizeEmail lowercases and trims, and accepts only a bare address
// ("ann@example.com", not "Ann <ann@example.com>").
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.ValidationFailed("email", "Please enter a valid email address.")
	}
	return email, nil
}

// Register creates an email/password account and signs it in.
//
// A second registration for the same email (in any letter case) fails with
// apperror.ErrConflict and the message "Account already exists. Please log in.".
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password should be at least %d characters.", auth.MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer.")
	}

	account := &model.Account{Email: email, PasswordHash: hash}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("registration for existing account", slog.String("email", email))
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating account: %w", err)
	}

	s.logger.Info("account registered", slog.String("accountID", account.ID))
	return s.issue(account)
}

// Login checks an email/password pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Unauthorized(invalidCredentialsMessage)
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(invalidCredentialsMessage)
		}
		return nil, fmt.Errorf("service/auth: looking up account: %w", err)
	}

	// GitHub-only accounts have no hash and can never log in with a password.
	if account.PasswordHash == "" {
		return nil, apperror.Unauthorized(invalidCredentialsMessage)
	}
	if err := s.passwords.Verify(account.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("accountID", account.ID))
			return nil, apperror.Unauthorized(invalidCredentialsMessage)
		}
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", account.ID, err)
	}

	s.logger.Info("account logged in", slog.String("accountID", account.ID))
	return s.issue(account)
}

// LoginOrRegisterGitHub links the GitHub identity to an account (creating it
// on first sign-in) and issues a token.
//
// WHY UPSERT ON github_id?
// GitHub IDs are stable and unique, while logins and emails can change. The
// first sign-in inserts; later ones keep the same account ID and therefore
// the same store data.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	githubID := ghUser.ID
	account := &model.Account{
		Email:    strings.ToLower(ghUser.Email),
		GitHubID: &githubID,
	}
	if err := s.accounts.UpsertGitHubAccount(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: upserting account (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("account authenticated via GitHub",
		slog.String("accountID", account.ID),
		slog.String("login", ghUser.Login),
	)
	return s.issue(account)
}

// GetAccount returns the account behind a session.
func (s *AuthService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: account ID must not be empty")
	}
	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching account %s: %w", id, err)
	}
	return account, nil
}

func (s *AuthService) issue(account *model.Account) (*AuthResult, error) {
	token, err := s.tokens.Generate(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", account.ID, err)
	}
	return &AuthResult{Account: account, Token: token}, nil
}
