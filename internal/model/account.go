// Package model defines the data structures used throughout the application.
package model

import "time"

// Account is an identity known to the built-in identity provider.
//
// The ID doubles as the uid segment of every per-user store path
// (users/{uid}, users/{uid}/products/...), so it is generated once and never
// changes. PasswordHash is empty for accounts created through GitHub sign-in;
// such accounts cannot log in with a password.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"githubId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
