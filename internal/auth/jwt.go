// Package auth issues and checks sessions, hashes passwords and talks to
// GitHub for the optional OAuth sign-in.
//
// SESSION FLOW:
//  1. POST /api/auth/login (or /register) checks the credentials
//  2. The server signs a JWT for the account and sets it as the HttpOnly
//     "token" cookie
//  3. Every later request carries the cookie; the middleware in this package
//     validates it and puts a Session in the request context
//  4. POST /api/auth/logout expires the cookie
//
// WHY JWT?
// The token carries the account ID and email, signed with the server secret.
// Validating it needs no database read, so the route gate on every page
// request stays cheap.
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<account id>","email":"ann@example.com","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "deskboard"

// DefaultSessionTTL is used when NewTokenService is given a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

// Session identifies the signed-in account for one request.
type Session struct {
	AccountID string `json:"uid"`
	Email     string `json:"email"`
}

// TokenService signs and verifies session tokens with one HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService rejects secrets shorter than 16 characters.
// Generate one with: openssl rand -hex 32
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long issued tokens (and their cookies) stay valid.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" holds the account ID.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generate signs a token for the account using the service TTL.
func (s *TokenService) Generate(accountID, email string) (string, error) {
	return s.GenerateWithDuration(accountID, email, s.ttl)
}

// GenerateWithDuration signs a token that expires after d. Tests use a
// negative d to produce expired tokens.
func (s *TokenService) GenerateWithDuration(accountID, email string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate checks the signature, expiry, issuer and algorithm and returns the
// session the token encodes.
//
// ALGORITHM CONFUSION ATTACK:
// A token whose header says "none" (or an asymmetric algorithm) must never be
// accepted. jwt.WithValidMethods pins the accepted algorithm to HS256.
func (s *TokenService) Validate(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, fmt.Errorf("auth: token expired")
		}
		return Session{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("auth: token has no subject")
	}

	return Session{AccountID: c.Subject, Email: c.Email}, nil
}
