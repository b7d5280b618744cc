package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/rs/xid"

	"github.com/sakif/deskboard/internal/apperror"
	"github.com/sakif/deskboard/internal/auth"
	"github.com/sakif/deskboard/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves sign-up, sign-in, sign-out and the "who am I" query.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister / HandleLogin → check credentials, set the session cookie
//   - HandleLogout                 → expire the session cookie
//   - HandleMe                     → report the current session's account
//   - HandleGitHubLogin / Callback → optional OAuth sign-in
//
// github is nil when no OAuth app is configured; the GitHub routes are then
// not registered at all.
type AuthHandler struct {
	auth          *service.AuthService
	tokens        *auth.TokenService
	github        *auth.GitHubProvider
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	tokens *auth.TokenService,
	github *auth.GitHubProvider,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		tokens:        tokens,
		github:        github,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// sessionResponse is what register, login and /api/me return.
type sessionResponse struct {
	UID       string     `json:"uid"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// HandleRegister creates an account and signs it in.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"email": "ann@example.com", "password": "secret1"}
//
// An email that is already registered answers 409 with
// "Account already exists. Please log in." so the page can show it as is.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	result, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokens, h.secureCookies)
	writeJSON(w, http.StatusCreated, sessionResponse{
		UID:       result.Account.ID,
		Email:     result.Account.Email,
		CreatedAt: &result.Account.CreatedAt,
	})
}

// HandleLogin checks an email/password pair.
//
// HTTP: POST /api/auth/login
//
// Every failure answers 401 "Invalid email or password."
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokens, h.secureCookies)
	writeJSON(w, http.StatusOK, sessionResponse{
		UID:       result.Account.ID,
		Email:     result.Account.Email,
		CreatedAt: &result.Account.CreatedAt,
	})
}

// HandleLogout expires the session cookie.
//
// HTTP: POST /api/auth/logout
//
// WHY POST AND NOT GET?
// Logout changes state. A GET could be triggered by a prefetch or an <img>
// on another site.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the signed-in account.
//
// HTTP: GET /api/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("valid authentication required"))
		return
	}

	account, err := h.auth.GetAccount(r.Context(), session.AccountID)
	if err != nil {
		// A valid token for a vanished account is treated as signed out.
		if errors.Is(err, apperror.ErrNotFound) {
			auth.ClearSessionCookie(w, h.secureCookies)
			writeError(w, h.logger, apperror.Unauthorized("valid authentication required"))
			return
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		UID:       account.ID,
		Email:     account.Email,
		CreatedAt: &account.CreatedAt,
	})
}

// HandleGitHubLogin redirects the browser to GitHub's consent page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state is stored in a short-lived HttpOnly cookie and sent to
// GitHub, which echoes it on the callback. A callback whose state does not
// match the cookie was not started by this browser.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth sign-in and lands on the dashboard.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/login?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			http.Redirect(w, r, "/login?auth=exists", http.StatusSeeOther)
			return
		}
		h.logger.Error("auth callback: sign-in failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokens, h.secureCookies)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
