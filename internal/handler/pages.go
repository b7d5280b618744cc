// Package handler contains the HTTP handlers for deskboard: the JSON API
// under /api and the four HTML pages.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming request (path values, JSON body, session cookie)
// 2. Call the service layer
// 3. Write the response (status code, headers, body)
//
// Handlers hold no business rules. Validation, ownership checks and store
// layout all live in internal/service.
package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/deskboard/internal/auth"
	"github.com/sakif/deskboard/internal/model"
	"github.com/sakif/deskboard/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames are the pages built on top of base.html.
var pageNames = []string{"login", "register", "dashboard", "profile"}

// loginNotices maps the ?auth= value set by the OAuth callback to the text
// shown above the login form.
var loginNotices = map[string]string{
	"denied": "GitHub sign-in was cancelled.",
	"exists": "Account already exists. Please log in.",
}

// PageHandler renders the HTML pages. The pages themselves only load data
// through the JSON API; the server-side render fills in what is needed for
// the first paint.
//
// WHY ONE TEMPLATE SET PER PAGE?
// Every page defines its own "content" and "scripts" blocks. Parsed into a
// single set, the last page parsed would win. Each page is therefore parsed
// together with base.html into its own set.
type PageHandler struct {
	pages         map[string]*template.Template
	profiles      *service.ProfileService
	githubEnabled bool
	logger        *slog.Logger
}

// NewPageHandler parses the embedded templates once at startup.
func NewPageHandler(profiles *service.ProfileService, githubEnabled bool, logger *slog.Logger) (*PageHandler, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		pages:         pages,
		profiles:      profiles,
		githubEnabled: githubEnabled,
		logger:        logger,
	}, nil
}

type pageData struct {
	Title         string
	Email         string
	Notice        string
	GitHubEnabled bool
	Profile       model.Profile
}

// HTTP: GET /login
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login", pageData{
		Title:         "Login",
		Notice:        loginNotices[r.URL.Query().Get("auth")],
		GitHubEnabled: h.githubEnabled,
	})
}

// HTTP: GET /register
func (h *PageHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register", pageData{Title: "Register"})
}

// HandleDashboard shows the signed-in user's articles and products.
//
// HTTP: GET /dashboard
func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	profile, err := h.profiles.Get(r.Context(), session.AccountID)
	if err != nil {
		// The header falls back to "Username"; the rest of the page still works.
		h.logger.Warn("dashboard: loading profile", slog.String("error", err.Error()))
		profile = model.DefaultProfile(session.AccountID)
	}

	h.render(w, "dashboard", pageData{
		Title:   "Dashboard : " + session.Email,
		Email:   session.Email,
		Profile: profile,
	})
}

// HTTP: GET /profile
func (h *PageHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	profile, err := h.profiles.Get(r.Context(), session.AccountID)
	if err != nil {
		h.logger.Error("profile page: loading profile", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, "profile", pageData{
		Title:   "Profile : " + session.Email,
		Email:   session.Email,
		Profile: profile,
	})
}

// HandleFallback sends every unknown page to the login screen. A signed-in
// visitor is then forwarded again by the login route's own gate.
func (h *PageHandler) HandleFallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// render executes into a buffer first, so a template error can still
// produce a clean 500 instead of half a page.
func (h *PageHandler) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
