package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/sakif/deskboard/internal/auth"
	"github.com/sakif/deskboard/internal/service"
)

// ArticleHandler serves /api/articles. Every route runs behind
// auth.RequireAuth, so a session is always in the context.
type ArticleHandler struct {
	articles *service.ArticleService
	logger   *slog.Logger
}

func NewArticleHandler(articles *service.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

func authorFrom(r *http.Request) service.Author {
	s, _ := auth.SessionFromContext(r.Context())
	return service.Author{ID: s.AccountID, Email: s.Email}
}

// HandleList returns the signed-in author's articles, oldest first.
//
// HTTP: GET /api/articles
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context(), authorFrom(r).ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleStream sends the author's article list now and after every change.
//
// HTTP: GET /api/articles/stream (text/event-stream)
func (h *ArticleHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	updates, err := h.articles.Watch(r.Context(), authorFrom(r).ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	streamJSON(w, r, h.logger, updates)
}

// HTTP: GET /api/articles/{id}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleCreate posts a new article.
//
// HTTP: POST /api/articles
// REQUEST BODY: {"title": "...", "content": "..."}
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	article, err := h.articles.Create(r.Context(), authorFrom(r), req.ArticleInput)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// HandleUpdate edits an existing article in place.
//
// HTTP: PUT /api/articles/{id}
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	article, err := h.articles.Update(r.Context(), authorFrom(r), r.PathValue("id"), req.ArticleInput)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HTTP: DELETE /api/articles/{id}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), authorFrom(r), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
