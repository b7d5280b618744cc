package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/sakif/deskboard/internal/auth"
	"github.com/sakif/deskboard/internal/service"
)

// ProductHandler serves /api/products for the signed-in user's own
// inventory.
type ProductHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

func NewProductHandler(products *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func uidFrom(r *http.Request) string {
	s, _ := auth.SessionFromContext(r.Context())
	return s.AccountID
}

// HTTP: GET /api/products
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleCategories returns the categories derived from the current list.
//
// HTTP: GET /api/products/categories
func (h *ProductHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.products.Catalog(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Categories)
}

// HandleStream sends {"products": [...], "categories": [...]} now and after
// every change.
//
// HTTP: GET /api/products/stream (text/event-stream)
func (h *ProductHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	updates, err := h.products.Watch(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	streamJSON(w, r, h.logger, updates)
}

// HTTP: GET /api/products/{id}
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), uidFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HTTP: POST /api/products
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	product, err := h.products.Create(r.Context(), uidFrom(r), req.ProductInput)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// HTTP: PUT /api/products/{id}
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	product, err := h.products.Update(r.Context(), uidFrom(r), r.PathValue("id"), req.ProductInput)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HTTP: DELETE /api/products/{id}
func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), uidFrom(r), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
