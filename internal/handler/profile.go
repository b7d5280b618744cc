package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/sakif/deskboard/internal/service"
)

// ProfileHandler serves /api/profile for the signed-in user.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns the saved profile, or an empty one carrying only uid.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleSave overwrites every profile field. A uid in the body is ignored.
//
// HTTP: PUT /api/profile
func (h *ProfileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := render.Bind(r, &req); err != nil {
		writeBadRequest(w, h.logger, err)
		return
	}

	profile, err := h.profiles.Save(r.Context(), uidFrom(r), req.Profile)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleDelete clears the profile and returns the empty one.
//
// HTTP: DELETE /api/profile
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Delete(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
