package handler

import (
	"net/http"

	"github.com/sakif/deskboard/internal/model"
)

// Request payloads for render.Bind, which decodes the body and then calls
// the payload's Bind hook. Field rules (empty titles, negative prices) live
// in the services, so the hooks here have nothing to reject.

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *credentialsRequest) Bind(r *http.Request) error { return nil }

type articleRequest struct {
	model.ArticleInput
}

func (a *articleRequest) Bind(r *http.Request) error { return nil }

type productRequest struct {
	model.ProductInput
}

func (p *productRequest) Bind(r *http.Request) error { return nil }

type profileRequest struct {
	model.Profile
}

func (p *profileRequest) Bind(r *http.Request) error { return nil }
