package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nyumbalink/listings-backend/api/responses"
	"github.com/nyumbalink/listings-backend/api/validators"
	"github.com/nyumbalink/listings-backend/internal/pages"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
)

type pageCreateRequest struct {
	Slug     string `json:"slug" validate:"required,max=120"`
	Title    string `json:"title" validate:"required,max=200"`
	BodyHTML string `json:"body_html"`
}

// CreatePage handles POST /api/v1/pages.
func CreatePage(svc pages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload pageCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), pages.CreateInput{
			Slug:     strings.TrimSpace(payload.Slug),
			Title:    validators.SanitizeString(payload.Title, 200),
			BodyHTML: payload.BodyHTML,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// GetPage handles GET /api/v1/pages/{slug}, returning the page plus its
// section media.
func GetPage(svc pages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := parseSlugParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListPages handles GET /api/v1/pages.
func ListPages(svc pages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"pages": items})
	}
}

// PatchPage handles PATCH /api/v1/pages/{slug}.
func PatchPage(svc pages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := parseSlugParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fields, err := decodeFieldMap(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		affected, err := svc.ApplyPatch(r.Context(), slug, fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if affected == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "page not found"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": true})
	}
}

// DeletePage handles DELETE /api/v1/pages/{slug}.
func DeletePage(svc pages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := parseSlugParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), slug); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

func parseSlugParam(r *http.Request) (string, error) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "page slug is required")
	}
	return slug, nil
}
