package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nyumbalink/listings-backend/api/responses"
	"github.com/nyumbalink/listings-backend/internal/media"
	"github.com/nyumbalink/listings-backend/pkg/enums"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
)

// upload carries the parsed multipart pieces every media mutation shares.
type upload struct {
	data     []byte
	fileName string
	category enums.MediaCategory
	altText  *string
}

// CreateListingMedia handles POST /api/v1/listings/{listingId}/media.
func CreateListingMedia(svc media.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := parseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		up, err := parseUpload(r, maxUploadBytes, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Create(r.Context(), media.CreateInput{
			Parent:   media.Parent{ListingID: &listingID},
			Category: up.category,
			FileName: up.fileName,
			AltText:  up.altText,
			Data:     up.data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// CreatePageMedia handles POST /api/v1/pages/{slug}/media, attaching the
// upload to the section named after the slug.
func CreatePageMedia(svc media.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "page slug is required"))
			return
		}

		up, err := parseUpload(r, maxUploadBytes, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Create(r.Context(), media.CreateInput{
			Parent:   media.Parent{PageSection: &slug},
			Category: up.category,
			FileName: up.fileName,
			AltText:  up.altText,
			Data:     up.data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// ReplaceMedia handles PUT /api/v1/media/{mediaId}: a new object takes over
// the existing record's slot and category.
func ReplaceMedia(svc media.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		up, err := parseUpload(r, maxUploadBytes, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Replace(r.Context(), id, up.data, up.fileName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DeleteMedia handles DELETE /api/v1/media/{mediaId}.
func DeleteMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// parseUpload reads the multipart body: a required "file" part plus optional
// "category" and "alt_text" values. The request body is capped slightly above
// the media limit so the service still owns the size verdict.
func parseUpload(r *http.Request, maxUploadBytes int64, requireCategory bool) (upload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return upload{}, pkgerrors.New(pkgerrors.CodeValidation, "file part is required")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return upload{}, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds the size limit")
		}
		return upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}

	up := upload{data: data, fileName: header.Filename}

	if alt := strings.TrimSpace(r.FormValue("alt_text")); alt != "" {
		up.altText = &alt
	}

	raw := strings.TrimSpace(r.FormValue("category"))
	if raw == "" {
		if requireCategory {
			return upload{}, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
		}
		return up, nil
	}
	category, err := enums.ParseMediaCategory(raw)
	if err != nil {
		return upload{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid media category")
	}
	up.category = category
	return up, nil
}
