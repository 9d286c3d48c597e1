package controllers

import (
	"net/http"

	"github.com/nyumbalink/listings-backend/api/responses"
	"github.com/nyumbalink/listings-backend/api/validators"
	"github.com/nyumbalink/listings-backend/internal/users"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
)

type userCreateRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName string  `json:"full_name" validate:"required,max=120"`
	Phone    *string `json:"phone,omitempty"`
}

// CreateUser handles POST /api/v1/users.
func CreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload userCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), users.CreateInput{
			Email:    payload.Email,
			FullName: validators.SanitizeString(payload.FullName, 120),
			Phone:    payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// GetUser handles GET /api/v1/users/{userId}.
func GetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// ListUsers handles GET /api/v1/users.
func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"users": items})
	}
}

// PatchUser handles PATCH /api/v1/users/{userId}.
func PatchUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fields, err := decodeFieldMap(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		affected, err := svc.ApplyPatch(r.Context(), id, fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if affected == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": true})
	}
}

// DeleteUser handles DELETE /api/v1/users/{userId}.
func DeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "userId")
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
