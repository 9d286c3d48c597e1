package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nyumbalink/listings-backend/api/responses"
	"github.com/nyumbalink/listings-backend/api/validators"
	"github.com/nyumbalink/listings-backend/internal/listings"
	"github.com/nyumbalink/listings-backend/pkg/enums"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/pagination"
)

type listingCreateRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description"`
	Location      string   `json:"location" validate:"required,max=120"`
	PropertyType  string   `json:"property_type" validate:"required"`
	Status        string   `json:"status"`
	Price         any      `json:"price"`
	Bedrooms      int      `json:"bedrooms" validate:"min=0"`
	Bathrooms     int      `json:"bathrooms" validate:"min=0"`
	ParkingSpaces int      `json:"parking_spaces" validate:"min=0"`
	Amenities     []string `json:"amenities"`
}

type featuredSetRequest struct {
	ListingIDs []string `json:"listing_ids"`
}

// CreateListing handles POST /api/v1/listings.
func CreateListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload listingCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := listings.CreateInput{
			Title:         validators.SanitizeString(payload.Title, 200),
			Description:   payload.Description,
			Location:      validators.SanitizeString(payload.Location, 120),
			PropertyType:  enums.PropertyType(strings.TrimSpace(payload.PropertyType)),
			Status:        enums.ListingStatus(strings.TrimSpace(payload.Status)),
			Price:         payload.Price,
			Bedrooms:      payload.Bedrooms,
			Bathrooms:     payload.Bathrooms,
			ParkingSpaces: payload.ParkingSpaces,
			Amenities:     payload.Amenities,
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// GetListing handles GET /api/v1/listings/{listingId}.
func GetListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, gallery, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"listing": listing,
			"gallery": gallery,
		})
	}
}

// ListListings handles GET /api/v1/listings with optional filter criteria.
func ListListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListingFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), listings.ListParams{
			Filter: filter,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PatchListing handles PATCH /api/v1/listings/{listingId}. The body is a
// sparse field map; absent keys are left untouched.
func PatchListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "listingId")
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
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": true})
	}
}

// DeleteListing handles DELETE /api/v1/listings/{listingId}.
func DeleteListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "listingId")
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

// SetFeaturedListings handles POST /api/v1/listings/featured, replacing the
// featured set with exactly the supplied ids.
func SetFeaturedListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload featuredSetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(payload.ListingIDs))
		for _, raw := range payload.ListingIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "listing_ids contains an invalid id"))
				return
			}
			ids = append(ids, id)
		}

		if err := svc.SetFeaturedSet(r.Context(), ids); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"featured_count": len(ids)})
	}
}

func parseListingFilter(r *http.Request) (listings.FilterCriteria, error) {
	var filter listings.FilterCriteria
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("location")); raw != "" {
		filter.Location = &raw
	}
	if raw := strings.TrimSpace(q.Get("property_type")); raw != "" {
		parsed, err := enums.ParsePropertyType(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid property_type filter")
		}
		filter.PropertyType = &parsed
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		parsed, err := enums.ParseListingStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = &parsed
	}
	if value, ok, err := queryInt64(q.Get("price_min")); err != nil {
		return filter, err
	} else if ok {
		filter.PriceMin = &value
	}
	if value, ok, err := queryInt64(q.Get("price_max")); err != nil {
		return filter, err
	} else if ok {
		filter.PriceMax = &value
	}
	if value, ok, err := queryInt(q.Get("bedrooms_min")); err != nil {
		return filter, err
	} else if ok {
		filter.BedroomsMin = &value
	}
	if value, ok, err := queryInt(q.Get("bathrooms_min")); err != nil {
		return filter, err
	} else if ok {
		filter.BathroomsMin = &value
	}
	if value, ok, err := queryInt(q.Get("parking_min")); err != nil {
		return filter, err
	} else if ok {
		filter.ParkingMin = &value
	}
	if raw := strings.TrimSpace(q.Get("is_featured")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "is_featured must be a boolean")
		}
		filter.IsFeatured = &parsed
	}
	return filter, nil
}

func queryInt64(raw string) (int64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, "filter value must be numeric")
	}
	return value, true, nil
}

func queryInt(raw string) (int, bool, error) {
	value, ok, err := queryInt64(raw)
	return int(value), ok, err
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid resource id")
	}
	return id, nil
}
