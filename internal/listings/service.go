package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/internal/media"
	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/enums"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/money"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type mediaProvider interface {
	Galleries(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID]media.Gallery, error)
	KeysForListing(ctx context.Context, listingID uuid.UUID) ([]string, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

// Service exposes the listing operations the admin surface calls into.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Listing, *media.Gallery, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetFeaturedSet(ctx context.Context, ids []uuid.UUID) error
}

type service struct {
	repo  Repository
	tx    txRunner
	media mediaProvider
	logg  *logger.Logger
	now   func() time.Time
}

// NewService constructs a listing service.
func NewService(repo Repository, tx txRunner, mediaSvc mediaProvider, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if mediaSvc == nil {
		return nil, fmt.Errorf("media service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:  repo,
		tx:    tx,
		media: mediaSvc,
		logg:  logg,
		now:   time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Listing, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Location == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}
	if !input.PropertyType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property type")
	}
	status := input.Status
	if status == "" {
		status = enums.ListingStatusDraft
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	listing := &models.Listing{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		PropertyType:  input.PropertyType,
		Status:        status,
		Price:         money.Normalize(input.Price),
		Bedrooms:      input.Bedrooms,
		Bathrooms:     input.Bathrooms,
		ParkingSpaces: input.ParkingSpaces,
		Amenities:     pq.StringArray(input.Amenities),
	}
	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert listing")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Listing, *media.Gallery, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	galleries, err := s.media.Galleries(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, nil, err
	}
	gallery := galleries[id]
	return listing, &gallery, nil
}

// List runs the filtered collection read: one listing query, one media query,
// then in-memory composition of summaries with their primary image.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	galleries, err := s.media.Galleries(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, Summary{
			ID:            row.ID,
			Title:         row.Title,
			Location:      row.Location,
			PropertyType:  row.PropertyType,
			Status:        row.Status,
			Price:         row.Price,
			Bedrooms:      row.Bedrooms,
			Bathrooms:     row.Bathrooms,
			ParkingSpaces: row.ParkingSpaces,
			Amenities:     row.Amenities,
			IsFeatured:    row.IsFeatured,
			PrimaryImage:  galleries[row.ID].Primary,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return &ListResult{Listings: summaries, NextCursor: nextCursor}, nil
}

// ApplyPatch validates the supplied fields against the allow-list, normalizes
// the price when present, and compiles one UPDATE. Zero rows means the
// listing was absent; callers map that to NotFound.
func (s *service) ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	if id == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	normalized := make(map[string]any, len(fields))
	for name, value := range fields {
		if name == "price" {
			normalized[name] = money.Normalize(value)
			continue
		}
		normalized[name] = value
	}

	patch := sqlbuild.PatchFromMap(normalized)
	affected, err := s.repo.ApplyPatch(ctx, id, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, sqlbuild.ErrNothingToUpdate) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "patch contains no fields")
		}
		if errors.Is(err, sqlbuild.ErrDisallowedColumn) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "patch rejected")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply listing patch")
	}
	return affected, nil
}

// Delete removes the listing row (media rows cascade with it) and then
// best-effort deletes the storage objects. Leaked objects are logged and
// counted but never block the delete.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	keys, err := s.media.KeysForListing(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media keys")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}

	if err := s.media.DeleteObjects(ctx, keys); err != nil {
		logCtx := s.logg.WithListingID(ctx, id.String())
		s.logg.Warn(logCtx, "listing deleted with leaked storage objects")
	}
	return nil
}

// SetFeaturedSet replaces the featured membership with exactly the supplied
// ids inside one transaction. An empty set clears the flag globally.
func (s *service) SetFeaturedSet(ctx context.Context, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "featured set contains an empty id")
		}
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "featured set contains duplicate ids")
		}
		seen[id] = struct{}{}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceFeaturedSet(ctx, ids)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace featured set")
	}
	return nil
}
