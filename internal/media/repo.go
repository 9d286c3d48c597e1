package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
)

// Repository exposes media metadata persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a media record.
func (r *Repository) Create(ctx context.Context, record *models.MediaRecord) (*models.MediaRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByID retrieves a media record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaRecord, error) {
	var record models.MediaRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a media record, reporting how many rows went away.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MediaRecord{})
	return result.RowsAffected, result.Error
}

// MaxPosition returns the highest position under the parent, with found=false
// when the parent has no media yet.
func (r *Repository) MaxPosition(ctx context.Context, parent Parent) (int, bool, error) {
	query := r.db.WithContext(ctx).Model(&models.MediaRecord{})
	switch {
	case parent.ListingID != nil:
		query = query.Where("listing_id = ?", *parent.ListingID)
	case parent.PageSection != nil:
		query = query.Where("page_section = ?", *parent.PageSection)
	}

	var positions []int
	if err := query.Order("position DESC").Limit(1).Pluck("position", &positions).Error; err != nil {
		return 0, false, err
	}
	if len(positions) == 0 {
		return 0, false, nil
	}
	return positions[0], true, nil
}

// ListByListingIDs fetches all media for the batch in one query, ordered so
// the aggregator can group without re-sorting.
func (r *Repository) ListByListingIDs(ctx context.Context, listingIDs []uuid.UUID) ([]models.MediaRecord, error) {
	var records []models.MediaRecord
	err := r.db.WithContext(ctx).
		Where("listing_id IN ?", listingIDs).
		Order("listing_id").
		Order("position ASC").
		Order("created_at ASC").
		Find(&records).
		Error
	return records, err
}

// ListByPageSection returns the ordered media rows for one page section.
func (r *Repository) ListByPageSection(ctx context.Context, section string) ([]models.MediaRecord, error) {
	var records []models.MediaRecord
	err := r.db.WithContext(ctx).
		Where("page_section = ?", section).
		Order("position ASC").
		Order("created_at ASC").
		Find(&records).
		Error
	return records, err
}

// KeysForListing lists the storage keys referenced by a listing's media.
func (r *Repository) KeysForListing(ctx context.Context, listingID uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.MediaRecord{}).
		Where("listing_id = ?", listingID).
		Pluck("gcs_key", &keys).
		Error
	return keys, err
}

// DeleteByGCSKey removes the metadata row referencing a storage key. Used by
// the deletion consumer to clean up dangling references.
func (r *Repository) DeleteByGCSKey(ctx context.Context, gcsKey string) (int64, error) {
	result := r.db.WithContext(ctx).Where("gcs_key = ?", gcsKey).Delete(&models.MediaRecord{})
	return result.RowsAffected, result.Error
}
