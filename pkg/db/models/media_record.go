package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nyumbalink/listings-backend/pkg/enums"
)

// MediaRecord is the metadata row for an object held in external storage.
// Exactly one of ListingID or PageSection is set: a record either belongs
// to a listing or to a named section of a free-standing page.
type MediaRecord struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID   *uuid.UUID          `gorm:"column:listing_id;type:uuid"`
	PageSection *string             `gorm:"column:page_section"`
	URL         string              `gorm:"column:url;not null"`
	GCSKey      string              `gorm:"column:gcs_key;not null;unique"`
	Category    enums.MediaCategory `gorm:"column:category;type:media_category;not null"`
	Position    int                 `gorm:"column:position;not null;default:0"`
	AltText     *string             `gorm:"column:alt_text"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
