package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nyumbalink/listings-backend/pkg/enums"
)

// Listing is a property listing managed through the admin surface.
type Listing struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string              `gorm:"column:title;not null"`
	Description   string              `gorm:"column:description"`
	Location      string              `gorm:"column:location;not null"`
	PropertyType  enums.PropertyType  `gorm:"column:property_type;type:property_type;not null"`
	Status        enums.ListingStatus `gorm:"column:status;type:listing_status;not null;default:draft"`
	Price         int64               `gorm:"column:price;not null;default:0"`
	Bedrooms      int                 `gorm:"column:bedrooms;not null;default:0"`
	Bathrooms     int                 `gorm:"column:bathrooms;not null;default:0"`
	ParkingSpaces int                 `gorm:"column:parking_spaces;not null;default:0"`
	Amenities     pq.StringArray      `gorm:"column:amenities;type:text[]"`
	IsFeatured    bool                `gorm:"column:is_featured;not null;default:false"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
