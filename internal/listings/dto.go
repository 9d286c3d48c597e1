package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nyumbalink/listings-backend/pkg/enums"
	"github.com/nyumbalink/listings-backend/pkg/pagination"
)

// FilterCriteria is the sparse search input for listing collections. Every
// field is optional; only supplied fields become predicates.
type FilterCriteria struct {
	Location     *string
	PropertyType *enums.PropertyType
	Status       *enums.ListingStatus
	PriceMin     *int64
	PriceMax     *int64
	BedroomsMin  *int
	BathroomsMin *int
	ParkingMin   *int
	IsFeatured   *bool
}

// CreateInput models an admin listing creation payload. Price arrives raw
// because admin forms submit formatted strings as often as numbers.
type CreateInput struct {
	Title         string
	Description   string
	Location      string
	PropertyType  enums.PropertyType
	Status        enums.ListingStatus
	Price         any
	Bedrooms      int
	Bathrooms     int
	ParkingSpaces int
	Amenities     []string
}

// ListParams combines filter criteria with cursor pagination.
type ListParams struct {
	Filter     FilterCriteria
	Pagination pagination.Params
}

// Summary is the collection-read shape: listing fields plus the primary
// media URL resolved by the aggregator.
type Summary struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Location      string              `json:"location"`
	PropertyType  enums.PropertyType  `json:"property_type"`
	Status        enums.ListingStatus `json:"status"`
	Price         int64               `json:"price"`
	Bedrooms      int                 `json:"bedrooms"`
	Bathrooms     int                 `json:"bathrooms"`
	ParkingSpaces int                 `json:"parking_spaces"`
	Amenities     pq.StringArray      `json:"amenities"`
	IsFeatured    bool                `json:"is_featured"`
	PrimaryImage  string              `json:"primary_image,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ListResult carries one page of summaries plus the cursor for the next.
type ListResult struct {
	Listings   []Summary `json:"listings"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
