package media

import (
	"context"

	"github.com/google/uuid"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
)

// Gallery is the per-parent media view: URLs sorted ascending by position and
// the primary pick (smallest position, earliest created on ties).
type Gallery struct {
	URLs    []string             `json:"urls"`
	Primary string               `json:"primary,omitempty"`
	Items   []models.MediaRecord `json:"items"`
}

// Galleries resolves media for a batch of listings with a single media query.
// Every requested id gets an entry; listings without media get an empty
// gallery. An empty batch short-circuits without touching the store.
func (s *service) Galleries(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID]Gallery, error) {
	out := make(map[uuid.UUID]Gallery, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	for _, id := range listingIDs {
		out[id] = Gallery{URLs: []string{}, Items: []models.MediaRecord{}}
	}

	records, err := s.repo.ListByListingIDs(ctx, listingIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media records")
	}

	// Rows arrive ordered by (listing_id, position, created_at), so appending
	// preserves the per-parent ordering guarantee.
	for _, record := range records {
		if record.ListingID == nil {
			continue
		}
		gallery, ok := out[*record.ListingID]
		if !ok {
			continue
		}
		gallery.URLs = append(gallery.URLs, record.URL)
		gallery.Items = append(gallery.Items, record)
		if gallery.Primary == "" {
			gallery.Primary = record.URL
		}
		out[*record.ListingID] = gallery
	}
	return out, nil
}

// SectionMedia returns the ordered media for one named page section.
func (s *service) SectionMedia(ctx context.Context, section string) ([]models.MediaRecord, error) {
	if section == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page section is required")
	}
	records, err := s.repo.ListByPageSection(ctx, section)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list section media")
	}
	return records, nil
}
