package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/enums"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/metrics"
	"github.com/nyumbalink/listings-backend/pkg/storage/gcs"
)

// Parent identifies the owner of a media record: a listing or a named page
// section, never both.
type Parent struct {
	ListingID   *uuid.UUID
	PageSection *string
}

func (p Parent) validate() error {
	hasListing := p.ListingID != nil && *p.ListingID != uuid.Nil
	hasSection := p.PageSection != nil && strings.TrimSpace(*p.PageSection) != ""
	if hasListing == hasSection {
		return pkgerrors.New(pkgerrors.CodeValidation, "exactly one of listing_id or page_section is required")
	}
	return nil
}

func (p Parent) segment() string {
	if p.ListingID != nil {
		return "listings/" + p.ListingID.String()
	}
	if p.PageSection != nil {
		return "pages/" + strings.TrimSpace(*p.PageSection)
	}
	return "unowned"
}

// CreateInput models a media upload: the raw payload plus the metadata row
// fields the caller controls.
type CreateInput struct {
	Parent   Parent
	Category enums.MediaCategory
	FileName string
	AltText  *string
	Data     []byte
}

type mediaRepository interface {
	Create(ctx context.Context, record *models.MediaRecord) (*models.MediaRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	MaxPosition(ctx context.Context, parent Parent) (int, bool, error)
	ListByListingIDs(ctx context.Context, listingIDs []uuid.UUID) ([]models.MediaRecord, error)
	ListByPageSection(ctx context.Context, section string) ([]models.MediaRecord, error)
	KeysForListing(ctx context.Context, listingID uuid.UUID) ([]string, error)
}

type objectStore interface {
	UploadObject(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Service coordinates media state across object storage and the metadata
// store. Writes are ordered so the tolerated failure mode is an orphaned
// object, never a metadata row pointing at a missing object.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.MediaRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Replace(ctx context.Context, id uuid.UUID, data []byte, fileName string) (*models.MediaRecord, error)
	Galleries(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID]Gallery, error)
	SectionMedia(ctx context.Context, section string) ([]models.MediaRecord, error)
	KeysForListing(ctx context.Context, listingID uuid.UUID) ([]string, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

type service struct {
	repo           mediaRepository
	store          objectStore
	bucket         string
	maxUploadBytes int64
	metrics        *metrics.MediaMetrics
	logg           *logger.Logger
	now            func() time.Time
}

// NewService constructs the media coordinator.
func NewService(repo mediaRepository, store objectStore, bucket string, maxUploadBytes int64, mm *metrics.MediaMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:           repo,
		store:          store,
		bucket:         bucket,
		maxUploadBytes: maxUploadBytes,
		metrics:        mm,
		logg:           logg,
		now:            time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.MediaRecord, error) {
	return s.create(ctx, input, nil)
}

// create uploads first, then inserts metadata. positionOverride is used by
// Replace to land the new record in the old record's slot.
func (s *service) create(ctx context.Context, input CreateInput, positionOverride *int) (*models.MediaRecord, error) {
	if err := input.Parent.validate(); err != nil {
		return nil, err
	}
	if input.Category == "" || !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media category")
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media payload is empty")
	}
	if int64(len(input.Data)) > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("media payload exceeds %d bytes", s.maxUploadBytes))
	}

	contentType, err := sniffContentType(input.Category, input.Data)
	if err != nil {
		return nil, err
	}

	mediaID := uuid.New()
	key := buildObjectKey(input.Parent, input.Category, mediaID, input.FileName)

	start := s.now()
	url, err := s.store.UploadObject(ctx, s.bucket, key, contentType, input.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, "upload media object")
	}
	s.metrics.ObserveUpload(time.Since(start))

	position := 0
	if positionOverride != nil {
		position = *positionOverride
	} else {
		maxPos, found, posErr := s.repo.MaxPosition(ctx, input.Parent)
		if posErr != nil {
			return s.failMetadata(ctx, key, posErr)
		}
		if found {
			position = maxPos + 1
		}
	}

	record := &models.MediaRecord{
		ID:          mediaID,
		ListingID:   input.Parent.ListingID,
		PageSection: input.Parent.PageSection,
		URL:         url,
		GCSKey:      key,
		Category:    input.Category,
		Position:    position,
		AltText:     input.AltText,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return s.failMetadata(ctx, key, err)
	}
	return record, nil
}

// failMetadata handles the create path's tolerated inconsistency: the object
// is already uploaded, the row is not. The orphan is logged and counted for
// the reconciliation sweep; nothing cleans it up inline.
func (s *service) failMetadata(ctx context.Context, key string, err error) (*models.MediaRecord, error) {
	logCtx := s.logg.WithGCSKey(ctx, key)
	s.logg.Error(logCtx, "media metadata write failed, object orphaned", err)
	s.metrics.IncOrphanedObject()
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "metadata write failed")
}

// Delete removes the object first, then the metadata row. A missing object
// counts as deleted; any other storage failure aborts with the row intact.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media record")
	}

	if err := s.store.DeleteObject(ctx, s.bucket, record.GCSKey); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeStorageError, err, "delete media object")
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media record")
	}
	return nil
}

// Replace is delete-then-create into the same slot. It is not atomic: a
// reader between the two steps sees no media for the slot.
func (s *service) Replace(ctx context.Context, id uuid.UUID, data []byte, fileName string) (*models.MediaRecord, error) {
	old, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media record")
	}

	if err := s.Delete(ctx, id); err != nil {
		return nil, err
	}

	position := old.Position
	return s.create(ctx, CreateInput{
		Parent:   Parent{ListingID: old.ListingID, PageSection: old.PageSection},
		Category: old.Category,
		FileName: fileName,
		AltText:  old.AltText,
		Data:     data,
	}, &position)
}

func (s *service) KeysForListing(ctx context.Context, listingID uuid.UUID) ([]string, error) {
	return s.repo.KeysForListing(ctx, listingID)
}

func buildObjectKey(parent Parent, category enums.MediaCategory, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s-%s", parent.segment(), category, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
