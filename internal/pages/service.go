package pages

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type sectionMediaProvider interface {
	SectionMedia(ctx context.Context, section string) ([]models.MediaRecord, error)
}

// CreateInput models an admin page creation payload.
type CreateInput struct {
	Slug     string
	Title    string
	BodyHTML string
}

// PageView is a page plus the media attached to the section named after its
// slug.
type PageView struct {
	Page  *models.Page         `json:"page"`
	Media []models.MediaRecord `json:"media"`
}

// Service exposes the page operations the admin surface calls into.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Page, error)
	Get(ctx context.Context, slug string) (*PageView, error)
	List(ctx context.Context) ([]models.Page, error)
	ApplyPatch(ctx context.Context, slug string, fields map[string]any) (int64, error)
	Delete(ctx context.Context, slug string) error
}

type service struct {
	repo  Repository
	media sectionMediaProvider
	now   func() time.Time
}

// NewService constructs a page service.
func NewService(repo Repository, mediaSvc sectionMediaProvider) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("page repository required")
	}
	if mediaSvc == nil {
		return nil, fmt.Errorf("media service required")
	}
	return &service{repo: repo, media: mediaSvc, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Page, error) {
	if !slugPattern.MatchString(input.Slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase words joined by hyphens")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	page := &models.Page{
		ID:       uuid.New(),
		Slug:     input.Slug,
		Title:    input.Title,
		BodyHTML: input.BodyHTML,
	}
	created, err := s.repo.Create(ctx, page)
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert page")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, slug string) (*PageView, error) {
	page, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "page not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load page")
	}

	records, err := s.media.SectionMedia(ctx, page.Slug)
	if err != nil {
		return nil, err
	}
	return &PageView{Page: page, Media: records}, nil
}

func (s *service) List(ctx context.Context) ([]models.Page, error) {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pages")
	}
	return pages, nil
}

// ApplyPatch resolves the slug to its row, then compiles one UPDATE against
// the pages allow-list. A renamed slug is validated like a created one.
func (s *service) ApplyPatch(ctx context.Context, slug string, fields map[string]any) (int64, error) {
	page, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "page not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load page")
	}

	if raw, ok := fields["slug"]; ok {
		next, isString := raw.(string)
		if !isString || !slugPattern.MatchString(next) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase words joined by hyphens")
		}
	}

	patch := sqlbuild.PatchFromMap(fields)
	affected, err := s.repo.ApplyPatch(ctx, page.ID, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, sqlbuild.ErrNothingToUpdate) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "patch contains no fields")
		}
		if errors.Is(err, sqlbuild.ErrDisallowedColumn) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "patch rejected")
		}
		if pkgerrors.IsUniqueViolation(err) {
			return 0, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply page patch")
	}
	return affected, nil
}

func (s *service) Delete(ctx context.Context, slug string) error {
	affected, err := s.repo.Delete(ctx, slug)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete page")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "page not found")
	}
	return nil
}
