package pages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

// patchColumns is the fixed allow-list for page partial updates.
var patchColumns = map[string]struct{}{
	"slug":      {},
	"title":     {},
	"body_html": {},
}

// Repository exposes page persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, page *models.Page) (*models.Page, error)
	FindBySlug(ctx context.Context, slug string) (*models.Page, error)
	List(ctx context.Context) ([]models.Page, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error)
	Delete(ctx context.Context, slug string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, page *models.Page) (*models.Page, error) {
	if err := r.db.WithContext(ctx).Create(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).First(&page, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// List returns every page ordered by slug; the catalog is small enough that
// pagination would be noise.
func (r *repository) List(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&pages).Error
	return pages, err
}

// ApplyPatch compiles the patch against the pages allow-list and executes it.
func (r *repository) ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error) {
	stmt, args, err := sqlbuild.CompileUpdate("pages", patchColumns, patch, id, now)
	if err != nil {
		return 0, err
	}
	// Compiled statements carry $n placeholders, which GORM's Exec does not
	// bind, so they run against the connection pool directly.
	result, err := r.db.Statement.ConnPool.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) Delete(ctx context.Context, slug string) (int64, error) {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Page{})
	return result.RowsAffected, result.Error
}
