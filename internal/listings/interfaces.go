package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

// Repository exposes listing persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error)
	List(ctx context.Context, params ListParams) ([]models.Listing, string, error)
	ListFeaturedIDs(ctx context.Context) ([]uuid.UUID, error)
	ReplaceFeaturedSet(ctx context.Context, ids []uuid.UUID) error
}
