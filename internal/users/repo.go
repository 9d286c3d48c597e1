package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

// patchColumns is the fixed allow-list for user partial updates.
var patchColumns = map[string]struct{}{
	"email":     {},
	"full_name": {},
	"phone":     {},
}

// Repository exposes user persistence operations.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("email ASC").Find(&users).Error
	return users, err
}

// ApplyPatch compiles the patch against the users allow-list and executes it.
func (r *repository) ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error) {
	stmt, args, err := sqlbuild.CompileUpdate("users", patchColumns, patch, id, now)
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

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	return result.RowsAffected, result.Error
}
