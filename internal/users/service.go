package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

// CreateInput models an admin user creation payload. Format validation
// happens at the API boundary; the service only enforces presence and
// normalizes the email casing.
type CreateInput struct {
	Email    string
	FullName string
	Phone    *string
}

// Service exposes the admin user profile operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a user service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		FullName: input.FullName,
		Phone:    input.Phone,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert user")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return users, nil
}

// ApplyPatch compiles the supplied fields against the users allow-list into
// one UPDATE. Emails are lowercased before they hit the store.
func (s *service) ApplyPatch(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	if id == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	normalized := make(map[string]any, len(fields))
	for name, value := range fields {
		if name == "email" {
			if email, ok := value.(string); ok {
				normalized[name] = strings.ToLower(strings.TrimSpace(email))
				continue
			}
		}
		normalized[name] = value
	}

	patch := sqlbuild.PatchFromMap(normalized)
	affected, err := s.repo.ApplyPatch(ctx, id, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, sqlbuild.ErrNothingToUpdate) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "patch contains no fields")
		}
		if errors.Is(err, sqlbuild.ErrDisallowedColumn) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "patch rejected")
		}
		if pkgerrors.IsUniqueViolation(err) {
			return 0, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply user patch")
	}
	return affected, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
