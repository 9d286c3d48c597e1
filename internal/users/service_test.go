package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	pkgerrors "github.com/nyumbalink/listings-backend/pkg/errors"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

type stubUserRepo struct {
	created        *models.User
	createErr      error
	user           *models.User
	findErr        error
	patch          sqlbuild.Patch
	patchAffected  int64
	patchErr       error
	deleteAffected int64
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = user
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.user, s.findErr
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error) {
	s.patch = patch
	return s.patchAffected, s.patchErr
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.deleteAffected, nil
}

func newTestService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestServiceCreateNormalizesEmail(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{}
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "  Wanjiku@Example.COM ",
		FullName: "Wanjiku Kamau",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "wanjiku@example.com" {
		t.Fatalf("email not normalized, got %q", created.Email)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{name: "missing email", input: CreateInput{FullName: "Wanjiku Kamau"}},
		{name: "blank email", input: CreateInput{Email: "   ", FullName: "Wanjiku Kamau"}},
		{name: "missing name", input: CreateInput{Email: "wanjiku@example.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &stubUserRepo{}
			svc := newTestService(t, repo)

			_, err := svc.Create(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceCreateMapsEmailConflict(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{createErr: &pq.Error{Code: "23505", Constraint: "users_email_key"}}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "wanjiku@example.com",
		FullName: "Wanjiku Kamau",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceGetMissingUser(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo)

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceApplyPatchNormalizesEmail(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{patchAffected: 1}
	svc := newTestService(t, repo)

	id := uuid.New()
	affected, err := svc.ApplyPatch(context.Background(), id, map[string]any{
		"email": " New@Example.COM ",
	})
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected one row, got %d", affected)
	}

	_, args, err := sqlbuild.CompileUpdate("users", patchColumns, repo.patch, id, time.Now())
	if err != nil {
		t.Fatalf("recompile recorded patch: %v", err)
	}
	if args[0] != "new@example.com" {
		t.Fatalf("email not normalized before compile, args=%v", args)
	}
}

func TestServiceApplyPatchMapsErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		patchErr error
		wantCode pkgerrors.Code
	}{
		{name: "empty patch", patchErr: sqlbuild.ErrNothingToUpdate, wantCode: pkgerrors.CodeValidation},
		{name: "disallowed column", patchErr: sqlbuild.ErrDisallowedColumn, wantCode: pkgerrors.CodeValidation},
		{name: "email conflict", patchErr: &pq.Error{Code: "23505"}, wantCode: pkgerrors.CodeConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &stubUserRepo{patchErr: tc.patchErr}
			svc := newTestService(t, repo)

			_, err := svc.ApplyPatch(context.Background(), uuid.New(), map[string]any{"email": "x@y.com"})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestServiceDeleteMissingUser(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{deleteAffected: 0}
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
