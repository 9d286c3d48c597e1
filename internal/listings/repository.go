package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyumbalink/listings-backend/pkg/db/models"
	"github.com/nyumbalink/listings-backend/pkg/pagination"
	"github.com/nyumbalink/listings-backend/pkg/sqlbuild"
)

// patchColumns is the fixed allow-list for listing partial updates. Anything
// outside it is rejected before a statement is compiled.
var patchColumns = map[string]struct{}{
	"title":          {},
	"description":    {},
	"location":       {},
	"property_type":  {},
	"status":         {},
	"price":          {},
	"bedrooms":       {},
	"bathrooms":      {},
	"parking_spaces": {},
	"amenities":      {},
}

const listColumns = `id, title, description, location, property_type, status, price,
bedrooms, bathrooms, parking_spaces, amenities, is_featured, created_at, updated_at`

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts a new listing row.
func (r *repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// FindByID loads a listing without associations.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Delete removes a listing row; media rows follow via the FK cascade.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{})
	return result.RowsAffected, result.Error
}

// ApplyPatch compiles the patch against the listings allow-list and executes
// it. Zero rows affected means the target was absent, not an error.
func (r *repository) ApplyPatch(ctx context.Context, id uuid.UUID, patch sqlbuild.Patch, now time.Time) (int64, error) {
	stmt, args, err := sqlbuild.CompileUpdate("listings", patchColumns, patch, id, now)
	if err != nil {
		return 0, err
	}
	return execCompiled(ctx, r.db, stmt, args...)
}

// execCompiled runs a statement carrying $n placeholders. GORM's Exec only
// binds values at ? markers, so compiled statements go straight to the
// connection pool (which is the transaction handle inside WithTx).
func execCompiled(ctx context.Context, db *gorm.DB, stmt string, args ...any) (int64, error) {
	result, err := db.Statement.ConnPool.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// List fetches one page of listing rows matching the filter, newest first.
func (r *repository) List(ctx context.Context, params ListParams) ([]models.Listing, string, error) {
	pageSize := pagination.NormalizeLimit(params.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	var b sqlbuild.Builder
	compileFilter(&b, params.Filter)
	if cursor != nil {
		b.AddExpr("(created_at < ? OR (created_at = ? AND id < ?))",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	query := strings.Join([]string{
		"SELECT " + listColumns,
		"FROM listings" + b.Where(),
		"ORDER BY created_at DESC, id DESC",
		fmt.Sprintf("LIMIT %d", limitWithBuffer),
	}, " ")

	sqlRows, err := r.db.Statement.ConnPool.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = sqlRows.Close() }()

	var rows []models.Listing
	if err := r.db.ScanRows(sqlRows, &rows); err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// ListFeaturedIDs returns the ids currently carrying the featured flag.
func (r *repository) ListFeaturedIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("is_featured = ?", true).
		Pluck("id", &ids).
		Error
	return ids, err
}

// ReplaceFeaturedSet clears the featured flag everywhere, then sets it for
// exactly the supplied ids. Callers run it inside a transaction so readers
// never observe a mix of the old and new assignment.
func (r *repository) ReplaceFeaturedSet(ctx context.Context, ids []uuid.UUID) error {
	if err := r.db.WithContext(ctx).Exec("UPDATE listings SET is_featured = FALSE WHERE is_featured").Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var b sqlbuild.Builder
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	b.AddIn("id", values...)

	affected, err := execCompiled(ctx, r.db, "UPDATE listings SET is_featured = TRUE"+b.Where(), b.Args()...)
	if err != nil {
		return err
	}
	if affected != int64(len(ids)) {
		return errors.New("featured set references missing listings")
	}
	return nil
}
