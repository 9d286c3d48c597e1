package sqlbuild

import (
	"errors"
	"testing"
	"time"
)

func TestBuilderSharesPlaceholderCounter(t *testing.T) {
	t.Parallel()

	var b Builder
	b.AddPredicate("location", "=", "Kilimani")
	b.AddPredicate("price", ">=", int64(50000))
	b.AddPredicate("price", "<=", int64(120000))

	want := " WHERE location = $1 AND price >= $2 AND price <= $3"
	if got := b.Where(); got != want {
		t.Fatalf("unexpected where clause %q", got)
	}
	args := b.Args()
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	if args[0] != "Kilimani" || args[1] != int64(50000) || args[2] != int64(120000) {
		t.Fatalf("args out of order: %v", args)
	}
}

func TestBuilderEmptyWhereMatchesAll(t *testing.T) {
	t.Parallel()

	var b Builder
	if got := b.Where(); got != "" {
		t.Fatalf("expected empty where clause, got %q", got)
	}
	if len(b.Args()) != 0 {
		t.Fatalf("expected no args")
	}
}

func TestBuilderMixedAssignmentsAndPredicates(t *testing.T) {
	t.Parallel()

	var b Builder
	b.AddAssignment("title", "Two bed apartment")
	b.AddAssignment("price", int64(85000))
	b.AddPredicate("id", "=", "abc")

	if got := b.Assignments(); got != "title = $1, price = $2" {
		t.Fatalf("unexpected assignments %q", got)
	}
	if got := b.Where(); got != " WHERE id = $3" {
		t.Fatalf("unexpected where %q", got)
	}
	if len(b.Args()) != 3 {
		t.Fatalf("expected 3 args, got %d", len(b.Args()))
	}
}

func TestBuilderAddInNumbersEveryValue(t *testing.T) {
	t.Parallel()

	var b Builder
	b.AddIn("id", "a", "b", "c")
	if got := b.Where(); got != " WHERE id IN ($1, $2, $3)" {
		t.Fatalf("unexpected where %q", got)
	}

	var after Builder
	after.AddPredicate("is_featured", "=", true)
	after.AddIn("id", "a", "b")
	if got := after.Where(); got != " WHERE is_featured = $1 AND id IN ($2, $3)" {
		t.Fatalf("counter not shared across predicate kinds: %q", got)
	}
}

func TestBuilderAddExprRewritesMarkers(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var b Builder
	b.AddPredicate("status", "=", "published")
	b.AddExpr("(created_at < ? OR (created_at = ? AND id < ?))", ts, ts, "cursor-id")

	want := " WHERE status = $1 AND (created_at < $2 OR (created_at = $3 AND id < $4))"
	if got := b.Where(); got != want {
		t.Fatalf("unexpected where %q", got)
	}
	if len(b.Args()) != 4 {
		t.Fatalf("expected 4 args, got %d", len(b.Args()))
	}
}

func TestBuilderAddInEmptyMatchesNothing(t *testing.T) {
	t.Parallel()

	var b Builder
	b.AddIn("id")
	if got := b.Where(); got != " WHERE FALSE" {
		t.Fatalf("unexpected where %q", got)
	}
	if len(b.Args()) != 0 {
		t.Fatalf("expected no args for empty IN")
	}
}

func TestCompileUpdateAppendsTimestampAndID(t *testing.T) {
	t.Parallel()

	allowed := map[string]struct{}{"title": {}, "price": {}}
	var patch Patch
	patch.Set("title", "Renovated")
	patch.Set("price", int64(95000))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stmt, args, err := CompileUpdate("listings", allowed, patch, "listing-id", now)
	if err != nil {
		t.Fatalf("CompileUpdate: %v", err)
	}

	want := "UPDATE listings SET title = $1, price = $2, updated_at = $3 WHERE id = $4"
	if stmt != want {
		t.Fatalf("unexpected statement %q", stmt)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[2] != now {
		t.Fatalf("timestamp not bound third: %v", args[2])
	}
	if args[3] != "listing-id" {
		t.Fatalf("id not bound last: %v", args[3])
	}
}

func TestCompileUpdateEmptyPatch(t *testing.T) {
	t.Parallel()

	_, _, err := CompileUpdate("listings", map[string]struct{}{"title": {}}, Patch{}, "id", time.Now())
	if err != ErrNothingToUpdate {
		t.Fatalf("expected ErrNothingToUpdate, got %v", err)
	}
}

func TestCompileUpdateRejectsDisallowedColumn(t *testing.T) {
	t.Parallel()

	var patch Patch
	patch.Set("is_admin", true)
	_, _, err := CompileUpdate("users", map[string]struct{}{"full_name": {}}, patch, "id", time.Now())
	if !errors.Is(err, ErrDisallowedColumn) {
		t.Fatalf("expected ErrDisallowedColumn, got %v", err)
	}
}

func TestPatchFromMapIsDeterministic(t *testing.T) {
	t.Parallel()

	patch := PatchFromMap(map[string]any{"price": int64(1), "bedrooms": 2, "title": "x"})
	if patch.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", patch.Len())
	}

	stmt, _, err := CompileUpdate("listings", map[string]struct{}{
		"price": {}, "bedrooms": {}, "title": {},
	}, patch, "id", time.Now())
	if err != nil {
		t.Fatalf("CompileUpdate: %v", err)
	}
	want := "UPDATE listings SET bedrooms = $1, price = $2, title = $3, updated_at = $4 WHERE id = $5"
	if stmt != want {
		t.Fatalf("unexpected statement %q", stmt)
	}
}
