package sqlbuild

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNothingToUpdate signals a patch that carried no real field assignments.
// Compiling it anyway would emit a timestamp-only SET, so callers must treat
// this as "no statement to run" rather than an execution failure.
var ErrNothingToUpdate = errors.New("sqlbuild: patch contains no updatable fields")

// ErrDisallowedColumn signals a patch column outside the table's allow-list.
var ErrDisallowedColumn = errors.New("sqlbuild: column not allowed")

// Patch is a sparse set of column assignments in a deterministic order.
// Absent fields are simply not present; an explicit nil value is a real
// assignment to NULL.
type Patch struct {
	columns []string
	values  []any
}

// Set records an assignment, keeping first-set order.
func (p *Patch) Set(column string, value any) {
	p.columns = append(p.columns, column)
	p.values = append(p.values, value)
}

// PatchFromMap builds a Patch from a decoded JSON object. Keys are sorted so
// the compiled statement is deterministic regardless of map iteration order.
func PatchFromMap(fields map[string]any) Patch {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var p Patch
	for _, k := range keys {
		p.Set(k, fields[k])
	}
	return p
}

// Len reports how many assignments the patch carries.
func (p Patch) Len() int {
	return len(p.columns)
}

// CompileUpdate turns a patch into a full UPDATE statement plus argument
// slice. Every column must appear in the allow-list; a miss is a programmer
// or caller error and aborts before anything touches the store. The
// statement always assigns updated_at, and the target id is the final bound
// parameter.
func CompileUpdate(table string, allowed map[string]struct{}, patch Patch, id any, now time.Time) (string, []any, error) {
	if patch.Len() == 0 {
		return "", nil, ErrNothingToUpdate
	}

	var b Builder
	for i, column := range patch.columns {
		if _, ok := allowed[column]; !ok {
			return "", nil, fmt.Errorf("%w: %q for table %q", ErrDisallowedColumn, column, table)
		}
		b.AddAssignment(column, patch.values[i])
	}
	b.AddAssignment("updated_at", now)
	b.AddPredicate("id", "=", id)

	stmt := fmt.Sprintf("UPDATE %s SET %s%s", table, b.Assignments(), b.Where())
	return stmt, b.Args(), nil
}
