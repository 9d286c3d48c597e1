// Package sqlbuild assembles parameterized SQL fragments from sparse,
// optional inputs. A Builder owns the single placeholder counter shared by
// every fragment it emits, so placeholder numbering always matches the
// order values are appended to the argument slice.
package sqlbuild

import (
	"fmt"
	"strings"
)

// Builder accumulates WHERE predicates and SET assignments against one
// monotonically increasing $n placeholder sequence.
type Builder struct {
	predicates  []string
	assignments []string
	args        []any
}

// AddPredicate appends "column operator $n" and binds value to $n.
func (b *Builder) AddPredicate(column, operator string, value any) {
	b.args = append(b.args, value)
	b.predicates = append(b.predicates, fmt.Sprintf("%s %s $%d", column, operator, len(b.args)))
}

// AddIn appends "column IN ($n, $n+1, ...)" binding one placeholder per value.
// Zero values appends a predicate that matches no rows.
func (b *Builder) AddIn(column string, values ...any) {
	if len(values) == 0 {
		b.predicates = append(b.predicates, "FALSE")
		return
	}
	placeholders := make([]string, 0, len(values))
	for _, value := range values {
		b.args = append(b.args, value)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(b.args)))
	}
	b.predicates = append(b.predicates, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

// AddExpr appends a predicate written with ? markers, rewriting each marker
// to the next $n placeholder. The marker count must match len(values).
func (b *Builder) AddExpr(expr string, values ...any) {
	var out strings.Builder
	out.Grow(len(expr) + 2*len(values))
	for _, r := range expr {
		if r == '?' {
			b.args = append(b.args, values[0])
			values = values[1:]
			fmt.Fprintf(&out, "$%d", len(b.args))
			continue
		}
		out.WriteRune(r)
	}
	b.predicates = append(b.predicates, out.String())
}

// AddAssignment appends "column = $n" and binds value to $n.
func (b *Builder) AddAssignment(column string, value any) {
	b.args = append(b.args, value)
	b.assignments = append(b.assignments, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// Where renders the accumulated predicates as an AND-joined WHERE clause,
// including the leading keyword. No predicates yields an empty string
// (unconditional match-all).
func (b *Builder) Where() string {
	if len(b.predicates) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.predicates, " AND ")
}

// Assignments renders the accumulated SET list without the keyword.
func (b *Builder) Assignments() string {
	return strings.Join(b.assignments, ", ")
}

// Args returns the bound parameters in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// PredicateCount reports how many predicates have been added.
func (b *Builder) PredicateCount() int {
	return len(b.predicates)
}

// AssignmentCount reports how many assignments have been added.
func (b *Builder) AssignmentCount() int {
	return len(b.assignments)
}
