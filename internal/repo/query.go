package repo

import (
	"database/sql"
	"sort"
	"strings"
)

// Cond is a composable WHERE fragment with its bind arguments.
// The zero value matches everything.
type Cond struct {
	expr string
	args []any
}

func (c Cond) Empty() bool { return c.expr == "" }

// SQL returns the fragment and its arguments.
func (c Cond) SQL() (string, []any) { return c.expr, c.args }

func Eq(column string, v any) Cond {
	return Cond{expr: column + " = ?", args: []any{v}}
}

func Like(column, pattern string) Cond {
	return Cond{expr: column + " LIKE ?", args: []any{pattern}}
}

func IsNull(column string) Cond {
	return Cond{expr: column + " IS NULL"}
}

// And combines conditions, skipping empty ones. Caller filters are never
// dropped; the soft-delete filter composes through here.
func And(conds ...Cond) Cond {
	var exprs []string
	var args []any
	for _, c := range conds {
		if c.Empty() {
			continue
		}
		exprs = append(exprs, c.expr)
		args = append(args, c.args...)
	}
	if len(exprs) == 0 {
		return Cond{}
	}
	if len(exprs) == 1 {
		return Cond{expr: exprs[0], args: args}
	}
	return Cond{expr: "(" + strings.Join(exprs, " AND ") + ")", args: args}
}

// Order is a single validated sort pair.
type Order struct {
	Column string
	Desc   bool
}

// Query configures findFirst/findMany and the filtered write operations.
// A non-nil Tx scopes the operation to a caller-owned transaction; the
// repository never overrides it.
type Query struct {
	Where   Cond
	OrderBy []Order
	Limit   *int
	Offset  *int
	Tx      *sql.Tx
	// Strict makes read failures propagate instead of defaulting.
	Strict bool
}

// Patch is an ordered set of column assignments for Update. Setting a
// column twice keeps the last value.
type Patch struct {
	values map[string]any
}

func NewPatch() *Patch {
	return &Patch{values: map[string]any{}}
}

func (p *Patch) Set(column string, v any) *Patch {
	if p.values == nil {
		p.values = map[string]any{}
	}
	p.values[column] = v
	return p
}

func (p *Patch) Empty() bool { return p == nil || len(p.values) == 0 }

// assignments returns a deterministic SET clause and its arguments.
func (p *Patch) assignments() (string, []any) {
	cols := make([]string, 0, len(p.values))
	for c := range p.values {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	var b strings.Builder
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteString(" = ?")
		args = append(args, p.values[c])
	}
	return b.String(), args
}
