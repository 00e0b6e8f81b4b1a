package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskboard/internal/alert"
)

// ErrDataAccess is the opaque error every failed write (and strict read)
// surfaces as. Underlying store detail is logged and alerted, never
// returned to callers.
var ErrDataAccess = errors.New("data access failure")

// ErrInvalidSortColumn rejects caller-supplied sort keys that are not
// actual columns of the table. Unknown keys are never interpolated.
var ErrInvalidSortColumn = errors.New("invalid sort column")

// RowScanner is the subset of sql.Row/sql.Rows a Table scan func needs.
type RowScanner interface {
	Scan(dest ...any) error
}

// Table binds a row type to its relational shape.
type Table[T any] struct {
	Name string
	PK   string
	// Columns lists every selectable column, in the order Scan expects.
	Columns []string
	// InsertColumns lists the caller-supplied columns, in the order
	// Values yields them. Timestamp columns are appended by the
	// repository when enabled.
	InsertColumns []string
	Scan          func(RowScanner) (T, error)
	Values        func(T) []any
}

func (t Table[T]) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Timestamps names the lifecycle columns the repository maintains.
type Timestamps struct {
	Created string
	Updated string
}

// DefaultTimestamps matches the created_at/updated_at convention.
func DefaultTimestamps() *Timestamps {
	return &Timestamps{Created: "created_at", Updated: "updated_at"}
}

// Hooks are the per-table extension points. Every field is optional and
// defaults to pass-through. They are plain funcs on a struct so domain
// repositories compose behavior without inheritance.
type Hooks[T any] struct {
	BeforeCreate func(T) T
	AfterCreate  func(T) T
	BeforeUpdate func(*Patch) *Patch
	AfterUpdate  func(T) T
	AfterDelete  func(T) T
	AfterFind    func(T) T
}

// Repository is a uniform CRUD layer over one table. The store handle is
// created once at process start and shared; per-call transactions come in
// through Query.Tx.
type Repository[T any] struct {
	DB               *sql.DB
	Table            Table[T]
	Timestamps       *Timestamps
	SoftDeleteColumn string
	Hooks            Hooks[T]
	Logger           *slog.Logger
	Alerts           alert.Sink
	Now              func() time.Time
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *Repository[T]) exec(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.DB
}

func (r *Repository[T]) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Repository[T]) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// fail logs the underlying error, reports it to the alert sink tagged with
// the request trace id, and returns the opaque data-access error.
func (r *Repository[T]) fail(ctx context.Context, op string, err error) error {
	r.logger().ErrorContext(ctx, "repository operation failed",
		slog.String("table", r.Table.Name),
		slog.String("op", op),
		slog.Any("error", err),
	)
	if r.Alerts != nil {
		r.Alerts.Capture(ctx, err, alert.Tags(ctx))
	}
	return fmt.Errorf("%s %s: %w", op, r.Table.Name, ErrDataAccess)
}

func (r *Repository[T]) selectList() string {
	return strings.Join(r.Table.Columns, ", ")
}

// beforeFind injects the soft-delete filter, AND-composed with the caller
// filter so it is never dropped.
func (r *Repository[T]) beforeFind(where Cond) Cond {
	if r.SoftDeleteColumn == "" {
		return where
	}
	return And(where, IsNull(r.SoftDeleteColumn))
}

func (r *Repository[T]) orderClause(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		if !r.Table.hasColumn(o.Column) {
			return "", fmt.Errorf("%w: %s", ErrInvalidSortColumn, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, o.Column+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (r *Repository[T]) afterFind(row T) T {
	if r.Hooks.AfterFind != nil {
		return r.Hooks.AfterFind(row)
	}
	return row
}

// Create inserts the given rows in one statement and returns the inserted
// rows as stored, passed through the AfterCreate hook. A nil slice comes
// back when nothing was inserted. Create always runs in strict mode.
func (r *Repository[T]) Create(ctx context.Context, rows []T, tx *sql.Tx) ([]T, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if r.Hooks.BeforeCreate != nil {
		// Transform a copy; the caller's slice stays untouched.
		transformed := make([]T, len(rows))
		for i, row := range rows {
			transformed[i] = r.Hooks.BeforeCreate(row)
		}
		rows = transformed
	}
	cols := append([]string{}, r.Table.InsertColumns...)
	stamp := formatTime(r.now())
	if r.Timestamps != nil {
		cols = append(cols, r.Timestamps.Created, r.Timestamps.Updated)
	}
	group := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	groups := make([]string, 0, len(rows))
	var args []any
	for _, row := range rows {
		groups = append(groups, group)
		args = append(args, r.Table.Values(row)...)
		if r.Timestamps != nil {
			args = append(args, stamp, stamp)
		}
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s RETURNING %s`,
		r.Table.Name, strings.Join(cols, ", "), strings.Join(groups, ", "), r.selectList())
	inserted, err := r.queryRows(ctx, tx, query, args)
	if err != nil {
		return nil, r.fail(ctx, "create", err)
	}
	if len(inserted) == 0 {
		return nil, nil
	}
	if r.Hooks.AfterCreate != nil {
		for i := range inserted {
			inserted[i] = r.Hooks.AfterCreate(inserted[i])
		}
	}
	return inserted, nil
}

// CreateOne is Create for a single row.
func (r *Repository[T]) CreateOne(ctx context.Context, row T, tx *sql.Tx) (T, bool, error) {
	rows, err := r.Create(ctx, []T{row}, tx)
	if err != nil || len(rows) == 0 {
		var zero T
		return zero, false, err
	}
	return rows[0], true, nil
}

// Update applies the patch to every row matching q.Where and returns the
// updated rows (empty when none matched). When timestamps are enabled the
// update column is force-set to "now", overriding any caller value.
// Update always runs in strict mode.
func (r *Repository[T]) Update(ctx context.Context, patch *Patch, q Query) ([]T, error) {
	if r.Hooks.BeforeUpdate != nil {
		patch = r.Hooks.BeforeUpdate(patch)
	}
	if r.Timestamps != nil && r.Timestamps.Updated != "" {
		patch.Set(r.Timestamps.Updated, formatTime(r.now()))
	}
	// The stamp above means an empty caller patch still refreshes the
	// update timestamp; only a table without timestamps has nothing to do.
	if patch.Empty() {
		return []T{}, nil
	}
	set, args := patch.assignments()
	query := fmt.Sprintf(`UPDATE %s SET %s`, r.Table.Name, set)
	if !q.Where.Empty() {
		expr, whereArgs := q.Where.SQL()
		query += " WHERE " + expr
		args = append(args, whereArgs...)
	}
	query += " RETURNING " + r.selectList()
	updated, err := r.queryRows(ctx, q.Tx, query, args)
	if err != nil {
		return nil, r.fail(ctx, "update", err)
	}
	if r.Hooks.AfterUpdate != nil {
		for i := range updated {
			updated[i] = r.Hooks.AfterUpdate(updated[i])
		}
	}
	if updated == nil {
		updated = []T{}
	}
	return updated, nil
}

// Delete physically removes matching rows and returns them through the
// AfterDelete hook; nil when none matched. Callers wanting soft-delete
// semantics use SoftDelete instead. Delete always runs in strict mode.
func (r *Repository[T]) Delete(ctx context.Context, q Query) ([]T, error) {
	query := fmt.Sprintf(`DELETE FROM %s`, r.Table.Name)
	var args []any
	if !q.Where.Empty() {
		expr, whereArgs := q.Where.SQL()
		query += " WHERE " + expr
		args = whereArgs
	}
	query += " RETURNING " + r.selectList()
	deleted, err := r.queryRows(ctx, q.Tx, query, args)
	if err != nil {
		return nil, r.fail(ctx, "delete", err)
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	if r.Hooks.AfterDelete != nil {
		for i := range deleted {
			deleted[i] = r.Hooks.AfterDelete(deleted[i])
		}
	}
	return deleted, nil
}

// SoftDelete stamps the soft-delete column on matching live rows instead
// of removing them. It falls back to Delete when the table has no
// soft-delete column.
func (r *Repository[T]) SoftDelete(ctx context.Context, q Query) ([]T, error) {
	if r.SoftDeleteColumn == "" {
		return r.Delete(ctx, q)
	}
	patch := NewPatch().Set(r.SoftDeleteColumn, formatTime(r.now()))
	if r.Timestamps != nil && r.Timestamps.Updated != "" {
		patch.Set(r.Timestamps.Updated, formatTime(r.now()))
	}
	set, args := patch.assignments()
	where := And(q.Where, IsNull(r.SoftDeleteColumn))
	expr, whereArgs := where.SQL()
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s RETURNING %s`,
		r.Table.Name, set, expr, r.selectList())
	args = append(args, whereArgs...)
	deleted, err := r.queryRows(ctx, q.Tx, query, args)
	if err != nil {
		return nil, r.fail(ctx, "soft delete", err)
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	if r.Hooks.AfterDelete != nil {
		for i := range deleted {
			deleted[i] = r.Hooks.AfterDelete(deleted[i])
		}
	}
	return deleted, nil
}

// FindFirst returns the first matching live row. Absence is signaled by
// the ok flag, not an error. Failures default to (zero, false, nil) unless
// q.Strict is set.
func (r *Repository[T]) FindFirst(ctx context.Context, q Query) (T, bool, error) {
	var zero T
	one := 1
	q.Limit = &one
	rows, err := r.findRows(ctx, q)
	if err != nil {
		if errors.Is(err, ErrInvalidSortColumn) {
			return zero, false, err
		}
		if q.Strict {
			return zero, false, r.fail(ctx, "find first", err)
		}
		_ = r.fail(ctx, "find first", err)
		return zero, false, nil
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return r.afterFind(rows[0]), true, nil
}

// FindMany returns all matching live rows bounded by limit/offset.
// Failures default to an empty slice unless q.Strict is set.
func (r *Repository[T]) FindMany(ctx context.Context, q Query) ([]T, error) {
	rows, err := r.findRows(ctx, q)
	if err != nil {
		if errors.Is(err, ErrInvalidSortColumn) {
			return nil, err
		}
		if q.Strict {
			return nil, r.fail(ctx, "find many", err)
		}
		_ = r.fail(ctx, "find many", err)
		return []T{}, nil
	}
	for i := range rows {
		rows[i] = r.afterFind(rows[i])
	}
	return rows, nil
}

// Count returns the number of matching live rows, honoring the soft-delete
// filter like any other read.
func (r *Repository[T]) Count(ctx context.Context, where Cond, tx *sql.Tx) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.Table.Name)
	cond := r.beforeFind(where)
	var args []any
	if !cond.Empty() {
		expr, condArgs := cond.SQL()
		query += " WHERE " + expr
		args = condArgs
	}
	rows, err := r.exec(tx).QueryContext(ctx, query, args...)
	if err != nil {
		return 0, r.fail(ctx, "count", err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, r.fail(ctx, "count", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, r.fail(ctx, "count", err)
	}
	return n, nil
}

func (r *Repository[T]) findRows(ctx context.Context, q Query) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, r.selectList(), r.Table.Name)
	cond := r.beforeFind(q.Where)
	var args []any
	if !cond.Empty() {
		expr, condArgs := cond.SQL()
		query += " WHERE " + expr
		args = condArgs
	}
	order, err := r.orderClause(q.OrderBy)
	if err != nil {
		return nil, err
	}
	query += order
	if q.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *q.Limit)
	}
	if q.Offset != nil {
		if q.Limit == nil {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, *q.Offset)
	}
	return r.queryRows(ctx, q.Tx, query, args)
}

func (r *Repository[T]) queryRows(ctx context.Context, tx *sql.Tx, query string, args []any) ([]T, error) {
	rows, err := r.exec(tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []T
	for rows.Next() {
		row, err := r.Table.Scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
