package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskboard/internal/alert"
	"taskboard/internal/domain"
)

// taskSortKeys whitelists the sort columns accepted from callers.
var taskSortKeys = map[string]string{
	"id":         "id",
	"name":       "name",
	"due_date":   "due_date",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ParseTaskSort parses "col_dir[,col_dir...]" into validated sort pairs.
// Unknown columns or directions are rejected, never interpolated.
func ParseTaskSort(raw string) ([]Order, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var orders []Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, "_")
		if idx <= 0 || idx == len(part)-1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSortColumn, part)
		}
		key, dir := part[:idx], part[idx+1:]
		column, ok := taskSortKeys[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSortColumn, key)
		}
		switch dir {
		case "asc":
			orders = append(orders, Order{Column: column})
		case "desc":
			orders = append(orders, Order{Column: column, Desc: true})
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidSortColumn, part)
		}
	}
	return orders, nil
}

// TasksRepo specializes the generic repository for the tasks table with
// derived status, name filtering and dynamic sorting.
type TasksRepo struct {
	*Repository[domain.Task]
}

func NewTasksRepo(db *sql.DB, logger *slog.Logger, alerts alert.Sink, now func() time.Time) *TasksRepo {
	r := &Repository[domain.Task]{
		DB: db,
		Table: Table[domain.Task]{
			Name:          "tasks",
			PK:            "id",
			Columns:       []string{"id", "name", "description", "due_date", "created_at", "updated_at", "deleted_at"},
			InsertColumns: []string{"name", "description", "due_date"},
			Scan:          scanTask,
			Values: func(t domain.Task) []any {
				return []any{t.Name, t.Description, formatNullTime(t.DueDate)}
			},
		},
		Timestamps:       DefaultTimestamps(),
		SoftDeleteColumn: "deleted_at",
		Logger:           logger,
		Alerts:           alerts,
		Now:              now,
	}
	// Status is recomputed on every read and every write response; it is
	// never trusted from storage.
	derive := func(t domain.Task) domain.Task {
		t.Status = domain.StatusFor(t.DueDate, r.now())
		return t
	}
	r.Hooks = Hooks[domain.Task]{
		AfterCreate: derive,
		AfterUpdate: derive,
		AfterDelete: derive,
		AfterFind:   derive,
	}
	return &TasksRepo{Repository: r}
}

func scanTask(s RowScanner) (domain.Task, error) {
	var t domain.Task
	var created, updated string
	var due, deleted sql.NullString
	if err := s.Scan(&t.ID, &t.Name, &t.Description, &due, &created, &updated, &deleted); err != nil {
		return t, err
	}
	var err error
	if t.CreatedAt, err = scanTime(created); err != nil {
		return t, err
	}
	if t.UpdatedAt, err = scanTime(updated); err != nil {
		return t, err
	}
	if t.DueDate, err = scanNullTime(due); err != nil {
		return t, err
	}
	if t.DeletedAt, err = scanNullTime(deleted); err != nil {
		return t, err
	}
	return t, nil
}

// ListTasksParams shape a filtered, sorted, paginated listing.
type ListTasksParams struct {
	Name      string
	Limit     *int
	Offset    *int
	OrderBy   []Order
	WithCount bool
	Strict    bool
}

// TaskPage is the listing response: the page of rows plus the pagination
// envelope.
type TaskPage struct {
	Collections []domain.Task `json:"collections"`
	Pagination  Pagination    `json:"pagination"`
}

// ListTasks returns tasks filtered by name, ordered by the given pairs
// (created_at descending by default) and bounded by limit/offset. When
// WithCount is set a second aggregate query provides the total ignoring
// limit/offset.
func (r *TasksRepo) ListTasks(ctx context.Context, p ListTasksParams) (*TaskPage, error) {
	var where Cond
	if p.Name != "" {
		where = Like("name", "%"+p.Name+"%")
	}
	orderBy := p.OrderBy
	if len(orderBy) == 0 {
		orderBy = []Order{{Column: "created_at", Desc: true}}
	}
	tasks, err := r.FindMany(ctx, Query{
		Where:   where,
		OrderBy: orderBy,
		Limit:   p.Limit,
		Offset:  p.Offset,
		Strict:  p.Strict,
	})
	if err != nil {
		return nil, err
	}
	var totalCount any
	if p.WithCount {
		n, err := r.Count(ctx, where, nil)
		if err != nil {
			return nil, err
		}
		totalCount = n
	}
	return &TaskPage{
		Collections: tasks,
		Pagination:  PaginationResponse(p.Limit, p.Offset, totalCount),
	}, nil
}

// GetTaskByID returns the live task with the given id. Absence is signaled
// structurally; raising a domain error is the calling service's job.
func (r *TasksRepo) GetTaskByID(ctx context.Context, id int64, strict bool) (domain.Task, bool, error) {
	return r.FindFirst(ctx, Query{Where: Eq("id", id), Strict: strict})
}
