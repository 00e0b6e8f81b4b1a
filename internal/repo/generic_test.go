package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"taskboard/internal/alert"
	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/logging"
	"taskboard/internal/migrate"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestTasksRepo(t *testing.T) *TasksRepo {
	t.Helper()
	conn := newTestDB(t)
	logger := logging.Discard()
	return NewTasksRepo(conn, logger, alert.LogSink{Logger: logger}, func() time.Time { return testNow })
}

func mustCreateTask(t *testing.T, r *TasksRepo, task domain.Task) domain.Task {
	t.Helper()
	created, ok, err := r.CreateOne(context.Background(), task, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !ok {
		t.Fatal("create task returned no row")
	}
	return created
}

func TestCreateStampsTimestamps(t *testing.T) {
	r := newTestTasksRepo(t)
	created := mustCreateTask(t, r, domain.Task{Name: "write report"})

	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if !created.CreatedAt.Equal(testNow) {
		t.Fatalf("created_at = %v, want %v", created.CreatedAt, testNow)
	}
	if !created.UpdatedAt.Equal(testNow) {
		t.Fatalf("updated_at = %v, want %v", created.UpdatedAt, testNow)
	}
	if created.Status != domain.StatusNotUrgent {
		t.Fatalf("status = %s, want not_urgent", created.Status)
	}
}

func TestUpdateForcesUpdatedAt(t *testing.T) {
	conn := newTestDB(t)
	logger := logging.Discard()
	current := testNow
	r := NewTasksRepo(conn, logger, alert.LogSink{Logger: logger}, func() time.Time { return current })

	created := mustCreateTask(t, r, domain.Task{Name: "first"})

	current = testNow.Add(time.Hour)
	// The caller-supplied updated_at must lose to the repository's stamp.
	patch := NewPatch().
		Set("name", "second").
		Set("updated_at", "1999-01-01T00:00:00Z")
	updated, err := r.Update(context.Background(), patch, Query{Where: Eq("id", created.ID)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("updated %d rows, want 1", len(updated))
	}
	if updated[0].Name != "second" {
		t.Fatalf("name = %q, want second", updated[0].Name)
	}
	if !updated[0].UpdatedAt.Equal(current) {
		t.Fatalf("updated_at = %v, want %v", updated[0].UpdatedAt, current)
	}
	if !updated[0].CreatedAt.Equal(testNow) {
		t.Fatalf("created_at changed to %v", updated[0].CreatedAt)
	}
}

func TestUpdateEmptyPatchRefreshesUpdatedAt(t *testing.T) {
	conn := newTestDB(t)
	logger := logging.Discard()
	current := testNow
	r := NewTasksRepo(conn, logger, alert.LogSink{Logger: logger}, func() time.Time { return current })
	created := mustCreateTask(t, r, domain.Task{Name: "steady"})

	// No caller fields: the row still matches and updated_at moves.
	current = testNow.Add(time.Hour)
	updated, err := r.Update(context.Background(), NewPatch(), Query{Where: Eq("id", created.ID)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("updated %d rows, want 1", len(updated))
	}
	if updated[0].Name != "steady" {
		t.Fatalf("name = %q, want steady", updated[0].Name)
	}
	if !updated[0].UpdatedAt.Equal(current) {
		t.Fatalf("updated_at = %v, want %v", updated[0].UpdatedAt, current)
	}
}

func TestCreateLeavesCallerRowsUntouched(t *testing.T) {
	r := newTestTasksRepo(t)
	r.Hooks.BeforeCreate = func(task domain.Task) domain.Task {
		task.Name = strings.ToUpper(task.Name)
		return task
	}
	input := []domain.Task{{Name: "quiet"}}
	created, err := r.Create(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 1 || created[0].Name != "QUIET" {
		t.Fatalf("created = %+v", created)
	}
	if input[0].Name != "quiet" {
		t.Fatalf("caller row mutated: %q", input[0].Name)
	}
}

func TestUpdateNoMatchReturnsEmpty(t *testing.T) {
	r := newTestTasksRepo(t)
	updated, err := r.Update(context.Background(), NewPatch().Set("name", "x"), Query{Where: Eq("id", 999)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated) != 0 {
		t.Fatalf("updated %d rows, want 0", len(updated))
	}
}

func TestSoftDeleteHidesRowEverywhere(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	created := mustCreateTask(t, r, domain.Task{Name: "ephemeral"})

	deleted, err := r.SoftDelete(ctx, Query{Where: Eq("id", created.ID)})
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("deleted %d rows, want 1", len(deleted))
	}

	if _, ok, _ := r.FindFirst(ctx, Query{Where: Eq("id", created.ID)}); ok {
		t.Fatal("soft-deleted row visible in FindFirst")
	}
	rows, err := r.FindMany(ctx, Query{})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("soft-deleted row visible in FindMany: %d rows", len(rows))
	}
	n, err := r.Count(ctx, Cond{}, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}

	// The row itself must survive.
	var raw int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, created.ID).Scan(&raw); err != nil {
		t.Fatalf("raw count: %v", err)
	}
	if raw != 1 {
		t.Fatalf("raw row count = %d, want 1", raw)
	}
}

func TestSoftDeleteTwiceMatchesNothing(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	created := mustCreateTask(t, r, domain.Task{Name: "once"})

	if _, err := r.SoftDelete(ctx, Query{Where: Eq("id", created.ID)}); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	again, err := r.SoftDelete(ctx, Query{Where: Eq("id", created.ID)})
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second delete matched %d rows, want 0", len(again))
	}
}

func TestSoftDeleteFilterComposesWithCallerFilter(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	keep := mustCreateTask(t, r, domain.Task{Name: "groceries"})
	gone := mustCreateTask(t, r, domain.Task{Name: "groceries"})
	if _, err := r.SoftDelete(ctx, Query{Where: Eq("id", gone.ID)}); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	rows, err := r.FindMany(ctx, Query{Where: Like("name", "%grocer%")})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != keep.ID {
		t.Fatalf("expected only the live row, got %d rows", len(rows))
	}
}

func TestFindManyOrderLimitOffset(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d"} {
		mustCreateTask(t, r, domain.Task{Name: name})
	}

	limit, offset := 2, 1
	rows, err := r.FindMany(ctx, Query{
		OrderBy: []Order{{Column: "id", Desc: true}},
		Limit:   &limit,
		Offset:  &offset,
	})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "c" || rows[1].Name != "b" {
		t.Fatalf("got %s,%s want c,b", rows[0].Name, rows[1].Name)
	}
}

func TestInvalidSortColumnRejected(t *testing.T) {
	r := newTestTasksRepo(t)
	_, err := r.FindMany(context.Background(), Query{
		OrderBy: []Order{{Column: "name; DROP TABLE tasks"}},
	})
	if !errors.Is(err, ErrInvalidSortColumn) {
		t.Fatalf("err = %v, want ErrInvalidSortColumn", err)
	}
}

func TestFindManyNonStrictSwallowsFailure(t *testing.T) {
	r := newTestTasksRepo(t)
	// Closing the handle makes every query fail.
	r.DB.Close()

	rows, err := r.FindMany(context.Background(), Query{})
	if err != nil {
		t.Fatalf("non-strict read returned error: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty default, got %v", rows)
	}

	_, err = r.FindMany(context.Background(), Query{Strict: true})
	if !errors.Is(err, ErrDataAccess) {
		t.Fatalf("strict read err = %v, want ErrDataAccess", err)
	}
}

func TestCreateInTxRollsBack(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, _, err := r.CreateOne(ctx, domain.Task{Name: "phantom"}, tx); err != nil {
		t.Fatalf("create in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	n, err := r.Count(ctx, Cond{}, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d after rollback, want 0", n)
	}
}

func TestStatusDerivedOnRead(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	overdue := testNow.Add(-24 * time.Hour)
	soon := testNow.Add(2 * 24 * time.Hour)
	later := testNow.Add(30 * 24 * time.Hour)
	mustCreateTask(t, r, domain.Task{Name: "late", DueDate: &overdue})
	mustCreateTask(t, r, domain.Task{Name: "soon", DueDate: &soon})
	mustCreateTask(t, r, domain.Task{Name: "later", DueDate: &later})

	rows, err := r.FindMany(ctx, Query{OrderBy: []Order{{Column: "id"}}})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	want := []domain.TaskStatus{domain.StatusOverdue, domain.StatusDueSoon, domain.StatusNotUrgent}
	for i, w := range want {
		if rows[i].Status != w {
			t.Fatalf("row %d status = %s, want %s", i, rows[i].Status, w)
		}
	}
}
