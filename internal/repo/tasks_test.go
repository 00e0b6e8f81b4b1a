package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/alert"
	"taskboard/internal/domain"
	"taskboard/internal/logging"
)

func TestParseTaskSort(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		orders, err := ParseTaskSort("due_date_asc,created_at_desc")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		want := []Order{{Column: "due_date"}, {Column: "created_at", Desc: true}}
		if len(orders) != len(want) {
			t.Fatalf("got %d orders, want %d", len(orders), len(want))
		}
		for i := range want {
			if orders[i] != want[i] {
				t.Fatalf("order %d = %+v, want %+v", i, orders[i], want[i])
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		orders, err := ParseTaskSort("  ")
		if err != nil || orders != nil {
			t.Fatalf("got %v, %v; want nil, nil", orders, err)
		}
	})

	for _, bad := range []string{"nope_asc", "name_sideways", "name", "deleted_at_asc"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			if _, err := ParseTaskSort(bad); !errors.Is(err, ErrInvalidSortColumn) {
				t.Fatalf("err = %v, want ErrInvalidSortColumn", err)
			}
		})
	}
}

func TestListTasksSortAndCount(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	// The fixed clock gives every row the same created_at, so sort by id.
	for _, name := range []string{"one", "two", "three"} {
		mustCreateTask(t, r, domain.Task{Name: name})
	}

	page, err := r.ListTasks(ctx, ListTasksParams{OrderBy: []Order{{Column: "id", Desc: true}}, WithCount: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Collections) != 3 {
		t.Fatalf("got %d rows, want 3", len(page.Collections))
	}
	if page.Collections[0].Name != "three" {
		t.Fatalf("first row = %s, want three", page.Collections[0].Name)
	}
	if page.Pagination.TotalCount == nil || *page.Pagination.TotalCount != 3 {
		t.Fatalf("total_count = %v, want 3", page.Pagination.TotalCount)
	}
}

func TestListTasksDefaultOrderNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	logger := logging.Discard()
	now := testNow
	r := NewTasksRepo(conn, logger, alert.LogSink{Logger: logger}, func() time.Time { return now })
	ctx := context.Background()
	for _, name := range []string{"oldest", "middle", "newest"} {
		mustCreateTask(t, r, domain.Task{Name: name})
		now = now.Add(time.Minute)
	}

	// No OrderBy: listings fall back to created_at descending.
	page, err := r.ListTasks(ctx, ListTasksParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Collections) != 3 {
		t.Fatalf("got %d rows, want 3", len(page.Collections))
	}
	if page.Collections[0].Name != "newest" || page.Collections[2].Name != "oldest" {
		t.Fatalf("order = [%s %s %s]", page.Collections[0].Name, page.Collections[1].Name, page.Collections[2].Name)
	}
}

func TestListTasksNameFilterAndPaging(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	for _, name := range []string{"buy milk", "buy bread", "walk dog"} {
		mustCreateTask(t, r, domain.Task{Name: name})
	}

	limit, offset := 1, 1
	page, err := r.ListTasks(ctx, ListTasksParams{
		Name:      "buy",
		Limit:     &limit,
		Offset:    &offset,
		OrderBy:   []Order{{Column: "id"}},
		WithCount: true,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Collections) != 1 || page.Collections[0].Name != "buy bread" {
		t.Fatalf("got %+v", page.Collections)
	}
	// The count ignores limit/offset but honors the filter.
	if page.Pagination.TotalCount == nil || *page.Pagination.TotalCount != 2 {
		t.Fatalf("total_count = %v, want 2", page.Pagination.TotalCount)
	}
	if page.Pagination.TotalPages == nil || *page.Pagination.TotalPages != 2 {
		t.Fatalf("total_pages = %v, want 2", page.Pagination.TotalPages)
	}
	if page.Pagination.CurrentPage == nil || *page.Pagination.CurrentPage != 2 {
		t.Fatalf("current_page = %v, want 2", page.Pagination.CurrentPage)
	}
}

func TestGetTaskByID(t *testing.T) {
	r := newTestTasksRepo(t)
	ctx := context.Background()
	created := mustCreateTask(t, r, domain.Task{Name: "findable"})

	got, ok, err := r.GetTaskByID(ctx, created.ID, true)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "findable" {
		t.Fatalf("name = %q", got.Name)
	}

	_, ok, err = r.GetTaskByID(ctx, created.ID+1, true)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected absence for unknown id")
	}
}
