package repo

import "testing"

func intPtr(v int) *int { return &v }

func TestPageOffset(t *testing.T) {
	cases := []struct {
		name     string
		page     *int
		pageSize *int
		want     *int
	}{
		{"both nil", nil, nil, nil},
		{"page nil", nil, intPtr(10), nil},
		{"size nil", intPtr(2), nil, nil},
		{"first page", intPtr(1), intPtr(10), intPtr(0)},
		{"third page", intPtr(3), intPtr(25), intPtr(50)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PageOffset(tc.page, tc.pageSize)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("got %d, want %d", *got, *tc.want)
			}
		})
	}
}

func TestPaginationResponse(t *testing.T) {
	t.Run("full page math", func(t *testing.T) {
		p := PaginationResponse(intPtr(10), intPtr(20), int64(101))
		if p.TotalCount == nil || *p.TotalCount != 101 {
			t.Fatalf("total_count = %v", p.TotalCount)
		}
		if p.TotalPages == nil || *p.TotalPages != 11 {
			t.Fatalf("total_pages = %v", p.TotalPages)
		}
		if p.CurrentPage == nil || *p.CurrentPage != 3 {
			t.Fatalf("current_page = %v", p.CurrentPage)
		}
		if p.PageSize == nil || *p.PageSize != 10 {
			t.Fatalf("page_size = %v", p.PageSize)
		}
	})

	t.Run("string count coerced", func(t *testing.T) {
		p := PaginationResponse(intPtr(10), intPtr(0), "42")
		if p.TotalCount == nil || *p.TotalCount != 42 {
			t.Fatalf("total_count = %v", p.TotalCount)
		}
		if p.TotalPages == nil || *p.TotalPages != 5 {
			t.Fatalf("total_pages = %v", p.TotalPages)
		}
	})

	t.Run("nil limit disables page math", func(t *testing.T) {
		p := PaginationResponse(nil, nil, int64(7))
		if p.TotalCount == nil || *p.TotalCount != 7 {
			t.Fatalf("total_count = %v", p.TotalCount)
		}
		if p.TotalPages != nil || p.CurrentPage != nil || p.PageSize != nil {
			t.Fatalf("expected nil page math, got %+v", p)
		}
	})

	t.Run("non-numeric count stays nil", func(t *testing.T) {
		p := PaginationResponse(intPtr(10), intPtr(0), "many")
		if p.TotalCount != nil {
			t.Fatalf("total_count = %v, want nil", p.TotalCount)
		}
		if p.TotalPages != nil {
			t.Fatalf("total_pages = %v, want nil", p.TotalPages)
		}
	})

	t.Run("zero limit guarded", func(t *testing.T) {
		p := PaginationResponse(intPtr(0), intPtr(0), int64(5))
		if p.TotalPages != nil || p.CurrentPage != nil {
			t.Fatalf("expected guarded division, got %+v", p)
		}
	})
}
