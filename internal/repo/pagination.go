package repo

import (
	"math"
	"strconv"
)

// Pagination is the response envelope accompanying a paginated collection.
// Nil fields serialize as JSON null, matching "not computed".
type Pagination struct {
	TotalCount  *int64 `json:"total_count"`
	TotalPages  *int   `json:"total_pages"`
	CurrentPage *int   `json:"current_page"`
	PageSize    *int   `json:"page_size"`
}

// PageOffset converts a 1-indexed page and page size into a store offset.
// Nil in either input means the caller wants unbounded results and yields nil.
func PageOffset(page, pageSize *int) *int {
	if page == nil || pageSize == nil {
		return nil
	}
	offset := (*page - 1) * *pageSize
	return &offset
}

// PaginationResponse folds limit, offset and a raw total count into the
// envelope. totalCount may arrive as a numeric string from a count
// aggregate. Page math only runs when both operands are present, which
// also guards the division against an absent or zero limit.
func PaginationResponse(limit, offset *int, totalCount any) Pagination {
	p := Pagination{
		TotalCount: coerceCount(totalCount),
		PageSize:   limit,
	}
	if p.TotalCount != nil && limit != nil && *limit > 0 {
		pages := int(math.Ceil(float64(*p.TotalCount) / float64(*limit)))
		p.TotalPages = &pages
	}
	if offset != nil && limit != nil && *limit > 0 {
		current := *offset / *limit + 1
		p.CurrentPage = &current
	}
	return p
}

func coerceCount(v any) *int64 {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return &n
	case int:
		c := int64(n)
		return &c
	case string:
		c, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil
		}
		return &c
	default:
		return nil
	}
}
