package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Window returns the half-open [start, end) index range of the current page
// within a slice of total elements. Pages past the end collapse to an empty
// range at total; a non-positive page size spans everything after the offset.
func (p PaginationParams) Window(total int) (start, end int) {
	start = p.Offset()
	if start > total {
		return total, total
	}
	end = start + p.PageSize
	if p.PageSize <= 0 || end > total {
		end = total
	}
	return start, end
}
