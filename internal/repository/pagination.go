package repository

// DefaultLimit is the page size used when a caller omits or mangles the
// limit parameter.
const DefaultLimit = 10

// Pagination is the envelope returned alongside every list result.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NormalizePageLimit clamps page and limit to sane values: both at least 1,
// limit defaulting to DefaultLimit when non-positive.
func NormalizePageLimit(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

// Skip returns the offset for the given (already normalized) page and limit.
func Skip(page, limit int) int {
	return (page - 1) * limit
}

// NewPagination builds the envelope for a list result. Pages is
// ceil(total/limit); a page past the end is legal and simply yields an
// empty item list.
func NewPagination(page, limit int, total int64) Pagination {
	page, limit = NormalizePageLimit(page, limit)
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}
