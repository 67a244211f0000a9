package domain

import "math"

// SearchQuery is the filter and window handed to the record store.
type SearchQuery struct {
	Substring   string
	ScopeFilter string
	Page        int
	PageSize    int
}

// Offset returns the number of rows skipped before the window starts.
// It saturates at math.MaxInt instead of wrapping for pages far past the end.
func (q SearchQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// SearchPage is one window of matching records plus the unwindowed total.
type SearchPage struct {
	Items      []InteractionRecord `json:"items"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Query      string              `json:"query"`
}

// TotalPages is ceil(TotalCount / PageSize).
func (p SearchPage) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasPrev reports whether a previous page exists.
func (p SearchPage) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p SearchPage) HasNext() bool {
	return p.Page < p.TotalPages()
}
