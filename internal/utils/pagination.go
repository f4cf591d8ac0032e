package utils

import "strconv" // String conversion

// Page limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ParsePage reads page and page_size query values, falling back to defaults on bad input
func ParsePage(page, pageSize string) Page {
	p := Page{Page: 1, PageSize: DefaultPageSize}
	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p.Page = v // Set page if valid
	}
	if v, err := strconv.Atoi(pageSize); err == nil && v > 0 && v <= MaxPageSize {
		p.PageSize = v // Set page size within limits
	}
	return p
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns how many pages total rows span
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.PageSize - 1) / p.PageSize
}
