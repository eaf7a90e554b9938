package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// Page captures the parsed pagination query parameters.
type Page struct {
	Page  int
	Limit int
}

// ParsePage interprets the raw `page` and `limit` query values, falling back
// to the defaults when they are missing or not positive integers.
func ParsePage(pageStr, limitStr string) Page {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		p.Limit = n
	}
	return p
}

// Offset is the number of rows to skip for the current page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination block embedded in every list response.
type PageMeta struct {
	Page          int  `json:"page"`
	Limit         int  `json:"limit"`
	DocumentCount int  `json:"documentCount"`
	IsNext        bool `json:"isNext"`
	IsPrevious    bool `json:"isPrevious"`
}

// NewPageMeta derives the navigation flags: isNext holds iff rows exist
// beyond the current window, isPrevious iff the caller is past page one.
func NewPageMeta(p Page, documentCount int) PageMeta {
	return PageMeta{
		Page:          p.Page,
		Limit:         p.Limit,
		DocumentCount: documentCount,
		IsNext:        documentCount > p.Page*p.Limit,
		IsPrevious:    p.Page > 1,
	}
}
