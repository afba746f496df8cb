package model

import (
	"time"
)

// Pagination carries the page/page_size query parameters for admin
// list endpoints. A zero PageSize means no paging.
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Limit returns the SQL LIMIT for the page, or 0 for unpaged.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return 0
	}
	return p.PageSize
}

// Offset returns the SQL OFFSET for the page. Pages are 1-based.
func (p Pagination) Offset() int {
	if p.PageSize <= 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// DateFormat is the wire format for calendar dates. All times are naive
// local time in the single business timezone.
const DateFormat = "2006-01-02"

// DateOnly strips the clock from t, keeping its location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Weekday maps a date to the scheduling weekday, 0 = Monday .. 6 = Sunday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
