// Package listing implements the client-side filter/pagination the
// portal applies to rosters it holds in full, and the stateful list
// view the roster screens are built on.
package listing

import "strings"

// StatusAll disables status filtering.
const StatusAll = "ALL"

type Query struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	PageSize int    `json:"pageSize"`
	Page     int    `json:"page"`
}

type Result[T any] struct {
	Page          []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	PageIndex     int `json:"page"`
}

// Paginate filters all by status, then by a case-insensitive substring
// search over the match fields, and slices out the requested page. The
// page index is clamped into range rather than ever producing an
// out-of-range slice. Pure: identical inputs yield identical results.
func Paginate[T any](all []T, q Query, status func(T) string, match func(T) []string) Result[T] {
	filtered := all
	if q.Status != "" && q.Status != StatusAll && status != nil {
		filtered = nil
		for _, item := range all {
			if status(item) == q.Status {
				filtered = append(filtered, item)
			}
		}
	}

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" && match != nil {
		var hits []T
		for _, item := range filtered {
			for _, field := range match(item) {
				if strings.Contains(strings.ToLower(field), search) {
					hits = append(hits, item)
					break
				}
			}
		}
		filtered = hits
	}

	total := len(filtered)
	if q.PageSize <= 0 {
		return Result[T]{TotalElements: total}
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize
	page := q.Page
	if page >= totalPages {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * q.PageSize
	end := start + q.PageSize
	if end > total {
		end = total
	}

	var slice []T
	if start < end {
		slice = append(slice, filtered[start:end]...)
	}

	return Result[T]{
		Page:          slice,
		TotalElements: total,
		TotalPages:    totalPages,
		PageIndex:     page,
	}
}

// PageWindow returns up to width page numbers centred on current, the
// strip rendered under the tables.
func PageWindow(current, totalPages, width int) []int {
	if totalPages <= 0 || width <= 0 {
		return nil
	}
	start := current - width/2
	if start < 0 {
		start = 0
	}
	end := start + width - 1
	if end > totalPages-1 {
		end = totalPages - 1
	}
	if end-start < width-1 {
		start = end - width + 1
		if start < 0 {
			start = 0
		}
	}

	pages := make([]int, 0, width)
	for page := start; page <= end; page++ {
		pages = append(pages, page)
	}
	return pages
}
