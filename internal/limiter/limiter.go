// Package limiter windows a data source for pagination. It is the one place
// page arithmetic lives: the state store tracks (page, pageSize) and the
// engine asks the limiter for the matching slice.
package limiter

import "fmt"

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
}

// Validate checks the configuration. All values must be non-negative.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", c.Offset)
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0
}

// Apply returns the configured window of rows. The slice is shared, not
// copied; callers must not mutate the result.
func (c Config) Apply(rows []map[string]interface{}) []map[string]interface{} {
	if !c.IsActive() {
		return rows
	}
	return window(rows, c.Offset, c.Limit)
}

// Page returns the window for a 1-based page number. A pageSize of 0 means
// pagination is disabled and all rows are returned. Pages past the end
// return an empty window.
func Page[T any](rows []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	return window(rows, (page-1)*pageSize, pageSize)
}

func window[T any](rows []T, offset, limit int) []T {
	if offset > len(rows) {
		return rows[:0]
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}

// PageCount returns how many pages the row count occupies. Zero rows still
// occupy one (empty) page so the pager always has a current page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage returns page forced into [1, PageCount(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		return 1
	}
	if max := PageCount(total, pageSize); page > max {
		return max
	}
	return page
}
