// Package state holds the mutable runtime state of one table instance: the
// display-column key set, pagination position, selected row keys, active
// filters, and active search parameters. Every table instance (root or
// nested subtable) owns its own Store exclusively; state is never shared or
// inherited across instances.
package state

import "github.com/oakwood-commons/gridkit/pkg/schema"

// State is a snapshot of one table's runtime state. Snapshots are values;
// mutating a snapshot never affects the store it came from.
type State struct {
	// DisplayColumns is the ordered key set of currently visible columns.
	// It only ever contains keys present in the current schema.
	DisplayColumns []string

	// Page is the 1-based current page. PageSize 0 means paging disabled.
	Page     int
	PageSize int

	// Selected holds the selected row keys, in selection order.
	Selected []string

	// Filters maps column keys to their active filter value.
	Filters map[string]interface{}

	// SearchKey and SearchText are the active search parameters. The key
	// is nil until a key has been chosen.
	SearchKey  interface{}
	SearchText string
}

// clone returns a deep-enough copy: slices and the filter map are copied,
// values are shared.
func (s State) clone() State {
	out := s
	out.DisplayColumns = append([]string(nil), s.DisplayColumns...)
	out.Selected = append([]string(nil), s.Selected...)
	out.Filters = make(map[string]interface{}, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}

// IsDisplayed reports whether a column key is in the display set.
func (s State) IsDisplayed(key string) bool {
	for _, k := range s.DisplayColumns {
		if k == key {
			return true
		}
	}
	return false
}

// IsSelected reports whether a row key is selected.
func (s State) IsSelected(rowKey string) bool {
	for _, k := range s.Selected {
		if k == rowKey {
			return true
		}
	}
	return false
}

// Defaults derives the initial state from a normalized schema document: all
// non-default-hidden columns visible, page 1, no selection, and filters
// seeded from each column's default filtered value.
func Defaults(doc *schema.Document) State {
	st := State{
		DisplayColumns: doc.DefaultDisplayColumns(),
		Page:           1,
		Filters:        make(map[string]interface{}),
	}
	if doc.Pagination != nil {
		st.PageSize = doc.Pagination.PageSize
	}
	for _, col := range doc.ValidColumns() {
		if col.FilteredValue != nil {
			st.Filters[col.Key] = col.FilteredValue
		}
	}
	return st
}
