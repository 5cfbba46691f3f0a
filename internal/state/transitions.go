package state

import "github.com/oakwood-commons/gridkit/pkg/schema"

// ToggleColumn flips one column's visibility. Removing a key leaves every
// other key untouched; re-adding places the key back at its schema
// declaration position so column order stays stable. Unknown keys are
// dropped by the store's intersection and the transition becomes a no-op.
func ToggleColumn(doc *schema.Document, key string) Transition {
	return func(st State) Patch {
		if _, ok := doc.ColumnByKey(key); !ok {
			return Patch{}
		}
		visible := make(map[string]bool, len(st.DisplayColumns)+1)
		for _, k := range st.DisplayColumns {
			visible[k] = true
		}
		visible[key] = !visible[key]

		next := make([]string, 0, len(visible))
		for _, col := range doc.ValidColumns() {
			if visible[col.Key] {
				next = append(next, col.Key)
			}
		}
		return Patch{DisplayColumns: &next}
	}
}

// SetPage moves to a 1-based page.
func SetPage(page int) Transition {
	return func(State) Patch {
		return Patch{Page: &page}
	}
}

// SetPageSize changes the page size and resets to the first page.
func SetPageSize(size int) Transition {
	first := 1
	return func(State) Patch {
		return Patch{PageSize: &size, Page: &first}
	}
}

// ToggleSelect flips one row's selection. In single mode the new key
// replaces the previous selection; in multiple mode it merges.
func ToggleSelect(mode, rowKey string) Transition {
	return func(st State) Patch {
		var next []string
		if st.IsSelected(rowKey) {
			for _, k := range st.Selected {
				if k != rowKey {
					next = append(next, k)
				}
			}
		} else if mode == schema.SelectionSingle {
			next = []string{rowKey}
		} else {
			next = append(append(next, st.Selected...), rowKey)
		}
		if next == nil {
			next = []string{}
		}
		return Patch{Selected: &next}
	}
}

// SetSelection replaces the selection outright. In single mode only the
// first key is kept.
func SetSelection(mode string, rowKeys []string) Transition {
	return func(State) Patch {
		next := append([]string(nil), rowKeys...)
		if mode == schema.SelectionSingle && len(next) > 1 {
			next = next[:1]
		}
		return Patch{Selected: &next}
	}
}

// SetFilter replaces the filter value for one column key. A nil value
// clears the filter. Changing a filter resets to the first page. Unknown
// column keys make the whole transition a no-op, page reset included.
func SetFilter(doc *schema.Document, key string, value interface{}) Transition {
	first := 1
	return func(State) Patch {
		if _, ok := doc.ColumnByKey(key); !ok {
			return Patch{}
		}
		return Patch{Filter: &FilterPatch{Key: key, Value: value}, Page: &first}
	}
}

// SetSearch replaces the active search parameters.
func SetSearch(key interface{}, text string) Transition {
	return func(State) Patch {
		return Patch{Search: &SearchPatch{Key: key, Text: text}}
	}
}
