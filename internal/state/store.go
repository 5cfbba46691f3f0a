package state

import "github.com/oakwood-commons/gridkit/pkg/schema"

// ChangeKind names which part of the state a transition touched. The engine
// maps each kind to the matching external notification callback.
type ChangeKind string

const (
	ChangeDisplayColumns ChangeKind = "display-columns"
	ChangePage           ChangeKind = "page"
	ChangeSelection      ChangeKind = "selection"
	ChangeFilter         ChangeKind = "filter"
	ChangeSearch         ChangeKind = "search"
)

// Change describes one observed mutation: its kind, the new state snapshot,
// and for filter changes the column key that changed.
type Change struct {
	Kind      ChangeKind
	State     State
	FilterKey string
}

// Transition is a pure function from the current state to a patch. It must
// not mutate its argument; the store applies the patch atomically against
// the latest snapshot.
type Transition func(State) Patch

// Patch is a partial state. Nil fields leave the corresponding state
// untouched.
type Patch struct {
	DisplayColumns *[]string
	Page           *int
	PageSize       *int
	Selected       *[]string
	Filter         *FilterPatch
	Search         *SearchPatch
}

// FilterPatch replaces the filter value for one column key. A nil Value
// clears the filter.
type FilterPatch struct {
	Key   string
	Value interface{}
}

// SearchPatch replaces the active search parameters.
type SearchPatch struct {
	Key  interface{}
	Text string
}

// Store owns the state of one table instance. Mutations flow through the
// single Apply entry point; each applied change immediately invokes the
// notify hook with the new value, before Apply returns.
type Store struct {
	doc    *schema.Document
	st     State
	notify func(Change)
}

// NewStore creates a store with schema-derived defaults. notify may be nil.
func NewStore(doc *schema.Document, notify func(Change)) *Store {
	return &Store{doc: doc, st: Defaults(doc), notify: notify}
}

// State returns the current snapshot.
func (s *Store) State() State {
	return s.st.clone()
}

// Apply runs a transition against the latest snapshot and merges its patch
// atomically. Patch fields referencing unknown column keys are dropped
// (silent no-op, never a fault). Each changed aspect fires one notification.
func (s *Store) Apply(t Transition) {
	if t == nil {
		return
	}
	patch := t(s.st.clone())
	var changes []Change

	if patch.DisplayColumns != nil {
		next := s.intersectColumns(*patch.DisplayColumns)
		if !equalStrings(next, s.st.DisplayColumns) {
			s.st.DisplayColumns = next
			changes = append(changes, Change{Kind: ChangeDisplayColumns})
		}
	}
	if patch.PageSize != nil && *patch.PageSize >= 0 && *patch.PageSize != s.st.PageSize {
		s.st.PageSize = *patch.PageSize
		changes = append(changes, Change{Kind: ChangePage})
	}
	if patch.Page != nil && *patch.Page >= 1 && *patch.Page != s.st.Page {
		s.st.Page = *patch.Page
		changes = append(changes, Change{Kind: ChangePage})
	}
	if patch.Selected != nil {
		next := append([]string(nil), *patch.Selected...)
		if !equalStrings(next, s.st.Selected) {
			s.st.Selected = next
			changes = append(changes, Change{Kind: ChangeSelection})
		}
	}
	if patch.Filter != nil {
		if _, ok := s.doc.ColumnByKey(patch.Filter.Key); ok {
			if patch.Filter.Value == nil {
				delete(s.st.Filters, patch.Filter.Key)
			} else {
				s.st.Filters[patch.Filter.Key] = patch.Filter.Value
			}
			changes = append(changes, Change{Kind: ChangeFilter, FilterKey: patch.Filter.Key})
		}
	}
	if patch.Search != nil {
		s.st.SearchKey = patch.Search.Key
		s.st.SearchText = patch.Search.Text
		changes = append(changes, Change{Kind: ChangeSearch})
	}

	if s.notify == nil {
		return
	}
	snap := s.st.clone()
	for _, c := range changes {
		c.State = snap
		s.notify(c)
	}
}

// SetSchema swaps the schema document and re-intersects the display set so
// it never references columns absent from the new schema. Dropped keys fire
// a display-columns notification.
func (s *Store) SetSchema(doc *schema.Document) {
	s.doc = doc
	next := s.intersectColumns(s.st.DisplayColumns)
	if equalStrings(next, s.st.DisplayColumns) {
		return
	}
	s.st.DisplayColumns = next
	if s.notify != nil {
		s.notify(Change{Kind: ChangeDisplayColumns, State: s.st.clone()})
	}
}

// intersectColumns drops unknown keys and duplicates while preserving order.
func (s *Store) intersectColumns(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		if _, ok := s.doc.ColumnByKey(k); !ok {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
