package engine

import (
	"fmt"

	"github.com/oakwood-commons/gridkit/internal/state"
	"github.com/oakwood-commons/gridkit/internal/toolbar"
	"github.com/oakwood-commons/gridkit/pkg/render"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// Dispatch applies one state-transition intent from this table's render
// tree. Intents taken from a nested subtable's subtree must be dispatched to
// that child instance (see Child); the parent does not route them.
//
// State mutation and the matching callbacks run before Dispatch returns. An
// unknown operation is an error; unknown argument values are silent no-ops,
// matching the store's treatment of unknown column keys.
func (t *Table) Dispatch(in render.Intent) error {
	t.log.V(1).Info("dispatch", "op", in.Op)

	switch in.Op {
	case render.OpToggleColumn:
		t.store.Apply(state.ToggleColumn(t.doc, in.StringArg("key")))

	case render.OpSetPage:
		page, ok := in.IntArg("page")
		if !ok {
			return fmt.Errorf("set-page: missing page argument")
		}
		t.store.Apply(state.SetPage(page))

	case render.OpSetPageSize:
		size, ok := in.IntArg("pageSize")
		if !ok {
			return fmt.Errorf("set-page-size: missing pageSize argument")
		}
		t.store.Apply(state.SetPageSize(size))

	case render.OpToggleSelect:
		t.store.Apply(state.ToggleSelect(t.selectionMode(), in.StringArg("rowKey")))

	case render.OpSetSelection:
		keys, err := stringSlice(in.Args["rowKeys"])
		if err != nil {
			return fmt.Errorf("set-selection: %w", err)
		}
		t.store.Apply(state.SetSelection(t.selectionMode(), keys))

	case render.OpSetFilter:
		t.store.Apply(state.SetFilter(t.doc, in.StringArg("key"), in.Args["value"]))

	case render.OpSetSearchText:
		idx, ok := in.IntArg("element")
		if !ok {
			return fmt.Errorf("set-search-text: missing element argument")
		}
		draft := t.drafts[idx]
		draft.Text = in.StringArg("text")
		t.drafts[idx] = draft

	case render.OpSetSearchKey:
		idx, ok := in.IntArg("element")
		if !ok {
			return fmt.Errorf("set-search-key: missing element argument")
		}
		draft := t.drafts[idx]
		draft.Key = in.Args["key"]
		t.drafts[idx] = draft

	case render.OpSubmitSearch:
		idx, ok := in.IntArg("element")
		if !ok {
			return fmt.Errorf("submit-search: missing element argument")
		}
		t.submitSearch(idx)

	case render.OpInsert:
		if t.cb.OnInsert != nil {
			t.cb.OnInsert(t.info())
		}

	case render.OpExpandRow:
		rowKey := in.StringArg("rowKey")
		row, ok := t.rowByKey(rowKey)
		if !ok {
			return fmt.Errorf("expand-row: no row with key %q", rowKey)
		}
		t.sub.Expand(rowKey, row)

	case render.OpCollapseRow:
		t.sub.Collapse(in.StringArg("rowKey"))

	case render.OpRowClick:
		t.forwardRowEvent(in.StringArg("rowKey"), t.cb.OnRowClick)

	case render.OpRowDoubleClick:
		t.forwardRowEvent(in.StringArg("rowKey"), t.cb.OnRowDoubleClick)

	case render.OpEvent:
		t.emit(in.StringArg("name"), in.Args["payload"])

	default:
		return fmt.Errorf("unknown intent operation %q", in.Op)
	}
	return nil
}

// submitSearch commits a search element's draft. The draft's key falls back
// to the element's configured default; when neither exists the search fires
// with a nil key.
func (t *Table) submitSearch(idx int) {
	draft := t.drafts[idx]
	key := draft.Key
	if key == nil && idx < len(t.doc.Toolbar) {
		key = t.doc.Toolbar[idx].DefaultSearchKey
	}
	t.store.Apply(state.SetSearch(key, draft.Text))
}

// SetSearchDraft programmatically edits a search element's uncommitted
// input, addressed by the element's toolbar index.
func (t *Table) SetSearchDraft(idx int, key interface{}, text string) {
	t.drafts[idx] = toolbar.SearchDraft{Key: key, Text: text}
}

func (t *Table) selectionMode() string {
	if t.doc.Selection != nil {
		return t.doc.Selection.Mode
	}
	return schema.DefaultSelectionMode
}

func (t *Table) forwardRowEvent(rowKey string, cb func(TableInfo, string, map[string]interface{})) {
	if cb == nil {
		return
	}
	row, _ := t.rowByKey(rowKey)
	cb(t.info(), rowKey, row)
}

// stringSlice coerces the slice shapes JSON decoding and Go callers produce.
func stringSlice(v interface{}) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return s, nil
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("row keys must be strings, got %T", e)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("row keys must be a string list, got %T", v)
	}
}
