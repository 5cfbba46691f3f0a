package engine

import (
	"fmt"

	"github.com/oakwood-commons/gridkit/internal/datapath"
	"github.com/oakwood-commons/gridkit/internal/limiter"
	"github.com/oakwood-commons/gridkit/internal/registry"
	"github.com/oakwood-commons/gridkit/internal/state"
	"github.com/oakwood-commons/gridkit/internal/toolbar"
	"github.com/oakwood-commons/gridkit/pkg/driver"
	"github.com/oakwood-commons/gridkit/pkg/render"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// Render transforms the current (schema, data, state) triple into a render
// tree. Rendering never mutates state; calling Render twice without a
// Dispatch in between yields structurally identical trees.
func (t *Table) Render() *render.Node {
	st := t.store.State()
	tableKey := t.tableKey()

	root := render.NewNode(render.KindTable, tableKey)
	root.Set("id", t.doc.ID)
	root.Set("depth", t.depth)
	if t.doc.Class != "" {
		root.Set("class", t.doc.Class)
	}
	if len(t.doc.Style) > 0 {
		root.Set("style", t.doc.Style)
	}
	if t.loading {
		root.Set("loading", true)
	}
	if t.doc.Ellipsis {
		root.Set("ellipsis", true)
	}
	if t.doc.VirtualScroll {
		root.Set("virtualScroll", true)
	}

	pass := t.reg.NewPass()
	cols := t.displayColumns(st)
	rows, indices := t.filteredRows(st)

	root.Append(toolbar.Compose(toolbar.Config{
		Doc:      t.doc,
		Driver:   t.drv,
		Pass:     pass,
		State:    st,
		Data:     t.data,
		Drafts:   t.drafts,
		TableKey: tableKey,
		OnSearch: t.triggerSearch,
	}))

	root.Append(t.renderHeader(tableKey, cols))

	page := limiter.ClampPage(st.Page, len(rows), st.PageSize)
	window := limiter.Page(rows, page, st.PageSize)
	windowIdx := limiter.Page(indices, page, st.PageSize)
	root.Append(t.renderBody(tableKey, pass, st, cols, window, windowIdx))

	root.Append(t.renderPagination(tableKey, st, page, len(rows)))
	root.Append(t.renderFooter(tableKey, len(rows)))
	return root
}

func (t *Table) tableKey() string {
	id := t.doc.ID
	if id == "" {
		id = "table"
	}
	return fmt.Sprintf("%s/%d", id, t.depth)
}

// displayColumns resolves the state's display set back to column
// definitions, in display order. Degraded columns are returned too so they
// render as inline error markers at their declared position.
func (t *Table) displayColumns(st state.State) []schema.Column {
	out := make([]schema.Column, 0, len(st.DisplayColumns)+1)
	for _, c := range t.doc.Columns {
		if c.Invalid != "" {
			out = append(out, c)
			continue
		}
		if st.IsDisplayed(c.Key) {
			out = append(out, c)
		}
	}
	return out
}

// filteredRows applies the active column filters locally. A filter entry
// with a CEL expression uses the predicate; otherwise the filter value is
// compared against the column's cell value. Rows failing a broken predicate
// are kept rather than silently dropped. The second slice carries each kept
// row's position in the full data slice so positional row keys stay stable
// across filtering and paging.
func (t *Table) filteredRows(st state.State) ([]map[string]interface{}, []int) {
	indices := make([]int, 0, len(t.data))
	if len(st.Filters) == 0 {
		for i := range t.data {
			indices = append(indices, i)
		}
		return t.data, indices
	}
	out := make([]map[string]interface{}, 0, len(t.data))
	for i, row := range t.data {
		if t.rowMatches(row, st.Filters) {
			out = append(out, row)
			indices = append(indices, i)
		}
	}
	return out, indices
}

func (t *Table) rowMatches(row map[string]interface{}, filters map[string]interface{}) bool {
	for key, want := range filters {
		col, ok := t.doc.ColumnByKey(key)
		if !ok {
			continue
		}
		if e := filterExpr(col, want); e != "" {
			match, err := t.eval.EvalBool(e, row)
			if err != nil {
				t.log.V(1).Info("filter predicate failed", "column", key, "error", err.Error())
				continue
			}
			if !match {
				return false
			}
			continue
		}
		got, _ := datapath.Get(row, col.DataIndex)
		if datapath.Stringify(got) != datapath.Stringify(want) {
			return false
		}
	}
	return true
}

// filterExpr returns the CEL predicate of the filter entry matching the
// active value, or "".
func filterExpr(col *schema.Column, value interface{}) string {
	for _, f := range col.Filters {
		if datapath.Stringify(f.Value) == datapath.Stringify(value) {
			return f.Expr
		}
	}
	return ""
}

func (t *Table) renderHeader(tableKey string, cols []schema.Column) *render.Node {
	if t.doc.Header != nil && t.doc.Header.Show != nil && !*t.doc.Header.Show {
		return nil
	}
	head := render.NewNode(render.KindHeader, tableKey+"/head")
	if t.doc.Header != nil && t.doc.Header.Sticky {
		head.Set("sticky", true)
	}

	if t.doc.Selection != nil {
		sel := render.NewNode(render.KindHeaderCell, tableKey+"/head/$select")
		sel.Set("role", "selection")
		sel.Set("width", t.doc.Selection.Width)
		head.Append(sel)
	}
	if t.sub != nil {
		exp := render.NewNode(render.KindHeaderCell, tableKey+"/head/$expand")
		exp.Set("role", "expand")
		head.Append(exp)
	}
	for _, col := range cols {
		cell := render.NewNode(render.KindHeaderCell, tableKey+"/head/"+headerKey(col))
		if col.Invalid != "" {
			cell.Set("error", col.Invalid)
			cell.Unit = t.drv.Error(col.Invalid)
			head.Append(cell)
			continue
		}
		cell.Set("title", col.Title)
		cell.Set("align", col.Align)
		if col.Width > 0 {
			cell.Set("width", col.Width)
		}
		cell.Unit = t.drv.Text(col.Title)
		head.Append(cell)
	}
	return head
}

func headerKey(col schema.Column) string {
	if col.Key != "" {
		return col.Key
	}
	return "$invalid"
}

func (t *Table) renderBody(tableKey string, pass *registry.Pass, st state.State, cols []schema.Column, window []map[string]interface{}, windowIdx []int) *render.Node {
	body := render.NewNode(render.KindBody, tableKey+"/body")
	for i, row := range window {
		rowKey := t.rowKeyOf(row, windowIdx[i])
		body.Append(t.renderRow(tableKey, pass, st, cols, row, rowKey))

		if t.sub.Expanded(rowKey) {
			body.Append(t.renderSubtable(tableKey, rowKey))
		}
	}
	return body
}

func (t *Table) renderRow(tableKey string, pass *registry.Pass, st state.State, cols []schema.Column, row map[string]interface{}, rowKey string) *render.Node {
	node := render.NewNode(render.KindRow, tableKey+"/"+rowKey)
	node.Set("rowKey", rowKey)
	node.Intent = render.NewIntent(render.OpRowClick, "rowKey", rowKey)

	if t.doc.Selection != nil {
		sel := render.NewNode(render.KindCell, node.Key+"/$select")
		sel.Set("role", "selection")
		sel.Set("selected", st.IsSelected(rowKey))
		sel.Intent = render.NewIntent(render.OpToggleSelect, "rowKey", rowKey)
		node.Append(sel)
	}
	if t.sub != nil {
		exp := render.NewNode(render.KindCell, node.Key+"/$expand")
		exp.Set("role", "expand")
		if t.sub.Expandable(row) {
			expanded := t.sub.Expanded(rowKey)
			exp.Set("expanded", expanded)
			if expanded {
				exp.Intent = render.NewIntent(render.OpCollapseRow, "rowKey", rowKey)
				exp.Unit = t.drv.Icon("collapse")
			} else {
				exp.Intent = render.NewIntent(render.OpExpandRow, "rowKey", rowKey)
				exp.Unit = t.drv.Icon("expand")
			}
		}
		node.Append(exp)
	}

	for _, col := range cols {
		node.Append(t.renderCell(pass, row, rowKey, col))
	}
	return node
}

// renderCell resolves the column's component and builds one cell node. Cell
// keys encode the full nesting position so dynamically visible columns keep
// their identity across renders.
func (t *Table) renderCell(pass *registry.Pass, row map[string]interface{}, rowKey string, col schema.Column) *render.Node {
	key := fmt.Sprintf("%s/%s/%s", t.tableKey(), rowKey, headerKey(col))

	if col.Invalid != "" {
		n := render.NewError(key, col.Invalid)
		n.Unit = t.drv.Error(col.Invalid)
		return n
	}

	n := render.NewNode(render.KindCell, key)
	n.Set("column", col.Key)
	n.Set("align", col.Align)
	if col.Width > 0 {
		n.Set("width", col.Width)
	}

	value, ok := datapath.Get(row, col.DataIndex)
	if !ok || value == nil {
		if col.Default == "" {
			value = nil
		} else {
			value = col.Default
		}
	}

	comp, found := pass.Component(col.Component, col.Options)
	if !found {
		msg := fmt.Sprintf("no component registered for %q", col.Component)
		e := render.NewError(key, msg)
		e.Unit = t.drv.Error(msg)
		return e
	}
	n.Unit = comp(registry.CellContext{
		Driver: t.drv,
		Schema: t.doc,
		Column: &col,
		Row:    row,
		RowKey: rowKey,
		Value:  value,
		Emit:   t.emit,
	})
	return n
}

// renderSubtable renders the expanded child table, or the inline error that
// took its place when child derivation failed.
func (t *Table) renderSubtable(tableKey, rowKey string) *render.Node {
	inst := t.sub.Get(rowKey)
	key := tableKey + "/" + rowKey + "/subtable"

	n := render.NewNode(render.KindSubtable, key)
	n.Set("rowKey", rowKey)
	if inst.Err != "" {
		e := render.NewError(key+"/error", inst.Err)
		e.Unit = t.drv.Error(inst.Err)
		return n.Append(e)
	}
	return n.Append(inst.Child.Render())
}

func (t *Table) renderPagination(tableKey string, st state.State, page, total int) *render.Node {
	p := t.doc.Pagination
	if p == nil {
		return nil
	}
	pages := limiter.PageCount(total, st.PageSize)

	n := render.NewNode(render.KindPagination, tableKey+"/pager")
	n.Set("page", page)
	n.Set("pageCount", pages)
	n.Set("pageSize", st.PageSize)
	n.Set("total", total)
	if p.Simple {
		n.Set("simple", true)
	}

	prev := render.NewNode(render.KindElement, n.Key+"/prev")
	prev.Set("type", "page-prev")
	prev.Set("disabled", page <= 1)
	prev.Unit = t.drv.Button(driver.ButtonSpec{Label: "‹", Disabled: page <= 1})
	if page > 1 {
		prev.Intent = render.NewIntent(render.OpSetPage, "page", page-1)
	}
	n.Append(prev)

	next := render.NewNode(render.KindElement, n.Key+"/next")
	next.Set("type", "page-next")
	next.Set("disabled", page >= pages)
	next.Unit = t.drv.Button(driver.ButtonSpec{Label: "›", Disabled: page >= pages})
	if page < pages {
		next.Intent = render.NewIntent(render.OpSetPage, "page", page+1)
	}
	n.Append(next)

	if !p.Simple && len(p.PageSizeOptions) > 0 {
		opts := make([]driver.Option, len(p.PageSizeOptions))
		for i, size := range p.PageSizeOptions {
			opts[i] = driver.Option{Label: fmt.Sprintf("%d / page", size), Value: size}
		}
		sizer := render.NewNode(render.KindElement, n.Key+"/size")
		sizer.Set("type", "page-size")
		sizer.Unit = t.drv.Select(driver.SelectSpec{Options: opts, Value: st.PageSize})
		sizer.Intent = render.NewIntent(render.OpSetPageSize)
		n.Append(sizer)
	}
	return n
}

func (t *Table) renderFooter(tableKey string, total int) *render.Node {
	f := t.doc.Footer
	if f == nil || !f.Show {
		return nil
	}
	n := render.NewNode(render.KindFooter, tableKey+"/footer")
	n.Set("total", total)
	if f.Text != "" {
		n.Set("text", f.Text)
		n.Unit = t.drv.Text(f.Text)
	}
	return n
}

// emit forwards a custom-component event to the catch-all callback.
func (t *Table) emit(name string, payload interface{}) {
	if t.cb.OnEvent != nil {
		t.cb.OnEvent(t.info(), name, payload)
	}
}

// triggerSearch lets slot widgets drive the same search pipeline as the
// built-in search element's submit.
func (t *Table) triggerSearch(key interface{}, text string) {
	t.store.Apply(state.SetSearch(key, text))
}
