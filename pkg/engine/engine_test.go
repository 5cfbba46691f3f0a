package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/internal/registry"
	"github.com/oakwood-commons/gridkit/pkg/driver"
	"github.com/oakwood-commons/gridkit/pkg/render"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

type plainDriver struct{}

func (plainDriver) Name() string { return "plain" }

func (plainDriver) Text(s string) driver.Unit { return "text:" + s }

func (plainDriver) Raw(markup string) driver.Unit { return "raw:" + markup }

func (plainDriver) Icon(name string) driver.Unit { return "icon:" + name }

func (plainDriver) Error(message string) driver.Unit { return "error:" + message }
func (plainDriver) Button(spec driver.ButtonSpec) driver.Unit {
	return "button:" + spec.Label
}
func (plainDriver) Input(spec driver.InputSpec) driver.Unit {
	return "input:" + spec.Value
}
func (plainDriver) Select(spec driver.SelectSpec) driver.Unit {
	return fmt.Sprintf("select:%v", spec.Value)
}
func (plainDriver) Menu(spec driver.MenuSpec) driver.Unit {
	return fmt.Sprintf("menu:%s", spec.Label)
}
func (plainDriver) Cell(spec driver.CellSpec, units ...driver.Unit) driver.Unit { return units }
func (plainDriver) Row(units ...driver.Unit) driver.Unit                        { return units }

func mockSchema() *schema.Document {
	return &schema.Document{
		ID:     "t1",
		RowKey: "id",
		Columns: []schema.Column{
			{Key: "mock_1", Hidable: true},
			{Key: "mock_2"},
			{Key: "mock_3", Hidable: true, Hidden: true},
		},
	}
}

func mockData(n int) []map[string]interface{} {
	rows := make([]map[string]interface{}, n)
	for i := range rows {
		rows[i] = map[string]interface{}{
			"id":     fmt.Sprintf("r%d", i+1),
			"mock_1": fmt.Sprintf("a%d", i+1),
			"mock_2": fmt.Sprintf("b%d", i+1),
			"mock_3": fmt.Sprintf("c%d", i+1),
		}
	}
	return rows
}

func newTable(t *testing.T, opts Options) *Table {
	t.Helper()
	if opts.Driver == nil {
		opts.Driver = plainDriver{}
	}
	tbl, err := New(opts)
	require.NoError(t, err)
	return tbl
}

func cellColumns(row *render.Node) []string {
	var out []string
	for _, c := range row.Children {
		if c.Kind == render.KindCell && c.StringProp("role") == "" {
			out = append(out, c.StringProp("column"))
		}
	}
	return out
}

func TestNew_FatalSchema(t *testing.T) {
	_, err := New(Options{Schema: &schema.Document{RowKey: "id"}, Driver: plainDriver{}})
	var fatal *schema.FatalError
	require.ErrorAs(t, err, &fatal)

	_, err = New(Options{Schema: mockSchema()})
	assert.Error(t, err, "a driver is required")
}

func TestRender_BasicTree(t *testing.T) {
	tbl := newTable(t, Options{Schema: mockSchema(), Data: mockData(2)})
	tree := tbl.Render()

	assert.Equal(t, render.KindTable, tree.Kind)
	assert.Equal(t, "t1/0", tree.Key)

	head := tree.FindByKey("t1/0/head")
	require.NotNil(t, head)
	assert.Len(t, head.Children, 2, "default-hidden columns are absent")
	assert.Equal(t, "mock_1", head.Children[0].StringProp("title"))

	rows := tree.FindAll(render.KindRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "t1/0/r1", rows[0].Key)
	assert.Equal(t, []string{"mock_1", "mock_2"}, cellColumns(rows[0]))

	cell := tree.FindByKey("t1/0/r1/mock_1")
	require.NotNil(t, cell)
	assert.Equal(t, "text:a1", cell.Unit, "the built-in text component renders by default")
}

func TestRender_IsPure(t *testing.T) {
	tbl := newTable(t, Options{Schema: mockSchema(), Data: mockData(3)})
	a, b := tbl.Render(), tbl.Render()
	assert.Equal(t, len(a.FindAll(render.KindRow)), len(b.FindAll(render.KindRow)))
	assert.Equal(t, a.Key, b.Key)
}

// Toggling a column off re-renders without it and notifies with the new
// display set; toggling again restores the original tree shape.
func TestDispatch_ToggleColumn(t *testing.T) {
	var got [][]string
	tbl := newTable(t, Options{
		Schema: mockSchema(),
		Data:   mockData(1),
		Callbacks: Callbacks{
			OnColumnsChange: func(info TableInfo, cols []string) {
				assert.Equal(t, "t1", info.TableID)
				got = append(got, cols)
			},
		},
	})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpToggleColumn, "key", "mock_1")))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"mock_2"}, got[0])

	row := tbl.Render().FindAll(render.KindRow)[0]
	assert.Equal(t, []string{"mock_2"}, cellColumns(row))

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpToggleColumn, "key", "mock_1")))
	row = tbl.Render().FindAll(render.KindRow)[0]
	assert.Equal(t, []string{"mock_1", "mock_2"}, cellColumns(row),
		"toggling twice restores the original column order")
}

func TestDispatch_UnknownOp(t *testing.T) {
	tbl := newTable(t, Options{Schema: mockSchema()})
	assert.Error(t, tbl.Dispatch(*render.NewIntent("bogus")))
}

// Search is submit-only: typing mutates the draft, the callback fires on
// submit alone, and a missing default key surfaces as nil.
func TestSearch_SubmitOnly(t *testing.T) {
	doc := mockSchema()
	doc.Toolbar = []schema.Element{{
		Type: schema.ElementSearch,
		SearchKeys: []schema.SearchKey{
			{Label: "Name", Value: "name"},
			{Label: "Owner", Value: "owner"},
		},
	}}

	var calls []string
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   mockData(1),
		Callbacks: Callbacks{
			OnSearch: func(info TableInfo, key interface{}, text string) {
				calls = append(calls, fmt.Sprintf("%v:%s", key, text))
			},
		},
	})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetSearchText, "element", 0, "text", "abc")))
	assert.Empty(t, calls, "typing never fires the search callback")

	input := tbl.Render().FindByKey("t1/0/toolbar/0/input")
	require.NotNil(t, input)
	assert.Equal(t, "input:abc", input.Unit, "the draft shows in the input before submit")

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSubmitSearch, "element", 0)))
	assert.Equal(t, []string{"<nil>:abc"}, calls, "no chosen or default key submits nil")

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetSearchKey, "element", 0, "key", "owner")))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSubmitSearch, "element", 0)))
	assert.Equal(t, "owner:abc", calls[1])
}

func TestSearch_DefaultKeyFallback(t *testing.T) {
	doc := mockSchema()
	doc.Toolbar = []schema.Element{{
		Type:             schema.ElementSearch,
		SearchKeys:       []schema.SearchKey{{Label: "Name", Value: "name"}},
		DefaultSearchKey: "name",
	}}

	var gotKey interface{}
	tbl := newTable(t, Options{
		Schema: doc,
		Callbacks: Callbacks{
			OnSearch: func(info TableInfo, key interface{}, text string) { gotKey = key },
		},
	})
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSubmitSearch, "element", 0)))
	assert.Equal(t, "name", gotKey)
}

// Rows matching the subtable rule expand into nested tables; a row lacking
// the child data field stays expandable but renders an inline error where
// the child table would be.
func TestSubtable_ExpandAndInlineError(t *testing.T) {
	doc := mockSchema()
	doc.Subtable = &schema.SubtableRule{
		DataIndex: "children",
		Schema: &schema.Document{
			ID:      "t1-child",
			RowKey:  "id",
			Columns: []schema.Column{{Key: "id"}, {Key: "name"}},
		},
	}
	data := mockData(2)
	data[0]["children"] = []interface{}{
		map[string]interface{}{"id": "c1", "name": "first"},
	}
	// data[1] has no "children" field.

	tbl := newTable(t, Options{Schema: doc, Data: data})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r1")))
	tree := tbl.Render()

	sub := tree.FindByKey("t1/0/r1/subtable")
	require.NotNil(t, sub)
	nested := sub.Children[0]
	assert.Equal(t, render.KindTable, nested.Kind)
	assert.Equal(t, "t1-child/1", nested.Key, "the child runs at depth 1")
	childCell := nested.FindByKey("t1-child/1/c1/name")
	require.NotNil(t, childCell)
	assert.Equal(t, "text:first", childCell.Unit)

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r2")))
	tree = tbl.Render()
	sub = tree.FindByKey("t1/0/r2/subtable")
	require.NotNil(t, sub)
	assert.Equal(t, render.KindError, sub.Children[0].Kind)
	assert.Contains(t, sub.Children[0].StringProp("message"), "children")
}

func TestSubtable_CollapseDiscardsChildState(t *testing.T) {
	doc := mockSchema()
	doc.Subtable = &schema.SubtableRule{
		DataIndex: "children",
		Schema: &schema.Document{
			RowKey:  "id",
			Columns: []schema.Column{{Key: "id", Hidable: true}, {Key: "name"}},
		},
	}
	data := mockData(1)
	data[0]["children"] = []interface{}{
		map[string]interface{}{"id": "c1", "name": "first"},
	}

	tbl := newTable(t, Options{Schema: doc, Data: data})
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r1")))

	child, ok := tbl.Child("r1")
	require.True(t, ok)
	require.NoError(t, child.Dispatch(*render.NewIntent(render.OpToggleColumn, "key", "id")))
	assert.Equal(t, []string{"name"}, child.State().DisplayColumns)

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpCollapseRow, "rowKey", "r1")))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r1")))

	child, ok = tbl.Child("r1")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, child.State().DisplayColumns,
		"re-expanding yields the schema-derived default state")
}

func TestSubtable_PreserveCollapsed(t *testing.T) {
	doc := mockSchema()
	doc.Subtable = &schema.SubtableRule{
		DataIndex: "children",
		Schema: &schema.Document{
			RowKey:  "id",
			Columns: []schema.Column{{Key: "id", Hidable: true}, {Key: "name"}},
		},
	}
	data := mockData(1)
	data[0]["children"] = []interface{}{
		map[string]interface{}{"id": "c1", "name": "first"},
	}

	tbl := newTable(t, Options{Schema: doc, Data: data, PreserveCollapsed: true})
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r1")))
	child, _ := tbl.Child("r1")
	require.NoError(t, child.Dispatch(*render.NewIntent(render.OpToggleColumn, "key", "id")))

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpCollapseRow, "rowKey", "r1")))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r1")))

	child, ok := tbl.Child("r1")
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, child.State().DisplayColumns,
		"preservation restores exactly the state present at collapse")
}

func TestNew_DegradedSchemaStillRenders(t *testing.T) {
	doc := &schema.Document{
		ID:     "t1",
		RowKey: "id",
		Columns: []schema.Column{
			{Key: "mock_1"},
			{Key: "mock_1"}, // duplicate
			{Key: "mock_2", Component: "ghost"},
		},
	}
	tbl := newTable(t, Options{Schema: doc, Data: mockData(1)})
	assert.NotEmpty(t, tbl.Issues())

	row := tbl.Render().FindAll(render.KindRow)[0]
	var kinds []render.Kind
	for _, c := range row.Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []render.Kind{render.KindCell, render.KindError, render.KindError}, kinds,
		"the duplicate column and the unknown component degrade in place")
}

func TestCustomComponentBeatsBuiltin(t *testing.T) {
	reg := registry.New()
	reg.RegisterComponent("text", func(ctx registry.CellContext) driver.Unit {
		return "custom:" + fmt.Sprintf("%v", ctx.Value)
	})
	tbl := newTable(t, Options{Schema: mockSchema(), Data: mockData(1), Registry: reg})

	cell := tbl.Render().FindByKey("t1/0/r1/mock_1")
	assert.Equal(t, "custom:a1", cell.Unit)
}

func TestComponentEmitReachesOnEvent(t *testing.T) {
	var events []string
	reg := registry.New()
	reg.RegisterComponent("emitter", func(ctx registry.CellContext) driver.Unit {
		ctx.Emit("cell-built", ctx.RowKey)
		return ctx.Driver.Text("x")
	})
	doc := mockSchema()
	doc.Columns[0].Component = "emitter"

	tbl := newTable(t, Options{
		Schema:   doc,
		Data:     mockData(1),
		Registry: reg,
		Callbacks: Callbacks{
			OnEvent: func(info TableInfo, name string, payload interface{}) {
				events = append(events, fmt.Sprintf("%s:%v", name, payload))
			},
		},
	})
	tbl.Render()
	assert.Equal(t, []string{"cell-built:r1"}, events)
}

func TestPagination_WindowAndIntents(t *testing.T) {
	doc := mockSchema()
	doc.Pagination = &schema.Pagination{PageSize: 2}

	var pages []int
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   mockData(5),
		Callbacks: Callbacks{
			OnPageChange: func(info TableInfo, page, pageSize int) { pages = append(pages, page) },
		},
	})

	tree := tbl.Render()
	assert.Len(t, tree.FindAll(render.KindRow), 2)
	pager := tree.FindByKey("t1/0/pager")
	require.NotNil(t, pager)
	assert.Equal(t, 3, pager.Prop("pageCount"))
	assert.Equal(t, true, pager.Children[0].Prop("disabled"), "no previous page on page 1")

	next := pager.Children[1]
	require.NotNil(t, next.Intent)
	require.NoError(t, tbl.Dispatch(*next.Intent))
	assert.Equal(t, []int{2}, pages)

	rows := tbl.Render().FindAll(render.KindRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "r3", rows[0].StringProp("rowKey"))
}

func TestFilter_AppliedLocallyAndNotified(t *testing.T) {
	doc := mockSchema()
	doc.Columns[0].Filters = []schema.Filter{
		{Label: "first", Value: "a1"},
		{Label: "late", Value: "late", Expr: `_.mock_1 >= "a3"`},
	}

	var notified []string
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   mockData(4),
		Callbacks: Callbacks{
			OnFilterChange: func(info TableInfo, key string, value interface{}) {
				notified = append(notified, fmt.Sprintf("%s=%v", key, value))
			},
		},
	})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetFilter, "key", "mock_1", "value", "a1")))
	assert.Equal(t, []string{"mock_1=a1"}, notified)
	assert.Len(t, tbl.Render().FindAll(render.KindRow), 1, "equality filter keeps matching rows only")

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetFilter, "key", "mock_1", "value", "late")))
	assert.Len(t, tbl.Render().FindAll(render.KindRow), 2, "expression filters run the predicate per row")

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetFilter, "key", "mock_1")))
	assert.Len(t, tbl.Render().FindAll(render.KindRow), 4, "a nil value clears the filter")
}

func TestSelection_IntentAndCallback(t *testing.T) {
	doc := mockSchema()
	doc.Selection = &schema.Selection{Mode: schema.SelectionSingle}

	var selections [][]string
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   mockData(2),
		Callbacks: Callbacks{
			OnSelectionChange: func(info TableInfo, sel []string) { selections = append(selections, sel) },
		},
	})

	row := tbl.Render().FindAll(render.KindRow)[0]
	selCell := row.Children[0]
	assert.Equal(t, "selection", selCell.StringProp("role"))
	require.NotNil(t, selCell.Intent)

	require.NoError(t, tbl.Dispatch(*selCell.Intent))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpToggleSelect, "rowKey", "r2")))
	assert.Equal(t, [][]string{{"r1"}, {"r2"}}, selections, "single mode replaces the selection")
}

func TestRowCallbacksAndInsert(t *testing.T) {
	doc := mockSchema()
	doc.Toolbar = []schema.Element{{Type: schema.ElementInsert}}

	var log []string
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   mockData(1),
		Callbacks: Callbacks{
			OnInsert: func(info TableInfo) { log = append(log, "insert") },
			OnRowClick: func(info TableInfo, rowKey string, row map[string]interface{}) {
				log = append(log, "click:"+rowKey)
			},
			OnRowDoubleClick: func(info TableInfo, rowKey string, row map[string]interface{}) {
				log = append(log, "dbl:"+rowKey)
			},
		},
	})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpInsert)))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpRowClick, "rowKey", "r1")))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpRowDoubleClick, "rowKey", "r1")))
	assert.Equal(t, []string{"insert", "click:r1", "dbl:r1"}, log)
}

func TestSetData_ResetsExpansion(t *testing.T) {
	doc := mockSchema()
	doc.Subtable = &schema.SubtableRule{
		DataIndex: "children",
		Schema:    &schema.Document{RowKey: "id", Columns: []schema.Column{{Key: "id"}}},
	}
	data := mockData(1)
	data[0]["children"] = []interface{}{map[string]interface{}{"id": "c1"}}

	tbl := newTable(t, Options{Schema: doc, Data: data, PreserveCollapsed: true})
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpExpandRow, "rowKey", "r1")))

	tbl.SetData(mockData(1))
	_, ok := tbl.Child("r1")
	assert.False(t, ok, "new data invalidates all expansion state")
}

func TestLoadingProp(t *testing.T) {
	tbl := newTable(t, Options{Schema: mockSchema(), Loading: true})
	assert.Equal(t, true, tbl.Render().Prop("loading"))
	tbl.SetLoading(false)
	assert.Nil(t, tbl.Render().Prop("loading"))
}

func TestFilter_UnknownKeyLeavesPageAlone(t *testing.T) {
	doc := mockSchema()
	doc.Pagination = &schema.Pagination{PageSize: 2}

	var pages []int
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   mockData(5),
		Callbacks: Callbacks{
			OnPageChange: func(info TableInfo, page, pageSize int) { pages = append(pages, page) },
		},
	})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetPage, "page", 2)))
	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetFilter, "key", "ghost", "value", "x")))

	assert.Equal(t, 2, tbl.State().Page, "a dropped filter must not reset the page")
	assert.Equal(t, []int{2}, pages, "a dropped filter must not fire OnPageChange")
	assert.Empty(t, tbl.State().Filters)
}

func TestPositionalRowKeys_StableAcrossPages(t *testing.T) {
	doc := mockSchema()
	doc.Pagination = &schema.Pagination{PageSize: 2}

	// Records without the row-key field get positional keys; those must
	// reflect the record's place in the full data slice, not the page.
	data := mockData(4)
	delete(data[2], "id")
	delete(data[3], "id")

	var clicked []string
	tbl := newTable(t, Options{
		Schema: doc,
		Data:   data,
		Callbacks: Callbacks{
			OnRowClick: func(info TableInfo, rowKey string, row map[string]interface{}) {
				clicked = append(clicked, fmt.Sprintf("%s=%v", rowKey, row["mock_1"]))
			},
		},
	})

	require.NoError(t, tbl.Dispatch(*render.NewIntent(render.OpSetPage, "page", 2)))
	rows := tbl.Render().FindAll(render.KindRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "#2", rows[0].StringProp("rowKey"))
	assert.Equal(t, "#3", rows[1].StringProp("rowKey"))

	require.NoError(t, tbl.Dispatch(*rows[0].Intent))
	assert.Equal(t, []string{"#2=a3"}, clicked, "rendered keys resolve back to the same record")
}
