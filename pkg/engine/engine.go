// Package engine is the rendering core: a pure transform from (schema, data,
// runtime state) to a renderable node tree plus state-transition intents.
// The engine owns no output surface; hosts supply a driver for primitive
// units, walk the tree Render returns, and feed activated intents back
// through Dispatch.
package engine

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridkit/internal/datapath"
	"github.com/oakwood-commons/gridkit/internal/expr"
	"github.com/oakwood-commons/gridkit/internal/registry"
	"github.com/oakwood-commons/gridkit/internal/state"
	"github.com/oakwood-commons/gridkit/internal/subtable"
	"github.com/oakwood-commons/gridkit/internal/toolbar"
	"github.com/oakwood-commons/gridkit/pkg/driver"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// TableInfo is the identity projection passed to every callback so consumers
// can tell which table instance an event came from, root or nested.
type TableInfo struct {
	TableID string
	Depth   int

	// DataSource is the instance's full (unfiltered, unpaged) data slice.
	DataSource []map[string]interface{}
}

// Callbacks are the host's state-change and interaction notifications. Every
// callback is optional; each one always receives the new value, never the
// outgoing one.
type Callbacks struct {
	OnColumnsChange   func(info TableInfo, displayColumns []string)
	OnPageChange      func(info TableInfo, page, pageSize int)
	OnSelectionChange func(info TableInfo, selected []string)
	OnFilterChange    func(info TableInfo, key string, value interface{})

	// OnSearch fires on search submit only, never while typing. A nil key
	// means no search key was chosen.
	OnSearch func(info TableInfo, key interface{}, text string)

	OnInsert         func(info TableInfo)
	OnRowClick       func(info TableInfo, rowKey string, row map[string]interface{})
	OnRowDoubleClick func(info TableInfo, rowKey string, row map[string]interface{})

	// OnEvent is the catch-all for events emitted by custom components.
	OnEvent func(info TableInfo, name string, payload interface{})
}

// Options assembles a table instance.
type Options struct {
	// Schema is the raw schema document. New validates and normalizes it;
	// fatal schema problems fail construction.
	Schema *schema.Document

	// Data is the record slice. Records are read-only to the engine.
	Data []map[string]interface{}

	// Driver supplies primitive renderable units. Required.
	Driver driver.Driver

	// Registry holds custom components and slot renderers. Nil means
	// built-ins only. The same registry is threaded down into every
	// nested subtable.
	Registry *registry.Registry

	Callbacks Callbacks

	// Rules are external validation rules applied after structural
	// validation.
	Rules []schema.Rule

	// PreserveCollapsed keeps a collapsed row's child-table state alive
	// for the lifetime of this instance. A rule-level preserve flag
	// overrides it.
	PreserveCollapsed bool

	// SubtableData supplies child rows externally instead of reading the
	// rule's data-index path out of the parent row.
	SubtableData subtable.Accessor

	// Loading renders the table in its loading presentation.
	Loading bool

	Logger logr.Logger

	// depth is the nesting depth, set internally for subtable children.
	depth int
}

// Table is one table instance. Every instance, root or nested, owns its own
// state store and subtable controller exclusively; instances never share
// mutable state. A Table is not safe for concurrent use.
type Table struct {
	doc    *schema.Document
	issues []schema.Issue
	data   []map[string]interface{}
	drv    driver.Driver
	reg    *registry.Registry
	cb     Callbacks
	log    logr.Logger

	store    *state.Store
	eval     *expr.Evaluator
	sub      *subtable.Controller
	drafts   map[int]toolbar.SearchDraft
	depth    int
	loading  bool
	preserve bool
	accessor subtable.Accessor
}

// New validates the schema and assembles a table instance. The returned
// error is non-nil only for fatal schema problems (missing columns or row
// key); every other schema defect degrades in place and is reported by
// Issues.
func New(opts Options) (*Table, error) {
	if opts.Driver == nil {
		return nil, fmt.Errorf("engine: a driver is required")
	}
	res, err := schema.Validate(opts.Schema, opts.Rules...)
	if err != nil {
		return nil, err
	}
	ev, err := expr.NewEvaluator()
	if err != nil {
		return nil, err
	}

	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	registerBuiltins(reg)

	log := opts.Logger
	if opts.Logger.GetSink() == nil {
		log = logr.Discard()
	}

	t := &Table{
		doc:      res.Doc,
		issues:   res.Issues,
		data:     opts.Data,
		drv:      opts.Driver,
		reg:      reg,
		cb:       opts.Callbacks,
		log:      log.WithValues("table", res.Doc.ID, "depth", opts.depth),
		eval:     ev,
		drafts:   make(map[int]toolbar.SearchDraft),
		depth:    opts.depth,
		loading:  opts.Loading,
		preserve: opts.PreserveCollapsed,
		accessor: opts.SubtableData,
	}
	t.store = state.NewStore(t.doc, t.onChange)
	t.sub = t.newController()

	if len(res.Issues) > 0 {
		t.log.V(1).Info("schema degraded", "issues", len(res.Issues))
	}
	return t, nil
}

// newController assembles the subtable controller for the current schema.
func (t *Table) newController() *subtable.Controller {
	return subtable.New(subtable.Config{
		Rule:     t.doc.Subtable,
		Eval:     t.eval,
		Factory:  t.childFactory,
		Accessor: t.accessor,
		Depth:    t.depth,
		Preserve: t.preserve,
	})
}

// childFactory builds nested table instances that inherit the parent's
// driver, registry, callbacks, and preserve policy. Each child owns its own
// state from scratch.
func (t *Table) childFactory(doc *schema.Document, rows []map[string]interface{}, depth int) (subtable.Child, error) {
	return New(Options{
		Schema:            doc,
		Data:              rows,
		Driver:            t.drv,
		Registry:          t.reg,
		Callbacks:         t.cb,
		PreserveCollapsed: t.preserve,
		SubtableData:      t.accessor,
		Logger:            t.log,
		depth:             depth,
	})
}

// Schema returns the normalized schema document. Callers must treat it as
// read-only.
func (t *Table) Schema() *schema.Document {
	return t.doc
}

// Issues returns the non-fatal schema defects found at construction.
func (t *Table) Issues() []schema.Issue {
	return t.issues
}

// State returns the current state snapshot.
func (t *Table) State() state.State {
	return t.store.State()
}

// SetData replaces the data source. Expansion state is reset: rows in the
// new data are unrelated to rows in the old one.
func (t *Table) SetData(rows []map[string]interface{}) {
	t.data = rows
	t.sub.Reset()
}

// SetLoading toggles the loading presentation.
func (t *Table) SetLoading(loading bool) {
	t.loading = loading
}

// SetSchema swaps in a new schema document. Fatal problems leave the current
// schema in place and return the error. The display set is re-intersected
// against the new column set and expansion state is reset.
func (t *Table) SetSchema(doc *schema.Document, rules ...schema.Rule) error {
	res, err := schema.Validate(doc, rules...)
	if err != nil {
		return err
	}
	t.doc = res.Doc
	t.issues = res.Issues
	t.store.SetSchema(res.Doc)
	t.sub = t.newController()
	return nil
}

// Child returns the nested table instance for an expanded row, when the
// child built successfully. Intents found under a subtable node in the
// render tree must be dispatched to the owning child, not the parent.
func (t *Table) Child(rowKey string) (*Table, bool) {
	inst := t.sub.Get(rowKey)
	if inst == nil || inst.Child == nil {
		return nil, false
	}
	child, ok := inst.Child.(*Table)
	return child, ok
}

func (t *Table) info() TableInfo {
	return TableInfo{TableID: t.doc.ID, Depth: t.depth, DataSource: t.data}
}

// onChange maps store change kinds to the host's callbacks.
func (t *Table) onChange(c state.Change) {
	info := t.info()
	switch c.Kind {
	case state.ChangeDisplayColumns:
		if t.cb.OnColumnsChange != nil {
			t.cb.OnColumnsChange(info, c.State.DisplayColumns)
		}
	case state.ChangePage:
		if t.cb.OnPageChange != nil {
			t.cb.OnPageChange(info, c.State.Page, c.State.PageSize)
		}
	case state.ChangeSelection:
		if t.cb.OnSelectionChange != nil {
			t.cb.OnSelectionChange(info, c.State.Selected)
		}
	case state.ChangeFilter:
		if t.cb.OnFilterChange != nil {
			t.cb.OnFilterChange(info, c.FilterKey, c.State.Filters[c.FilterKey])
		}
	case state.ChangeSearch:
		if t.cb.OnSearch != nil {
			t.cb.OnSearch(info, c.State.SearchKey, c.State.SearchText)
		}
	}
}

// registerBuiltins installs the driver-independent built-in components.
// Built-ins lose to custom components of the same name.
func registerBuiltins(reg *registry.Registry) {
	reg.RegisterBuiltin(schema.DefaultComponent, func(ctx registry.CellContext) driver.Unit {
		return ctx.Driver.Text(datapath.Stringify(ctx.Value))
	})
	reg.RegisterBuiltin("icon", func(ctx registry.CellContext) driver.Unit {
		return ctx.Driver.Icon(datapath.Stringify(ctx.Value))
	})
	reg.RegisterBuiltin("html", func(ctx registry.CellContext) driver.Unit {
		return ctx.Driver.Raw(datapath.Stringify(ctx.Value))
	})
}

// rowKeyOf resolves a record's row key. Records lacking the row-key field
// fall back to a positional key so they stay addressable.
func (t *Table) rowKeyOf(row map[string]interface{}, index int) string {
	if v, ok := datapath.Get(row, t.doc.RowKey); ok {
		return datapath.Stringify(v)
	}
	return fmt.Sprintf("#%d", index)
}

// rowByKey finds a record by its resolved row key.
func (t *Table) rowByKey(rowKey string) (map[string]interface{}, bool) {
	for i, row := range t.data {
		if t.rowKeyOf(row, i) == rowKey {
			return row, true
		}
	}
	return nil, false
}
