// Package subtable manages the nested-table lifecycle for expandable rows.
// Each expanded row owns a fresh, independently-scoped rendering pipeline;
// the controller only decides which rows are expandable, derives the child
// schema and data, and owns the per-row instance arena so child state is
// discarded (or preserved) deterministically on collapse.
package subtable

import (
	"fmt"

	"github.com/oakwood-commons/gridkit/internal/datapath"
	"github.com/oakwood-commons/gridkit/internal/expr"
	"github.com/oakwood-commons/gridkit/pkg/render"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// Status is the per-row expansion state machine. Rows start collapsed;
// expanding constructs fresh child state, collapsing discards it unless
// preservation is configured.
type Status string

const (
	StatusCollapsed  Status = "collapsed"
	StatusExpanding  Status = "expanding"
	StatusExpanded   Status = "expanded"
	StatusCollapsing Status = "collapsing"
)

// Child is one nested rendering pipeline. The engine supplies the concrete
// implementation through the Factory; the controller never constructs
// tables itself, which keeps recursion an engine concern.
type Child interface {
	Render() *render.Node
	Dispatch(in render.Intent) error
}

// Factory builds a child pipeline for a validated child schema and data
// slice. depth is the child's nesting depth (root table is 0).
type Factory func(doc *schema.Document, rows []map[string]interface{}, depth int) (Child, error)

// Accessor supplies child rows externally instead of via the rule's
// data-index path.
type Accessor func(row map[string]interface{}) []map[string]interface{}

// Instance is one row's expansion record.
type Instance struct {
	Status Status
	Child  Child

	// Err is the inline failure to render in place of the child table
	// when derivation or validation failed. The row stays expandable.
	Err string
}

// Controller drives the subtable rule for one parent table instance. The
// arena is keyed by parent row key; nesting depth is implicit because every
// nesting level owns its own controller.
type Controller struct {
	rule     *schema.SubtableRule
	eval     *expr.Evaluator
	factory  Factory
	accessor Accessor
	depth    int
	preserve bool

	arena map[string]*Instance
}

// Config assembles a controller.
type Config struct {
	Rule     *schema.SubtableRule
	Eval     *expr.Evaluator
	Factory  Factory
	Accessor Accessor

	// Depth is the parent table's nesting depth; children are Depth+1.
	Depth int

	// Preserve keeps a collapsed row's child state alive, keyed by row
	// key, for the lifetime of the parent instance. The rule-level
	// preserve flag overrides this default.
	Preserve bool
}

// New creates a controller. Returns nil when the schema has no subtable
// rule; callers treat a nil controller as "no rows expandable".
func New(cfg Config) *Controller {
	if cfg.Rule == nil {
		return nil
	}
	preserve := cfg.Preserve
	if cfg.Rule.Preserve != nil {
		preserve = *cfg.Rule.Preserve
	}
	return &Controller{
		rule:     cfg.Rule,
		eval:     cfg.Eval,
		factory:  cfg.Factory,
		accessor: cfg.Accessor,
		depth:    cfg.Depth,
		preserve: preserve,
		arena:    make(map[string]*Instance),
	}
}

// Expandable reports whether a row matches the rule's predicate. A failing
// or non-boolean predicate makes the row non-expandable rather than
// degrading the render.
func (c *Controller) Expandable(row map[string]interface{}) bool {
	if c == nil {
		return false
	}
	if c.rule.When == "" || c.eval == nil {
		return c.rule.When == ""
	}
	ok, err := c.eval.EvalBool(c.rule.When, row)
	return err == nil && ok
}

// Get returns the instance for a row key, or nil when the row is collapsed
// with no preserved state.
func (c *Controller) Get(rowKey string) *Instance {
	if c == nil {
		return nil
	}
	return c.arena[rowKey]
}

// Expanded reports whether the row currently shows its child table.
func (c *Controller) Expanded(rowKey string) bool {
	inst := c.Get(rowKey)
	return inst != nil && inst.Status == StatusExpanded
}

// Expand transitions a row collapsed → expanded, constructing fresh child
// state. Re-expanding a preserved row restores exactly the state present at
// the moment of collapse. Derivation failures (missing data field, invalid
// child schema) produce an instance carrying an inline error instead of a
// child; the parent render is never aborted.
func (c *Controller) Expand(rowKey string, row map[string]interface{}) *Instance {
	if c == nil {
		return nil
	}
	if inst, ok := c.arena[rowKey]; ok {
		// Preserved from an earlier collapse, or already expanded.
		inst.Status = StatusExpanded
		return inst
	}

	inst := &Instance{Status: StatusExpanding}
	c.arena[rowKey] = inst

	doc, err := c.childSchema(row)
	if err == nil {
		var rows []map[string]interface{}
		rows, err = c.childRows(row)
		if err == nil {
			inst.Child, err = c.factory(doc, rows, c.depth+1)
		}
	}
	if err != nil {
		inst.Err = err.Error()
	}
	inst.Status = StatusExpanded
	return inst
}

// Collapse transitions a row expanded → collapsed. Child state is discarded
// entirely unless preservation is configured, in which case the instance
// stays in the arena keyed by row key.
func (c *Controller) Collapse(rowKey string) {
	if c == nil {
		return
	}
	inst, ok := c.arena[rowKey]
	if !ok {
		return
	}
	inst.Status = StatusCollapsing
	if c.preserve {
		inst.Status = StatusCollapsed
		return
	}
	delete(c.arena, rowKey)
}

// Reset discards every instance, preserved or not. Called when the parent's
// schema or data source changes identity.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.arena = make(map[string]*Instance)
}

// childSchema derives the child document: a per-row schemaFrom value wins
// over the rule's static schema. The derived document is validated here; a
// failing child schema becomes an inline error on the row, never a parent
// failure.
func (c *Controller) childSchema(row map[string]interface{}) (*schema.Document, error) {
	if c.rule.SchemaFrom != "" {
		if v, ok := datapath.Get(row, c.rule.SchemaFrom); ok {
			doc, err := schema.FromValue(v)
			if err != nil {
				return nil, fmt.Errorf("subtable schema at %q: %w", c.rule.SchemaFrom, err)
			}
			if _, err := schema.Validate(doc); err != nil {
				return nil, fmt.Errorf("subtable schema at %q: %w", c.rule.SchemaFrom, err)
			}
			return doc, nil
		}
		if c.rule.Schema == nil {
			return nil, fmt.Errorf("row has no subtable schema at %q", c.rule.SchemaFrom)
		}
	}
	if c.rule.Schema == nil {
		return nil, fmt.Errorf("subtable rule has no schema")
	}
	// The static schema is shared read-only across rows; validation is
	// idempotent, so re-validating here covers rules that were built
	// programmatically and never passed through the parent validator.
	if _, err := schema.Validate(c.rule.Schema); err != nil {
		return nil, err
	}
	return c.rule.Schema, nil
}

// childRows derives the child data source: the external accessor when
// configured, else the rule's data-index path into the parent row.
func (c *Controller) childRows(row map[string]interface{}) ([]map[string]interface{}, error) {
	if c.accessor != nil {
		return c.accessor(row), nil
	}
	if c.rule.DataIndex == "" {
		return nil, fmt.Errorf("subtable rule has neither a dataIndex nor an external accessor")
	}
	v, ok := datapath.Get(row, c.rule.DataIndex)
	if !ok {
		return nil, fmt.Errorf("row has no subtable data at %q", c.rule.DataIndex)
	}
	rows, ok := datapath.Records(v)
	if !ok {
		return nil, fmt.Errorf("subtable data at %q is not a record list", c.rule.DataIndex)
	}
	return rows, nil
}
