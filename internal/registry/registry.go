// Package registry maps schema component and slot identifiers to concrete
// renderable-unit factories. It is the engine's one open extension point:
// everywhere else renderable kinds are closed tagged variants, but here
// consumers register factories by name.
//
// Resolution order is fixed: an exact identifier match in the custom
// registry beats a driver built-in of the same name; a slot resolves to its
// identifier-specific function, else the configured default slot function,
// else an inline error element naming the missing identifier. There are no
// silent blank cells.
package registry

import (
	"github.com/oakwood-commons/gridkit/pkg/driver"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// CellContext carries everything a component factory needs to render one
// cell. Contexts are constructed per cell and are read-only.
type CellContext struct {
	Driver driver.Driver
	Schema *schema.Document
	Column *schema.Column

	// Row is the full record the cell belongs to; Value is the resolved
	// data-index value (or the column default).
	Row    map[string]interface{}
	RowKey string
	Value  interface{}

	// Emit raises a custom-component event that the engine forwards to
	// the host's catch-all OnEvent callback. May be nil in tests.
	Emit func(name string, payload interface{})
}

// SlotContext carries everything a slot renderer needs. Slots are the
// designated extension point for arbitrary consumer-defined toolbar widgets.
type SlotContext struct {
	Driver driver.Driver
	Schema *schema.Document
	Data   []map[string]interface{}

	// Props is the free-form properties bag from the schema element.
	Props map[string]interface{}

	// OnSearch is a bound search trigger so slot widgets can drive the
	// same search pipeline as the built-in search element.
	OnSearch func(key interface{}, text string)
}

// Component builds the renderable unit for one cell.
type Component func(CellContext) driver.Unit

// Slot builds the renderable unit for one toolbar slot element.
type Slot func(SlotContext) driver.Unit

// Registry holds the available renderable-unit factories: driver-supplied
// built-ins, user-registered custom components, and user-registered slot
// functions. A Registry is scoped configuration passed into the root table
// instance and threaded down through every recursive subtable invocation;
// it is never ambient global state.
type Registry struct {
	builtins    map[string]Component
	components  map[string]Component
	slots       map[string]Slot
	defaultSlot Slot
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		builtins:   make(map[string]Component),
		components: make(map[string]Component),
		slots:      make(map[string]Slot),
	}
}

// RegisterBuiltin registers a driver-supplied built-in component. Built-ins
// lose to custom components of the same name.
func (r *Registry) RegisterBuiltin(name string, c Component) {
	r.builtins[name] = c
}

// RegisterComponent registers a user-supplied custom component. It shadows
// any built-in with the same name.
func (r *Registry) RegisterComponent(name string, c Component) {
	r.components[name] = c
}

// RegisterSlot registers a slot renderer for an identifier.
func (r *Registry) RegisterSlot(name string, s Slot) {
	r.slots[name] = s
}

// SetDefaultSlot configures the fallback used when no identifier-specific
// slot function exists.
func (r *Registry) SetDefaultSlot(s Slot) {
	r.defaultSlot = s
}

// lookupComponent applies the component resolution order.
func (r *Registry) lookupComponent(name string) (Component, bool) {
	if c, ok := r.components[name]; ok {
		return c, true
	}
	if c, ok := r.builtins[name]; ok {
		return c, true
	}
	return nil, false
}

// lookupSlot applies the slot resolution order.
func (r *Registry) lookupSlot(name string) (Slot, bool) {
	if s, ok := r.slots[name]; ok {
		return s, true
	}
	if r.defaultSlot != nil {
		return r.defaultSlot, true
	}
	return nil, false
}
