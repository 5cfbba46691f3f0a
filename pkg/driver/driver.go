// Package driver defines the capability contract a host supplies to the
// engine: a set of primitive renderable units (button, dropdown, menu,
// select, input, layout primitives) and icon units. The engine never renders
// raw markup for these primitives, it only composes driver-supplied units.
//
// Units are opaque to the engine. A terminal driver produces styled strings,
// a DOM driver would produce element handles; the engine treats both the
// same way and hands the finished tree back to the host for output.
package driver

// Unit is one opaque renderable produced by a Driver or by a registered
// component. The concrete type is driver-specific.
type Unit = interface{}

// Option is one entry in a select or menu.
type Option struct {
	Label string
	Value interface{}
}

// MenuItem is one checkable entry in a dropdown menu.
type MenuItem struct {
	Label   string
	Value   interface{}
	Checked bool
}

// ButtonSpec describes a button unit.
type ButtonSpec struct {
	Label    string
	Icon     string
	Disabled bool
}

// InputSpec describes a single-line text input unit.
type InputSpec struct {
	Value       string
	Placeholder string
}

// SelectSpec describes a single-choice select unit.
type SelectSpec struct {
	Options     []Option
	Value       interface{}
	Placeholder string
}

// MenuSpec describes a dropdown menu of checkable items.
type MenuSpec struct {
	Label string
	Items []MenuItem
}

// CellSpec describes a layout cell wrapping other units.
type CellSpec struct {
	// Span is the stringified schema span: grid units ("4"), the "auto"
	// sentinel, or a literal size ("200px").
	Span string

	// Align is "left", "center", or "right".
	Align string

	// Class and Style are schema styling hooks passed through verbatim.
	Class string
	Style map[string]string
}

// Driver is the pluggable supplier of primitive UI building blocks. One
// Driver is supplied per root table instance and threaded down through every
// recursive subtable invocation; two independent table instances may use
// different drivers without interfering.
type Driver interface {
	// Name identifies the driver for logging and diagnostics.
	Name() string

	// Text renders plain text.
	Text(s string) Unit

	// Raw renders trusted markup verbatim. No sanitization is performed;
	// sanitization, if required, is the schema author's responsibility.
	Raw(markup string) Unit

	// Icon renders a named icon, or a neutral placeholder for unknown
	// names.
	Icon(name string) Unit

	// Error renders a visible inline error marker with the given message.
	Error(message string) Unit

	Button(spec ButtonSpec) Unit
	Input(spec InputSpec) Unit
	Select(spec SelectSpec) Unit
	Menu(spec MenuSpec) Unit

	// Cell wraps units in a layout cell with span and alignment.
	Cell(spec CellSpec, units ...Unit) Unit

	// Row lays units out horizontally, left to right.
	Row(units ...Unit) Unit
}
