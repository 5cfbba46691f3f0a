// Package schema defines the declarative table schema document and its
// validation and normalization rules. A Document describes one table's
// structure and behavior: columns, header/footer, pagination, selection,
// toolbar elements, and an optional nested-subtable rule. Documents are
// JSON-compatible and round-trip losslessly through external authoring tools.
package schema

// Document is the authoritative description of one table.
type Document struct {
	// ID identifies the table instance. It is included in the TableInfo
	// projection passed to every callback so consumers can disambiguate
	// events originating from nested subtables.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Class and Style are styling hooks passed through to the driver.
	// The engine never interprets them.
	Class string            `json:"class,omitempty" yaml:"class,omitempty"`
	Style map[string]string `json:"style,omitempty" yaml:"style,omitempty"`

	// Columns is the ordered column set. At least one structurally valid
	// column is required; an empty or missing columns array is fatal.
	Columns []Column `json:"columns" yaml:"columns"`

	// RowKey is the data-index path whose value must be unique per record
	// within this document's data source. Required.
	RowKey string `json:"rowKey" yaml:"rowKey"`

	// Header configures the header row. Nil means show with defaults.
	Header *Header `json:"header,omitempty" yaml:"header,omitempty"`

	// Footer configures an optional footer line below the body.
	Footer *Footer `json:"footer,omitempty" yaml:"footer,omitempty"`

	// Pagination enables paging. Nil disables it entirely.
	Pagination *Pagination `json:"pagination,omitempty" yaml:"pagination,omitempty"`

	// Selection enables row selection. Nil disables it.
	Selection *Selection `json:"selection,omitempty" yaml:"selection,omitempty"`

	// Ellipsis truncates overflowing cell content instead of wrapping.
	Ellipsis bool `json:"ellipsis,omitempty" yaml:"ellipsis,omitempty"`

	// VirtualScroll hints the host to window body rows. The engine only
	// carries the flag; windowing is a host concern.
	VirtualScroll bool `json:"virtualScroll,omitempty" yaml:"virtualScroll,omitempty"`

	// Toolbar is the ordered sequence of generic render elements composed
	// above the table, left to right.
	Toolbar []Element `json:"toolbar,omitempty" yaml:"toolbar,omitempty"`

	// Subtable declares that rows matching the rule own a nested,
	// independently-stated child table.
	Subtable *SubtableRule `json:"subtable,omitempty" yaml:"subtable,omitempty"`
}

// Header configures the table header row.
type Header struct {
	// Show toggles the header row. Nil defaults to true.
	Show *bool `json:"show,omitempty" yaml:"show,omitempty"`

	// Sticky pins the header during scroll (host-interpreted).
	Sticky bool `json:"sticky,omitempty" yaml:"sticky,omitempty"`
}

// Footer configures the table footer line.
type Footer struct {
	Show bool   `json:"show,omitempty" yaml:"show,omitempty"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Column defines one table column. Columns are created from the schema
// document at validation time; runtime state may toggle their visibility but
// never mutates the definition itself.
type Column struct {
	// Key uniquely identifies the column within the document.
	Key string `json:"key" yaml:"key"`

	// Title is the header text. Defaults to Key.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// DataIndex is the dotted path into a record that yields the cell
	// value (e.g. "user.name" or "tags[0]"). Defaults to Key.
	DataIndex string `json:"dataIndex,omitempty" yaml:"dataIndex,omitempty"`

	// Default is the cell value used when the record lacks the field.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Width caps the column width in host units. 0 means natural width.
	Width int `json:"width,omitempty" yaml:"width,omitempty"`

	// Align is one of "left", "center", "right". Invalid values are
	// normalized to "left".
	Align string `json:"align,omitempty" yaml:"align,omitempty"`

	// Component identifies the renderable unit for this column's cells,
	// resolved through the component registry. Defaults to "text".
	Component string `json:"component,omitempty" yaml:"component,omitempty"`

	// Options is the free-form payload passed to the component factory.
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`

	// Hidable marks the column as toggleable through the display-column
	// selector. Non-hidable columns never appear in the selector list.
	Hidable bool `json:"hidable,omitempty" yaml:"hidable,omitempty"`

	// Hidden makes the column default-hidden; it can still be toggled
	// visible at runtime when Hidable is set.
	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`

	// Filters defines the selectable filter entries for this column.
	Filters []Filter `json:"filters,omitempty" yaml:"filters,omitempty"`

	// FilteredValue is the default active filter value for this column.
	FilteredValue interface{} `json:"filteredValue,omitempty" yaml:"filteredValue,omitempty"`

	// Invalid carries the validation failure for a degraded column. It is
	// set by Validate, never serialized, and a non-empty value means the
	// column is excluded from state and rendered as an inert error marker.
	Invalid string `json:"-" yaml:"-"`
}

// Filter is one selectable filter entry for a column.
type Filter struct {
	Label string      `json:"label" yaml:"label"`
	Value interface{} `json:"value" yaml:"value"`

	// Expr is an optional CEL predicate evaluated against each record
	// (bound to "_") when this filter is active. When empty, the engine
	// falls back to equality between Value and the column's cell value.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Pagination configures paging. A nil Pagination on the document disables
// paging; all rows render in one page.
type Pagination struct {
	// PageSize is the number of rows per page. Values outside
	// [1, MaxPageSize] are clamped during normalization.
	PageSize int `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`

	// PageSizeOptions lists selectable page sizes. Non-positive entries
	// are dropped during normalization.
	PageSizeOptions []int `json:"pageSizeOptions,omitempty" yaml:"pageSizeOptions,omitempty"`

	// Simple requests a compact pager without page-size selection.
	Simple bool `json:"simple,omitempty" yaml:"simple,omitempty"`
}

// Selection modes.
const (
	SelectionSingle   = "single"
	SelectionMultiple = "multiple"
)

// Selection configures row selection.
type Selection struct {
	// Mode is "single" or "multiple". Invalid values normalize to
	// "multiple".
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Width is the selection column width in host units.
	Width int `json:"width,omitempty" yaml:"width,omitempty"`
}

// SubtableRule declares that rows own a nested table. The child table runs
// the full pipeline independently: its own schema, its own data slice, and
// its own state.
type SubtableRule struct {
	// When is an optional CEL predicate over the parent row (bound to
	// "_"). Rows where it evaluates to true are expandable. An empty
	// predicate makes every row expandable.
	When string `json:"when,omitempty" yaml:"when,omitempty"`

	// DataIndex is the path into the parent row that yields the child
	// data source. Ignored when the engine is configured with an external
	// accessor.
	DataIndex string `json:"dataIndex,omitempty" yaml:"dataIndex,omitempty"`

	// Schema is the static child schema document.
	Schema *Document `json:"schema,omitempty" yaml:"schema,omitempty"`

	// SchemaFrom is a path into the parent row that yields a child schema
	// document computed per row. Takes precedence over Schema when the
	// field is present on the row.
	SchemaFrom string `json:"schemaFrom,omitempty" yaml:"schemaFrom,omitempty"`

	// Preserve overrides the engine-level preserve-on-collapse policy for
	// this rule. Nil inherits the engine option.
	Preserve *bool `json:"preserve,omitempty" yaml:"preserve,omitempty"`
}
