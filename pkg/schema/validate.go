package schema

import (
	"fmt"
	"strings"
)

// Normalization bounds and defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 500

	DefaultComponent     = "text"
	DefaultInsertText    = "Insert"
	DefaultSelectorText  = "Columns"
	DefaultSearchLabel   = "Search"
	DefaultAlign         = "left"
	DefaultSelectionMode = SelectionMultiple
)

// Issue describes one validation problem at a specific path inside a schema
// document (e.g. "columns[2].key").
type Issue struct {
	Path   string
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Reason)
}

// FatalError is returned when a structurally required field is missing and
// no table can be rendered at all. It enumerates every fatal issue found.
type FatalError struct {
	Issues []Issue
}

func (e *FatalError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.String()
	}
	return "invalid schema: " + strings.Join(parts, "; ")
}

// Rule is an external validation rule applied after structural validation.
// Rules inspect the normalized document and report additional issues, which
// degrade the named nodes the same way built-in issues do.
type Rule func(doc *Document) []Issue

// Result is the outcome of a successful (possibly degraded) validation.
type Result struct {
	// Doc is the normalized document. Degraded columns and elements stay
	// in place with their Invalid field set so they can render as inert
	// error markers.
	Doc *Document

	// Issues enumerates every non-fatal problem found, in document order.
	Issues []Issue
}

// Valid reports whether the document validated without degradation.
func (r *Result) Valid() bool {
	return len(r.Issues) == 0
}

// Validate checks a raw schema document, fills defaults, and clamps
// out-of-range values. It never panics on malformed input.
//
// Only two conditions are fatal: a missing or empty columns array, and a
// missing row-key accessor. Everything else degrades: the offending column
// or toolbar element is marked Invalid (rendered as a visible-but-inert
// error marker) and enumerated in Result.Issues.
//
// The document is normalized in place and also returned inside the Result.
func Validate(doc *Document, rules ...Rule) (*Result, error) {
	if doc == nil {
		return nil, &FatalError{Issues: []Issue{{Path: "$", Reason: "document is nil"}}}
	}

	var fatal []Issue
	if len(doc.Columns) == 0 {
		fatal = append(fatal, Issue{Path: "columns", Reason: "required: at least one column"})
	}
	if strings.TrimSpace(doc.RowKey) == "" {
		fatal = append(fatal, Issue{Path: "rowKey", Reason: "required: row-key accessor"})
	}
	if len(fatal) > 0 {
		return nil, &FatalError{Issues: fatal}
	}

	res := &Result{Doc: doc}
	normalizeColumns(doc, res)
	normalizePagination(doc, res)
	normalizeSelection(doc)
	normalizeToolbar(doc, res)
	normalizeSubtable(doc, res)

	for _, rule := range rules {
		if rule == nil {
			continue
		}
		res.Issues = append(res.Issues, rule(doc)...)
	}
	return res, nil
}

func normalizeColumns(doc *Document, res *Result) {
	seen := make(map[string]int, len(doc.Columns))
	for i := range doc.Columns {
		col := &doc.Columns[i]
		path := fmt.Sprintf("columns[%d]", i)

		if strings.TrimSpace(col.Key) == "" {
			col.Invalid = "missing key"
			res.Issues = append(res.Issues, Issue{Path: path + ".key", Reason: "missing key"})
			continue
		}
		if first, dup := seen[col.Key]; dup {
			col.Invalid = fmt.Sprintf("duplicate key %q (first declared at columns[%d])", col.Key, first)
			res.Issues = append(res.Issues, Issue{
				Path:   path + ".key",
				Reason: fmt.Sprintf("duplicate column key %q", col.Key),
			})
			continue
		}
		seen[col.Key] = i

		if col.Title == "" {
			col.Title = col.Key
		}
		if col.DataIndex == "" {
			col.DataIndex = col.Key
		}
		if col.Component == "" {
			col.Component = DefaultComponent
		}
		col.Align = normalizeAlign(col.Align)
		if col.Width < 0 {
			col.Width = 0
		}
	}
}

func normalizePagination(doc *Document, res *Result) {
	p := doc.Pagination
	if p == nil {
		return
	}
	switch {
	case p.PageSize == 0:
		p.PageSize = DefaultPageSize
	case p.PageSize < 1:
		p.PageSize = 1
	case p.PageSize > MaxPageSize:
		res.Issues = append(res.Issues, Issue{
			Path:   "pagination.pageSize",
			Reason: fmt.Sprintf("clamped from %d to %d", p.PageSize, MaxPageSize),
		})
		p.PageSize = MaxPageSize
	}
	opts := p.PageSizeOptions[:0]
	for _, n := range p.PageSizeOptions {
		if n > 0 && n <= MaxPageSize {
			opts = append(opts, n)
		}
	}
	p.PageSizeOptions = opts
}

func normalizeSelection(doc *Document) {
	s := doc.Selection
	if s == nil {
		return
	}
	switch s.Mode {
	case SelectionSingle, SelectionMultiple:
	default:
		s.Mode = DefaultSelectionMode
	}
	if s.Width < 0 {
		s.Width = 0
	}
}

func normalizeToolbar(doc *Document, res *Result) {
	for i := range doc.Toolbar {
		el := &doc.Toolbar[i]
		path := fmt.Sprintf("toolbar[%d]", i)

		switch el.Type {
		case ElementSpacer, ElementText, ElementHTML, ElementSearch, ElementInsert, ElementSelector:
		case ElementSlot:
			if strings.TrimSpace(el.Slot) == "" {
				el.Invalid = "slot element missing slot identifier"
				res.Issues = append(res.Issues, Issue{Path: path + ".slot", Reason: "missing slot identifier"})
				continue
			}
		case "":
			el.Invalid = "missing element type"
			res.Issues = append(res.Issues, Issue{Path: path + ".type", Reason: "missing element type"})
			continue
		default:
			el.Invalid = fmt.Sprintf("unknown element type %q", el.Type)
			res.Issues = append(res.Issues, Issue{Path: path + ".type", Reason: el.Invalid})
			continue
		}

		el.Align = normalizeAlign(el.Align)
		if el.ButtonText == "" {
			switch el.Type {
			case ElementInsert:
				el.ButtonText = DefaultInsertText
			case ElementSelector:
				el.ButtonText = DefaultSelectorText
			}
		}
		if el.Type == ElementSearch && el.Placeholder == "" {
			el.Placeholder = DefaultSearchLabel
		}
	}
}

// normalizeSubtable validates the child schema eagerly when it is static.
// A failing child schema is not fatal for the parent: rows stay expandable
// and the failure surfaces as an inline error where the child table would
// render.
func normalizeSubtable(doc *Document, res *Result) {
	rule := doc.Subtable
	if rule == nil {
		return
	}
	if rule.Schema == nil && rule.SchemaFrom == "" {
		res.Issues = append(res.Issues, Issue{
			Path:   "subtable.schema",
			Reason: "subtable rule has neither a static schema nor a schemaFrom path",
		})
		return
	}
	if rule.Schema != nil {
		child, err := Validate(rule.Schema)
		if err != nil {
			res.Issues = append(res.Issues, Issue{
				Path:   "subtable.schema",
				Reason: err.Error(),
			})
			return
		}
		for _, iss := range child.Issues {
			res.Issues = append(res.Issues, Issue{
				Path:   "subtable.schema." + iss.Path,
				Reason: iss.Reason,
			})
		}
	}
}

func normalizeAlign(align string) string {
	switch align {
	case "left", "center", "right":
		return align
	default:
		return DefaultAlign
	}
}

// ValidColumns returns the structurally valid columns in declaration order.
func (d *Document) ValidColumns() []Column {
	out := make([]Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Invalid == "" {
			out = append(out, c)
		}
	}
	return out
}

// ColumnByKey returns the first valid column with the given key.
func (d *Document) ColumnByKey(key string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Invalid == "" && d.Columns[i].Key == key {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// HidableColumns returns the valid columns marked hidable, in order.
func (d *Document) HidableColumns() []Column {
	out := make([]Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Invalid == "" && c.Hidable {
			out = append(out, c)
		}
	}
	return out
}

// DefaultDisplayColumns returns the keys of all valid columns that are not
// default-hidden, in declaration order. This seeds the runtime display set.
func (d *Document) DefaultDisplayColumns() []string {
	out := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Invalid == "" && !c.Hidden {
			out = append(out, c.Key)
		}
	}
	return out
}
