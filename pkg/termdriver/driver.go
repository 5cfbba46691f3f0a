// Package termdriver renders engine output to a terminal. It supplies the
// primitive-unit driver for terminal hosts and a tree renderer that lays a
// render tree out as a fixed-width text table.
//
// Units produced here are plain strings; color is applied at layout time so
// width measurement and truncation operate on unstyled text.
package termdriver

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/gridkit/pkg/driver"
)

// icon glyphs for the names the engine asks for. Unknown names fall back to
// a neutral placeholder.
var icons = map[string]string{
	"expand":   "▸",
	"collapse": "▾",
	"search":   "»",
	"check":    "✓",
	"cross":    "✗",
}

// TermDriver produces terminal renderable units.
type TermDriver struct{}

// New creates a terminal driver.
func New() *TermDriver {
	return &TermDriver{}
}

func (d *TermDriver) Name() string { return "term" }

func (d *TermDriver) Text(s string) driver.Unit { return s }

// Raw passes markup through untouched. On a terminal "trusted markup" means
// pre-styled ANSI text.
func (d *TermDriver) Raw(markup string) driver.Unit { return markup }

func (d *TermDriver) Icon(name string) driver.Unit {
	if g, ok := icons[name]; ok {
		return g
	}
	return "·"
}

func (d *TermDriver) Error(message string) driver.Unit {
	return "✗ " + message
}

func (d *TermDriver) Button(spec driver.ButtonSpec) driver.Unit {
	label := spec.Label
	if spec.Icon != "" {
		label = fmt.Sprint(d.Icon(spec.Icon)) + " " + label
	}
	if spec.Disabled {
		return "( " + label + " )"
	}
	return "[ " + label + " ]"
}

func (d *TermDriver) Input(spec driver.InputSpec) driver.Unit {
	text := spec.Value
	if text == "" {
		text = spec.Placeholder
	}
	return "▏" + text
}

func (d *TermDriver) Select(spec driver.SelectSpec) driver.Unit {
	label := spec.Placeholder
	for _, opt := range spec.Options {
		if opt.Value == spec.Value {
			label = opt.Label
			break
		}
	}
	if label == "" {
		label = "…"
	}
	return label + " ▾"
}

func (d *TermDriver) Menu(spec driver.MenuSpec) driver.Unit {
	var b strings.Builder
	b.WriteString(spec.Label + " ▾")
	for _, item := range spec.Items {
		mark := "☐"
		if item.Checked {
			mark = "☑"
		}
		b.WriteString(fmt.Sprintf("  %s %s", mark, item.Label))
	}
	return b.String()
}

func (d *TermDriver) Cell(spec driver.CellSpec, units ...driver.Unit) driver.Unit {
	return joinUnits(units, " ")
}

func (d *TermDriver) Row(units ...driver.Unit) driver.Unit {
	return joinUnits(units, "  ")
}

// joinUnits flattens opaque units back to text. Non-string units (from
// foreign components) are formatted with their default representation.
func joinUnits(units []driver.Unit, sep string) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		if u == nil {
			continue
		}
		parts = append(parts, unitText(u))
	}
	return strings.Join(parts, sep)
}

func unitText(u driver.Unit) string {
	if u == nil {
		return ""
	}
	if s, ok := u.(string); ok {
		return s
	}
	return fmt.Sprint(u)
}
