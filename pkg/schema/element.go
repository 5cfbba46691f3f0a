package schema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Toolbar element types. Element is a closed tagged-variant set; unknown
// types are degraded during validation, not rejected.
const (
	ElementSpacer   = "spacer"
	ElementText     = "text"
	ElementHTML     = "html"
	ElementSearch   = "search"
	ElementSlot     = "slot"
	ElementInsert   = "insert"
	ElementSelector = "selector"
)

// Element is one generic render element in the toolbar region. Elements are
// rendered left to right in array order; an invisible element produces no
// output but keeps its index-based key so reordering stays stable.
type Element struct {
	// Type selects the variant: spacer, text, html, search, slot, insert,
	// or selector.
	Type string `json:"type" yaml:"type"`

	// Span controls the horizontal size: numeric grid units, the "auto"
	// flex sentinel, or a literal size string.
	Span Span `json:"span,omitempty" yaml:"span,omitempty"`

	// Align is one of "left", "center", "right". Invalid values are
	// normalized to "left".
	Align string `json:"align,omitempty" yaml:"align,omitempty"`

	// Visible toggles the element. Nil defaults to true.
	Visible *bool `json:"visible,omitempty" yaml:"visible,omitempty"`

	// Class and Style are styling hooks passed through to the driver.
	Class string            `json:"class,omitempty" yaml:"class,omitempty"`
	Style map[string]string `json:"style,omitempty" yaml:"style,omitempty"`

	// Text carries the content for text and html variants. The html
	// variant is rendered as trusted markup; the engine performs no
	// sanitization.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Slot identifies the user-registered renderer for the slot variant.
	Slot string `json:"slot,omitempty" yaml:"slot,omitempty"`

	// Props is the free-form properties bag handed to a slot renderer.
	Props map[string]interface{} `json:"props,omitempty" yaml:"props,omitempty"`

	// SearchKeys lists the selectable search keys for the search variant.
	SearchKeys []SearchKey `json:"searchKeys,omitempty" yaml:"searchKeys,omitempty"`

	// DefaultSearchKey preselects a search key value. Nil leaves the key
	// unset until the user picks one.
	DefaultSearchKey interface{} `json:"defaultSearchKey,omitempty" yaml:"defaultSearchKey,omitempty"`

	// Placeholder is the search input placeholder text.
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	// ButtonText labels the insert button or the selector trigger.
	// Defaults are filled during normalization.
	ButtonText string `json:"buttonText,omitempty" yaml:"buttonText,omitempty"`

	// Invalid carries the validation failure for a degraded element, set
	// by Validate and never serialized. Degraded elements render as
	// inline error markers.
	Invalid string `json:"-" yaml:"-"`
}

// SearchKey is one selectable key for the search element.
type SearchKey struct {
	Label string      `json:"label" yaml:"label"`
	Value interface{} `json:"value" yaml:"value"`
}

// SpanAuto is the flex sentinel: the element takes the remaining space.
const SpanAuto = "auto"

// Span is an element's horizontal size: a number of grid units, the "auto"
// sentinel, or a literal size string (e.g. "200px"). The zero Span means
// auto.
type Span struct {
	// Units is the grid-unit count when the span was given as a number.
	Units int

	// Literal is the raw size string when the span was given as a
	// non-"auto" string.
	Literal string
}

// IsAuto reports whether the span is the flex-auto sentinel.
func (s Span) IsAuto() bool {
	return s.Units == 0 && s.Literal == ""
}

// String renders the span back to its schema form.
func (s Span) String() string {
	if s.Literal != "" {
		return s.Literal
	}
	if s.Units > 0 {
		return strconv.Itoa(s.Units)
	}
	return SpanAuto
}

// MarshalJSON writes the span as a number, "auto", or a literal string.
func (s Span) MarshalJSON() ([]byte, error) {
	if s.Literal != "" {
		return json.Marshal(s.Literal)
	}
	if s.Units > 0 {
		return json.Marshal(s.Units)
	}
	return json.Marshal(SpanAuto)
}

// UnmarshalJSON accepts a number, "auto", or a literal size string.
func (s *Span) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return s.setUnits(n)
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("span must be a number or string: %s", data)
	}
	s.setString(str)
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML documents.
func (s Span) MarshalYAML() (interface{}, error) {
	if s.Literal != "" {
		return s.Literal, nil
	}
	if s.Units > 0 {
		return s.Units, nil
	}
	return SpanAuto, nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (s *Span) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		return s.setUnits(n)
	}
	var str string
	if err := node.Decode(&str); err != nil {
		return fmt.Errorf("span must be a number or string")
	}
	s.setString(str)
	return nil
}

func (s *Span) setUnits(n int) error {
	if n < 0 {
		n = 0
	}
	s.Units = n
	s.Literal = ""
	return nil
}

func (s *Span) setString(str string) {
	if str == SpanAuto || str == "" {
		s.Units = 0
		s.Literal = ""
		return
	}
	if n, err := strconv.Atoi(str); err == nil {
		_ = s.setUnits(n)
		return
	}
	s.Units = 0
	s.Literal = str
}
