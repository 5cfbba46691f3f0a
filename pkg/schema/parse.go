package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a schema document from JSON or YAML, auto-detected from the
// first non-whitespace byte. The returned document is raw: call Validate to
// normalize it before handing it to the engine.
func Parse(data []byte) (*Document, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty schema document")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseJSON decodes a schema document from JSON.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}
	return &doc, nil
}

// ParseYAML decodes a schema document from YAML.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema YAML: %w", err)
	}
	return &doc, nil
}

// FromValue decodes a schema document from an already-unmarshalled value,
// typically a map produced by navigating into a parent row (schemaFrom).
// It round-trips through JSON so the same decoding rules apply.
func FromValue(v interface{}) (*Document, error) {
	if doc, ok := v.(*Document); ok {
		return doc, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schema value is not JSON-compatible: %w", err)
	}
	return ParseJSON(raw)
}
