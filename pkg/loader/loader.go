// Package loader reads table data from files, strings, or already-parsed Go
// values. It auto-detects JSON, newline-delimited JSON, and YAML (single or
// multi-document), and normalizes everything to the record slice the engine
// consumes.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses input into records, auto-detecting the format:
//   - a JSON array of objects, or a single JSON object (one record)
//   - newline-delimited JSON, one object per line
//   - YAML: a sequence, a single mapping, or multiple documents
func Load(input string) ([]map[string]interface{}, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	var docs []interface{}
	var err error
	switch {
	case strings.HasPrefix(input, "---") || strings.Contains(input, "\n---"):
		docs, err = multiDocYAML(input)
	case looksLikeNDJSON(input):
		docs, err = ndjson(input)
	case strings.HasPrefix(input, "{") || strings.HasPrefix(input, "["):
		docs, err = single(input, func(s string, v *interface{}) error {
			return json.Unmarshal([]byte(s), v)
		}, "JSON")
	default:
		docs, err = single(input, func(s string, v *interface{}) error {
			return yaml.Unmarshal([]byte(s), v)
		}, "YAML")
	}
	if err != nil {
		return nil, err
	}
	return toRecords(docs)
}

// LoadFile reads and parses one file.
func LoadFile(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// FromValue normalizes an already-parsed Go value to records. Strings and
// byte slices go through format detection; structs and typed slices are
// converted through JSON so struct tags apply and expression evaluation sees
// plain maps.
func FromValue(value interface{}) ([]map[string]interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("nil input")
	case string:
		return Load(v)
	case []byte:
		return Load(string(v))
	case []map[string]interface{}:
		return v, nil
	}

	norm, err := normalize(value)
	if err != nil {
		return nil, err
	}
	return toRecords([]interface{}{norm})
}

// normalize converts arbitrary Go values to the JSON-compatible shapes the
// rest of the pipeline (including CEL evaluation) understands. Structs are
// round-tripped through JSON so their tags are honored.
func normalize(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Map:
		return rv.Interface(), nil
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			elem, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element [%d]: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	default:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T: %w", value, err)
		}
		var result interface{}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// toRecords flattens parsed documents into a record slice. A top-level array
// contributes its object elements; a top-level object contributes itself.
// Non-object elements are an error, not a silent drop.
func toRecords(docs []interface{}) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(docs))
	for i, doc := range docs {
		switch d := doc.(type) {
		case map[string]interface{}:
			out = append(out, d)
		case []interface{}:
			for j, el := range d {
				m, ok := el.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("document %d: element %d is not an object (%T)", i, j, el)
				}
				out = append(out, m)
			}
		default:
			return nil, fmt.Errorf("document %d is not an object or object list (%T)", i, doc)
		}
	}
	return out, nil
}

func single(input string, unmarshal func(string, *interface{}) error, format string) ([]interface{}, error) {
	var data interface{}
	if err := unmarshal(input, &data); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", format, err)
	}
	return []interface{}{data}, nil
}

// looksLikeNDJSON reports whether every non-empty line parses structurally
// like a JSON object. A single line never counts; that is plain JSON.
func looksLikeNDJSON(input string) bool {
	lines := strings.Split(input, "\n")
	if len(lines) < 2 {
		return false
	}
	seen := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			return false
		}
		seen++
	}
	return seen > 1
}

func ndjson(input string) ([]interface{}, error) {
	var out []interface{}
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("invalid NDJSON at line %d: %w", i+1, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func multiDocYAML(input string) ([]interface{}, error) {
	var out []interface{}
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc interface{}
		err := dec.Decode(&doc)
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			out = append(out, doc)
		}
	}
	return out, nil
}
