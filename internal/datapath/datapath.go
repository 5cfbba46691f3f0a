// Package datapath resolves dotted data-index paths into records. Paths
// support dotted field names, bracket indices, and bracket-quoted keys:
//
//	profile.name
//	tags[0]
//	addresses[1]["postal-code"]
//	items.0.label  (numeric dotted segments normalize to [0])
//
// Resolution is read-only and never panics on missing or mismatched data.
package datapath

import (
	"regexp"
	"strconv"
	"strings"
)

// segment is one parsed step of a path.
type segment struct {
	field string
	index int
	isIdx bool
}

var dottedIndex = regexp.MustCompile(`\.(\d+)`)

// Normalize converts dotted numeric segments to bracket notation:
// "items.0.tags" -> "items[0].tags".
func Normalize(path string) string {
	if path == "" {
		return path
	}
	return dottedIndex.ReplaceAllString(path, "[$1]")
}

// parse splits a normalized path into segments. Malformed brackets end the
// parse at the malformed position; the caller then fails the lookup for the
// remaining path rather than guessing.
func parse(path string) ([]segment, bool) {
	path = Normalize(path)
	var segs []segment
	i := 0
	for i < len(path) {
		switch {
		case path[i] == '.':
			i++
		case path[i] == '[':
			end := strings.IndexByte(path[i:], ']')
			if end == -1 {
				return segs, false
			}
			body := path[i+1 : i+end]
			if strings.HasPrefix(body, `"`) && strings.HasSuffix(body, `"`) && len(body) >= 2 {
				segs = append(segs, segment{field: strings.Trim(body, `"`)})
			} else if n, err := strconv.Atoi(body); err == nil {
				segs = append(segs, segment{index: n, isIdx: true})
			} else {
				segs = append(segs, segment{field: body})
			}
			i += end + 1
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			if j > i {
				segs = append(segs, segment{field: path[i:j]})
			}
			i = j
		}
	}
	return segs, true
}

// Get resolves path against a record-like value. It returns the value and
// true on success, or nil and false when any step of the path is missing or
// the shapes do not match.
func Get(value interface{}, path string) (interface{}, bool) {
	if strings.TrimSpace(path) == "" {
		return nil, false
	}
	segs, ok := parse(path)
	if !ok || len(segs) == 0 {
		return nil, false
	}
	cur := value
	for _, seg := range segs {
		if seg.isIdx {
			arr, ok := toSlice(cur)
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
			continue
		}
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg.field]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString resolves path and renders the result as a display string.
// Missing paths return fallback.
func GetString(value interface{}, path, fallback string) string {
	v, ok := Get(value, path)
	if !ok || v == nil {
		return fallback
	}
	return Stringify(v)
}

// Stringify renders a value the way table cells display it: strings pass
// through, numbers drop the float artifacts JSON decoding introduces, and
// everything else uses the default Go formatting.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return defaultFormat(v)
	}
}

func toSlice(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// Records coerces a resolved value into a record slice. Elements that are
// not maps are skipped; a non-slice value yields (nil, false).
func Records(v interface{}) ([]map[string]interface{}, bool) {
	arr, ok := toSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]map[string]interface{}, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out, true
}
