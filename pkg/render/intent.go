package render

// Intent operations understood by the engine's Dispatch entry point. These
// are the only state transitions the render tree can request; everything
// else is a host concern.
const (
	OpToggleColumn   = "toggle-column"    // args: key
	OpSetPage        = "set-page"         // args: page
	OpSetPageSize    = "set-page-size"    // args: pageSize
	OpToggleSelect   = "toggle-select"    // args: rowKey
	OpSetSelection   = "set-selection"    // args: rowKeys
	OpSetFilter      = "set-filter"       // args: key, value
	OpSetSearchText  = "set-search-text"  // args: element, text
	OpSetSearchKey   = "set-search-key"   // args: element, key
	OpSubmitSearch   = "submit-search"    // args: element
	OpInsert         = "insert"           // args: event (opaque)
	OpExpandRow      = "expand-row"       // args: rowKey
	OpCollapseRow    = "collapse-row"     // args: rowKey
	OpRowClick       = "row-click"        // args: rowKey
	OpRowDoubleClick = "row-double-click" // args: rowKey
	OpEvent          = "event"            // args: name, payload
)

// Intent is a state-transition request attached to an interactive node.
// Intents are data, not closures, so a render tree stays serializable and a
// host can route activation events without holding engine references.
type Intent struct {
	Op   string                 `json:"op"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// NewIntent builds an intent from alternating key/value argument pairs.
func NewIntent(op string, kv ...interface{}) *Intent {
	in := &Intent{Op: op}
	if len(kv) > 0 {
		in.Args = make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				in.Args[k] = kv[i+1]
			}
		}
	}
	return in
}

// StringArg returns a string argument, or "" when absent.
func (in *Intent) StringArg(key string) string {
	if in == nil || in.Args == nil {
		return ""
	}
	s, _ := in.Args[key].(string)
	return s
}

// IntArg returns an integer argument, accepting the numeric types JSON and
// YAML decoders produce.
func (in *Intent) IntArg(key string) (int, bool) {
	if in == nil || in.Args == nil {
		return 0, false
	}
	switch v := in.Args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
