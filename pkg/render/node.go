// Package render defines the engine's output: a tree of renderable nodes
// plus the state-transition intents attached to interactive nodes. The
// engine is a pure transform from (schema, data, state) to this tree; hosts
// walk the tree, hand leaf units back to their driver for output, and feed
// intents back through the engine's Dispatch entry point.
package render

// Kind tags a node in the render tree. The set is closed: every renderer
// switches over these kinds explicitly instead of dispatching on free-form
// strings.
type Kind string

const (
	KindTable      Kind = "table"
	KindToolbar    Kind = "toolbar"
	KindElement    Kind = "element"
	KindHeader     Kind = "header"
	KindHeaderCell Kind = "header-cell"
	KindBody       Kind = "body"
	KindRow        Kind = "row"
	KindCell       Kind = "cell"
	KindSubtable   Kind = "subtable"
	KindPagination Kind = "pagination"
	KindFooter     Kind = "footer"
	KindError      Kind = "error"
)

// Node is one unit of the render tree. Leaves usually carry a driver
// supplied Unit; interactive nodes carry an Intent the host can dispatch.
type Node struct {
	Kind Kind

	// Key is a stable identity for the node. Cell keys encode the full
	// nesting position (tableID/depth/rowKey/columnKey) so deeply nested,
	// dynamically-visible columns keep their identity across renders.
	Key string

	// Props carries presentation attributes (title, align, span, class,
	// style, error message...). Values are JSON-compatible.
	Props map[string]interface{}

	// Intent, when non-nil, is the state transition the host should
	// dispatch when the node is activated.
	Intent *Intent

	// Unit is the opaque renderable produced by the driver or a
	// registered component. The engine composes units without inspecting
	// them.
	Unit interface{}

	Children []*Node
}

// NewNode creates a node with the given kind and key.
func NewNode(kind Kind, key string) *Node {
	return &Node{Kind: kind, Key: key, Props: map[string]interface{}{}}
}

// NewError creates a visible-but-inert error marker node. Error nodes render
// inline at the exact location the failed node would have occupied so
// misconfiguration is discoverable without external tooling.
func NewError(key, message string) *Node {
	return &Node{
		Kind:  KindError,
		Key:   key,
		Props: map[string]interface{}{"message": message},
	}
}

// Set stores a prop and returns the node for chaining.
func (n *Node) Set(key string, value interface{}) *Node {
	if n.Props == nil {
		n.Props = map[string]interface{}{}
	}
	n.Props[key] = value
	return n
}

// Prop returns a prop value, or nil when absent.
func (n *Node) Prop(key string) interface{} {
	if n.Props == nil {
		return nil
	}
	return n.Props[key]
}

// StringProp returns a prop coerced to string, or "" when absent.
func (n *Node) StringProp(key string) string {
	s, _ := n.Prop(key).(string)
	return s
}

// Append adds children and returns the node for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Walk visits the node and all descendants depth-first. Returning false from
// fn stops descent below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindByKey returns the first node in the subtree with the given key.
func (n *Node) FindByKey(key string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Key == key {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node in the subtree with the given kind, in
// depth-first order.
func (n *Node) FindAll(kind Kind) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}
