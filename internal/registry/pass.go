package registry

import (
	"encoding/json"
	"fmt"
)

// Pass memoizes resolutions within a single render pass. Resolving the same
// (identifier, options) pair twice in one pass hits the memo instead of the
// registry. A Pass must not outlive the render it was created for: schema or
// registration changes require a fresh pass.
type Pass struct {
	reg  *Registry
	memo map[string]componentResult
	slot map[string]slotResult

	// lookups counts registry (non-memo) component resolutions.
	lookups int
}

type componentResult struct {
	component Component
	found     bool
}

type slotResult struct {
	slot  Slot
	found bool
}

// NewPass starts a render pass against the registry.
func (r *Registry) NewPass() *Pass {
	return &Pass{
		reg:  r,
		memo: make(map[string]componentResult),
		slot: make(map[string]slotResult),
	}
}

// Component resolves a column component identifier, memoized per
// (identifier, options) pair. The second result reports whether a factory
// was found; a false result means the caller must render an inline error
// naming the identifier.
func (p *Pass) Component(name string, options map[string]interface{}) (Component, bool) {
	key := memoKey(name, options)
	if res, ok := p.memo[key]; ok {
		return res.component, res.found
	}
	p.lookups++
	c, ok := p.reg.lookupComponent(name)
	p.memo[key] = componentResult{component: c, found: ok}
	return c, ok
}

// Slot resolves a slot identifier, memoized per identifier.
func (p *Pass) Slot(name string) (Slot, bool) {
	if res, ok := p.slot[name]; ok {
		return res.slot, res.found
	}
	s, ok := p.reg.lookupSlot(name)
	p.slot[name] = slotResult{slot: s, found: ok}
	return s, ok
}

// Lookups reports how many resolutions went to the registry rather than the
// memo. Exposed for tests asserting the idempotence contract.
func (p *Pass) Lookups() int {
	return p.lookups
}

// memoKey fingerprints an (identifier, options) pair. JSON marshalling sorts
// map keys, so equal option sets produce equal keys regardless of insertion
// order.
func memoKey(name string, options map[string]interface{}) string {
	if len(options) == 0 {
		return name
	}
	raw, err := json.Marshal(options)
	if err != nil {
		// Unmarshalable options still resolve, they just skip sharing a
		// memo entry with anything else.
		return fmt.Sprintf("%s\x00%p", name, options)
	}
	return name + "\x00" + string(raw)
}
