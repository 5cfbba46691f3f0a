// Package toolbar composes the generic render-element region above the table
// grid. Elements are rendered left to right in array order; every element
// node keeps its array-index key even when neighbours are invisible, so
// toggling visibility never shifts identities.
package toolbar

import (
	"fmt"

	"github.com/oakwood-commons/gridkit/internal/registry"
	"github.com/oakwood-commons/gridkit/internal/state"
	"github.com/oakwood-commons/gridkit/pkg/driver"
	"github.com/oakwood-commons/gridkit/pkg/render"
	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// SearchDraft is the uncommitted input of one search element. Typing and key
// selection only mutate the draft; the active search parameters change on
// submit alone.
type SearchDraft struct {
	Key  interface{}
	Text string
}

// Config assembles one toolbar composition.
type Config struct {
	Doc    *schema.Document
	Driver driver.Driver
	Pass   *registry.Pass
	State  state.State

	// Data is the full (unpaged) data source, handed to slot renderers.
	Data []map[string]interface{}

	// Drafts holds per-element uncommitted search input, keyed by the
	// element's toolbar index.
	Drafts map[int]SearchDraft

	// TableKey prefixes every node key with the owning table's identity.
	TableKey string

	// OnSearch is the bound search trigger passed to slot renderers.
	OnSearch func(key interface{}, text string)
}

// Compose builds the toolbar subtree, or nil when the schema declares no
// toolbar elements.
func Compose(cfg Config) *render.Node {
	if cfg.Doc == nil || len(cfg.Doc.Toolbar) == 0 {
		return nil
	}
	bar := render.NewNode(render.KindToolbar, cfg.TableKey+"/toolbar")
	for i := range cfg.Doc.Toolbar {
		if n := composeElement(cfg, i, &cfg.Doc.Toolbar[i]); n != nil {
			bar.Append(n)
		}
	}
	return bar
}

func composeElement(cfg Config, idx int, el *schema.Element) *render.Node {
	key := fmt.Sprintf("%s/toolbar/%d", cfg.TableKey, idx)

	if el.Invalid != "" {
		n := render.NewError(key, el.Invalid)
		n.Unit = cfg.Driver.Error(el.Invalid)
		return n
	}
	if el.Visible != nil && !*el.Visible {
		return nil
	}

	n := render.NewNode(render.KindElement, key)
	n.Set("type", el.Type)
	n.Set("span", el.Span.String())
	n.Set("align", el.Align)
	if el.Class != "" {
		n.Set("class", el.Class)
	}
	if len(el.Style) > 0 {
		n.Set("style", el.Style)
	}

	switch el.Type {
	case schema.ElementSpacer:
		// Layout only; span and align carry all the information.

	case schema.ElementText:
		n.Unit = cfg.Driver.Text(el.Text)

	case schema.ElementHTML:
		n.Unit = cfg.Driver.Raw(el.Text)

	case schema.ElementSearch:
		composeSearch(cfg, idx, el, n)

	case schema.ElementSlot:
		slot, ok := cfg.Pass.Slot(el.Slot)
		if !ok {
			msg := fmt.Sprintf("no renderer registered for slot %q", el.Slot)
			e := render.NewError(key, msg)
			e.Unit = cfg.Driver.Error(msg)
			return e
		}
		n.Set("slot", el.Slot)
		n.Unit = slot(registry.SlotContext{
			Driver:   cfg.Driver,
			Schema:   cfg.Doc,
			Data:     cfg.Data,
			Props:    el.Props,
			OnSearch: cfg.OnSearch,
		})

	case schema.ElementInsert:
		n.Unit = cfg.Driver.Button(driver.ButtonSpec{Label: el.ButtonText})
		n.Intent = render.NewIntent(render.OpInsert)

	case schema.ElementSelector:
		return composeSelector(cfg, el, n)
	}
	return n
}

// composeSearch builds the search element's key selector, input, and submit
// button as child nodes so a host can wire each piece independently.
func composeSearch(cfg Config, idx int, el *schema.Element, n *render.Node) {
	draft := cfg.Drafts[idx]

	if len(el.SearchKeys) > 0 {
		opts := make([]driver.Option, len(el.SearchKeys))
		for i, sk := range el.SearchKeys {
			opts[i] = driver.Option{Label: sk.Label, Value: sk.Value}
		}
		sel := render.NewNode(render.KindElement, n.Key+"/key")
		sel.Set("type", "search-key")
		sel.Unit = cfg.Driver.Select(driver.SelectSpec{
			Options: opts,
			Value:   draft.Key,
		})
		sel.Intent = render.NewIntent(render.OpSetSearchKey, "element", idx)
		n.Append(sel)
	}

	input := render.NewNode(render.KindElement, n.Key+"/input")
	input.Set("type", "search-input")
	input.Unit = cfg.Driver.Input(driver.InputSpec{
		Value:       draft.Text,
		Placeholder: el.Placeholder,
	})
	input.Intent = render.NewIntent(render.OpSetSearchText, "element", idx)
	n.Append(input)

	submit := render.NewNode(render.KindElement, n.Key+"/submit")
	submit.Set("type", "search-submit")
	submit.Unit = cfg.Driver.Button(driver.ButtonSpec{Label: schema.DefaultSearchLabel, Icon: "search"})
	submit.Intent = render.NewIntent(render.OpSubmitSearch, "element", idx)
	n.Append(submit)
}

// composeSelector builds the column-visibility dropdown. With no hidable
// columns the element renders nothing at all, not an empty dropdown.
func composeSelector(cfg Config, el *schema.Element, n *render.Node) *render.Node {
	hidable := cfg.Doc.HidableColumns()
	if len(hidable) == 0 {
		return nil
	}
	items := make([]driver.MenuItem, len(hidable))
	for i, col := range hidable {
		items[i] = driver.MenuItem{
			Label:   col.Title,
			Value:   col.Key,
			Checked: cfg.State.IsDisplayed(col.Key),
		}
		item := render.NewNode(render.KindElement, n.Key+"/"+col.Key)
		item.Set("type", "selector-item")
		item.Set("checked", items[i].Checked)
		item.Intent = render.NewIntent(render.OpToggleColumn, "key", col.Key)
		n.Append(item)
	}
	n.Unit = cfg.Driver.Menu(driver.MenuSpec{Label: el.ButtonText, Items: items})
	return n
}
