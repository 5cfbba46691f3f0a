// Package termui hosts an engine table in an interactive Bubble Tea session.
// The model owns a cursor over the visible rows and translates key presses
// into engine intents; all table semantics stay in the engine.
package termui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridkit/pkg/engine"
	"github.com/oakwood-commons/gridkit/pkg/render"
	"github.com/oakwood-commons/gridkit/pkg/schema"
	"github.com/oakwood-commons/gridkit/pkg/termdriver"
)

// Options configures the interactive session.
type Options struct {
	NoColor bool
	Theme   termdriver.Theme

	// Width/Height of 0 auto-detect from the first window-size message.
	Width  int
	Height int
}

// Model is the Bubble Tea model wrapping one root table.
type Model struct {
	table *engine.Table
	opts  Options

	search    textinput.Model
	searching bool
	searchEl  int

	cursor int
	width  int
	status string
}

// NewModel assembles the host model.
func NewModel(table *engine.Table, opts Options) *Model {
	si := textinput.New()
	si.Placeholder = "search"
	si.CharLimit = 256

	return &Model{
		table:    table,
		opts:     opts,
		search:   si,
		searchEl: searchElementIndex(table.Schema()),
		width:    opts.Width,
	}
}

// Run starts the interactive program and blocks until quit.
func Run(table *engine.Table, opts Options, progOpts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(NewModel(table, opts), progOpts...).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.opts.Width <= 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.searching {
		switch key {
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			m.dispatch(render.NewIntent(render.OpSetSearchText,
				"element", m.searchEl, "text", m.search.Value()))
			m.dispatch(render.NewIntent(render.OpSubmitSearch, "element", m.searchEl))
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rowKeys())-1 {
			m.cursor++
		}

	case "left", "h":
		st := m.table.State()
		if st.Page > 1 {
			m.dispatch(render.NewIntent(render.OpSetPage, "page", st.Page-1))
			m.cursor = 0
		}

	case "right", "l":
		m.dispatch(render.NewIntent(render.OpSetPage, "page", m.table.State().Page+1))
		m.cursor = 0

	case "space", " ":
		if rk, ok := m.cursorRow(); ok {
			m.dispatch(render.NewIntent(render.OpToggleSelect, "rowKey", rk))
		}

	case "enter":
		m.toggleExpand()

	case "/":
		if m.searchEl >= 0 {
			m.searching = true
			m.search.Focus()
			return m, textinput.Blink
		}

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.toggleColumn(int(key[0] - '1'))
	}
	return m, nil
}

// toggleExpand flips the cursor row between expanded and collapsed.
func (m *Model) toggleExpand() {
	rk, ok := m.cursorRow()
	if !ok {
		return
	}
	tree := m.table.Render()
	node := tree.FindByKey(tree.Key + "/" + rk + "/subtable")
	op := render.OpExpandRow
	if node != nil {
		op = render.OpCollapseRow
	}
	m.dispatch(render.NewIntent(op, "rowKey", rk))
}

// toggleColumn flips the nth hidable column.
func (m *Model) toggleColumn(n int) {
	hidable := m.table.Schema().HidableColumns()
	if n < 0 || n >= len(hidable) {
		return
	}
	m.dispatch(render.NewIntent(render.OpToggleColumn, "key", hidable[n].Key))
}

func (m *Model) dispatch(in *render.Intent) {
	if err := m.table.Dispatch(*in); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// rowKeys lists the visible rows on the current page, in render order.
func (m *Model) rowKeys() []string {
	var keys []string
	for _, rn := range m.table.Render().FindAll(render.KindRow) {
		if rk := rn.StringProp("rowKey"); rk != "" {
			keys = append(keys, rk)
		}
	}
	return keys
}

func (m *Model) cursorRow() (string, bool) {
	keys := m.rowKeys()
	if len(keys) == 0 {
		return "", false
	}
	if m.cursor >= len(keys) {
		m.cursor = len(keys) - 1
	}
	return keys[m.cursor], true
}

func (m *Model) View() tea.View {
	width := m.width
	if width <= 0 {
		width = 120
	}

	var b strings.Builder
	b.WriteString(termdriver.RenderTable(m.table.Render(), termdriver.Options{
		Width:   width,
		NoColor: m.opts.NoColor,
		Theme:   m.opts.Theme,
	}))

	if m.searching {
		b.WriteString("/" + m.search.View() + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(m.helpLine())

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m *Model) helpLine() string {
	parts := []string{"↑/↓ move", "←/→ page", "space select", "enter expand"}
	if m.searchEl >= 0 {
		parts = append(parts, "/ search")
	}
	if len(m.table.Schema().HidableColumns()) > 0 {
		parts = append(parts, "1-9 columns")
	}
	parts = append(parts, "q quit")
	if rk, ok := m.cursorRow(); ok {
		parts = append(parts, fmt.Sprintf("row %s", rk))
	}
	return strings.Join(parts, " · ")
}

// searchElementIndex returns the toolbar index of the first search element,
// or -1.
func searchElementIndex(doc *schema.Document) int {
	for i, el := range doc.Toolbar {
		if el.Invalid == "" && el.Type == schema.ElementSearch {
			return i
		}
	}
	return -1
}
