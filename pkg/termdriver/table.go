package termdriver

import (
	"fmt"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridkit/pkg/render"
)

// Options configures tree rendering.
type Options struct {
	// Width is the total available width. 0 detects the terminal width.
	Width int

	// NoColor disables all styling.
	NoColor bool

	Theme Theme
}

const (
	sepWidth    = 2
	minColWidth = 3
	maxColWidth = 40
)

// RenderTable lays a render tree out as fixed-width terminal text. Nested
// subtables render indented below their parent row.
func RenderTable(root *render.Node, opts Options) string {
	if root == nil {
		return ""
	}
	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}
	r := &renderer{opts: opts, styles: compile(opts.Theme)}
	return r.table(root, width, 0)
}

type renderer struct {
	opts   Options
	styles styles
}

func (r *renderer) paint(st lipgloss.Style, s string) string {
	if r.opts.NoColor {
		return s
	}
	return st.Render(s)
}

func (r *renderer) table(root *render.Node, width, indent int) string {
	var b strings.Builder
	pad := strings.Repeat(" ", indent)

	if root.Prop("loading") == true {
		b.WriteString(pad + r.paint(r.styles.muted, "loading…") + "\n")
	}

	var head, body *render.Node
	for _, c := range root.Children {
		switch c.Kind {
		case render.KindToolbar:
			b.WriteString(pad + r.toolbarLine(c) + "\n")
		case render.KindHeader:
			head = c
		case render.KindBody:
			body = c
		case render.KindError:
			b.WriteString(pad + r.paint(r.styles.err, unitText(c.Unit)) + "\n")
		}
	}

	cols, rows := collect(head, body)
	widths := fitWidths(cols, rows, width-indent)

	if head != nil {
		b.WriteString(pad + r.headerLine(cols, widths) + "\n")
		total := 0
		for i, w := range widths {
			total += w
			if i < len(widths)-1 {
				total += sepWidth
			}
		}
		b.WriteString(pad + r.paint(r.styles.separator, strings.Repeat("─", total)) + "\n")
	}

	if body != nil {
		for _, c := range body.Children {
			switch c.Kind {
			case render.KindRow:
				b.WriteString(pad + r.rowLine(c, widths) + "\n")
			case render.KindSubtable:
				b.WriteString(r.subtable(c, width, indent+sepWidth))
			}
		}
	}

	for _, c := range root.Children {
		switch c.Kind {
		case render.KindPagination:
			b.WriteString(pad + r.pagerLine(c) + "\n")
		case render.KindFooter:
			b.WriteString(pad + r.footerLine(c) + "\n")
		}
	}
	return b.String()
}

func (r *renderer) toolbarLine(bar *render.Node) string {
	parts := make([]string, 0, len(bar.Children))
	for _, el := range bar.Children {
		text := r.elementText(el)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "  ")
}

// elementText flattens one toolbar element, including the search element's
// composite children.
func (r *renderer) elementText(el *render.Node) string {
	if el.Kind == render.KindError {
		return r.paint(r.styles.err, unitText(el.Unit))
	}
	if len(el.Children) > 0 {
		parts := make([]string, 0, len(el.Children))
		for _, c := range el.Children {
			if t := r.elementText(c); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, " ")
	}
	return unitText(el.Unit)
}

// collect flattens header cells and row cells into a column-major text grid.
// The engine emits row cells in header order, so position is identity.
func collect(head, body *render.Node) (cols []cellText, rows [][]cellText) {
	if head != nil {
		for _, c := range head.Children {
			cols = append(cols, cellText{
				text:  headerText(c),
				align: c.StringProp("align"),
				cap:   intProp(c, "width"),
				err:   c.Prop("error") != nil,
			})
		}
	}
	if body == nil {
		return cols, nil
	}
	for _, rn := range body.Children {
		if rn.Kind != render.KindRow {
			continue
		}
		row := make([]cellText, 0, len(rn.Children))
		for _, c := range rn.Children {
			ct := cellText{
				text:     unitText(c.Unit),
				align:    c.StringProp("align"),
				err:      c.Kind == render.KindError,
				selected: c.Prop("selected") == true,
			}
			row = append(row, ct)
		}
		rows = append(rows, row)
	}
	return cols, rows
}

type cellText struct {
	text     string
	align    string
	cap      int
	err      bool
	selected bool
}

func intProp(n *render.Node, key string) int {
	switch v := n.Prop(key).(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func headerText(c *render.Node) string {
	if t := c.StringProp("title"); t != "" {
		return t
	}
	if c.Prop("error") != nil {
		return unitText(c.Unit)
	}
	return ""
}

// fitWidths assigns column widths: natural width capped per column, then a
// proportional shrink when the total exceeds the available width.
func fitWidths(cols []cellText, rows [][]cellText, available int) []int {
	n := len(cols)
	if n == 0 {
		return nil
	}
	widths := make([]int, n)
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.text)
	}
	for _, row := range rows {
		for i, c := range row {
			if i >= n {
				break
			}
			if w := runewidth.StringWidth(c.text); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, c := range cols {
		if c.cap > 0 && widths[i] > c.cap {
			widths[i] = c.cap
		}
	}

	usable := available - (n-1)*sepWidth
	total := 0
	for _, w := range widths {
		total += w
	}
	if total <= usable || usable <= 0 {
		return widths
	}

	for i := range widths {
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	total = 0
	for _, w := range widths {
		total += w
	}
	if total <= usable {
		return widths
	}

	for i := range widths {
		w := int(float64(widths[i]) / float64(total) * float64(usable))
		if w < minColWidth {
			w = minColWidth
		}
		widths[i] = w
	}
	// Walk the overshoot back off the widest columns.
	for {
		sum := 0
		widest := 0
		for i, w := range widths {
			sum += w
			if w > widths[widest] {
				widest = i
			}
		}
		if sum <= usable || widths[widest] <= minColWidth {
			return widths
		}
		widths[widest]--
	}
}

func (r *renderer) headerLine(cols []cellText, widths []int) string {
	sep := strings.Repeat(" ", sepWidth)
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := padRight(truncate(c.text, widths[i]), widths[i])
		if c.err {
			parts[i] = r.paint(r.styles.err, cell)
		} else {
			parts[i] = r.paint(r.styles.header, cell)
		}
	}
	return strings.Join(parts, sep)
}

func (r *renderer) rowLine(rn *render.Node, widths []int) string {
	cells := make([]cellText, 0, len(rn.Children))
	for _, c := range rn.Children {
		cells = append(cells, cellText{
			text:     unitText(c.Unit),
			align:    c.StringProp("align"),
			err:      c.Kind == render.KindError,
			selected: c.Prop("selected") == true,
		})
	}
	selected := false
	for _, c := range cells {
		if c.selected {
			selected = true
			break
		}
	}

	sep := strings.Repeat(" ", sepWidth)
	parts := make([]string, 0, len(cells))
	for i, c := range cells {
		w := minColWidth
		if i < len(widths) {
			w = widths[i]
		}
		var cell string
		if c.align == "right" {
			cell = padLeft(truncate(c.text, w), w)
		} else {
			cell = padRight(truncate(c.text, w), w)
		}
		switch {
		case c.err:
			cell = r.paint(r.styles.err, cell)
		case selected:
			cell = r.paint(r.styles.selected, cell)
		default:
			cell = r.paint(r.styles.value, cell)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, sep)
}

func (r *renderer) subtable(sub *render.Node, width, indent int) string {
	var b strings.Builder
	pad := strings.Repeat(" ", indent)
	for _, c := range sub.Children {
		switch c.Kind {
		case render.KindError:
			b.WriteString(pad + r.paint(r.styles.err, unitText(c.Unit)) + "\n")
		case render.KindTable:
			b.WriteString(r.table(c, width, indent))
		}
	}
	return b.String()
}

func (r *renderer) pagerLine(p *render.Node) string {
	status := fmt.Sprintf("%v/%v · %v rows", p.Prop("page"), p.Prop("pageCount"), p.Prop("total"))
	parts := []string{status}
	for _, c := range p.Children {
		switch c.StringProp("type") {
		case "page-prev":
			parts = append([]string{unitText(c.Unit)}, parts...)
		default:
			parts = append(parts, unitText(c.Unit))
		}
	}
	return r.paint(r.styles.accent, strings.Join(parts, "  "))
}

func (r *renderer) footerLine(f *render.Node) string {
	text := f.StringProp("text")
	if text == "" {
		text = fmt.Sprintf("%v rows", f.Prop("total"))
	}
	return r.paint(r.styles.muted, text)
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width < 2 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-runewidth.StringWidth(s)))
}

func padLeft(s string, width int) string {
	return strings.Repeat(" ", max(0, width-runewidth.StringWidth(s))) + s
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
