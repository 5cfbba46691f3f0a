// Package schemadoc generates human-readable HTML documentation for a schema
// document: the column set, toolbar layout, pagination and selection
// behavior, and any nested subtable schemas. The output is a single
// self-contained page meant for schema authors.
package schemadoc

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/gridkit/pkg/schema"
)

// Generate renders a validated schema document as an HTML page. The markdown
// intermediate keeps the generator simple and the output styleable.
func Generate(doc *schema.Document, title string) []byte {
	md := Markdown(doc, title)

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	parsed := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(parsed, renderer)

	var b strings.Builder
	writeHeader(&b, title)
	b.Write(body)
	writeFooter(&b)
	return []byte(b.String())
}

// Markdown renders the schema description as markdown.
func Markdown(doc *schema.Document, title string) string {
	var b strings.Builder
	if title == "" {
		title = doc.ID
	}
	if title == "" {
		title = "Table schema"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Row key: `%s`\n\n", doc.RowKey)

	writeColumns(&b, doc)
	writeToolbar(&b, doc)
	writeBehavior(&b, doc)
	writeSubtable(&b, doc, 0)
	return b.String()
}

func writeColumns(b *strings.Builder, doc *schema.Document) {
	b.WriteString("## Columns\n\n")
	b.WriteString("| Key | Title | Data index | Component | Align | Flags |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, col := range doc.Columns {
		if col.Invalid != "" {
			fmt.Fprintf(b, "| `%s` | — | — | — | — | invalid: %s |\n", col.Key, col.Invalid)
			continue
		}
		fmt.Fprintf(b, "| `%s` | %s | `%s` | `%s` | %s | %s |\n",
			col.Key, col.Title, col.DataIndex, col.Component, col.Align, columnFlags(col))
	}
	b.WriteString("\n")
}

func columnFlags(col schema.Column) string {
	var flags []string
	if col.Hidable {
		flags = append(flags, "hidable")
	}
	if col.Hidden {
		flags = append(flags, "hidden by default")
	}
	if len(col.Filters) > 0 {
		flags = append(flags, fmt.Sprintf("%d filters", len(col.Filters)))
	}
	if col.Width > 0 {
		flags = append(flags, fmt.Sprintf("width %d", col.Width))
	}
	if len(flags) == 0 {
		return "—"
	}
	return strings.Join(flags, ", ")
}

func writeToolbar(b *strings.Builder, doc *schema.Document) {
	if len(doc.Toolbar) == 0 {
		return
	}
	b.WriteString("## Toolbar\n\n")
	for i, el := range doc.Toolbar {
		if el.Invalid != "" {
			fmt.Fprintf(b, "%d. invalid element: %s\n", i+1, el.Invalid)
			continue
		}
		desc := el.Type
		switch el.Type {
		case schema.ElementText, schema.ElementHTML:
			desc = fmt.Sprintf("%s: %q", el.Type, el.Text)
		case schema.ElementSlot:
			desc = fmt.Sprintf("slot `%s`", el.Slot)
		case schema.ElementSearch:
			keys := make([]string, len(el.SearchKeys))
			for j, sk := range el.SearchKeys {
				keys[j] = sk.Label
			}
			desc = "search"
			if len(keys) > 0 {
				desc = fmt.Sprintf("search over %s", strings.Join(keys, ", "))
			}
		case schema.ElementInsert, schema.ElementSelector:
			desc = fmt.Sprintf("%s (%q)", el.Type, el.ButtonText)
		}
		fmt.Fprintf(b, "%d. %s (span %s, align %s)\n", i+1, desc, el.Span.String(), el.Align)
	}
	b.WriteString("\n")
}

func writeBehavior(b *strings.Builder, doc *schema.Document) {
	b.WriteString("## Behavior\n\n")
	if p := doc.Pagination; p != nil {
		fmt.Fprintf(b, "- Pagination: %d rows per page", p.PageSize)
		if len(p.PageSizeOptions) > 0 {
			fmt.Fprintf(b, " (options: %s)", joinInts(p.PageSizeOptions))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("- Pagination: disabled\n")
	}
	if s := doc.Selection; s != nil {
		fmt.Fprintf(b, "- Selection: %s\n", s.Mode)
	} else {
		b.WriteString("- Selection: disabled\n")
	}
	if doc.Ellipsis {
		b.WriteString("- Overflowing cells truncate with an ellipsis\n")
	}
	if doc.VirtualScroll {
		b.WriteString("- Virtual scrolling hint enabled\n")
	}
	b.WriteString("\n")
}

func writeSubtable(b *strings.Builder, doc *schema.Document, depth int) {
	rule := doc.Subtable
	if rule == nil || depth > 8 {
		return
	}
	fmt.Fprintf(b, "## Subtable (depth %d)\n\n", depth+1)
	if rule.When != "" {
		fmt.Fprintf(b, "Expandable when: `%s`\n\n", rule.When)
	} else {
		b.WriteString("Every row is expandable.\n\n")
	}
	if rule.SchemaFrom != "" {
		fmt.Fprintf(b, "Child schema computed per row from `%s`.\n\n", rule.SchemaFrom)
	}
	if rule.DataIndex != "" {
		fmt.Fprintf(b, "Child rows from `%s`.\n\n", rule.DataIndex)
	}
	if rule.Schema != nil {
		writeColumns(b, rule.Schema)
		writeSubtable(b, rule.Schema, depth+1)
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

func writeHeader(b *strings.Builder, title string) {
	fmt.Fprintf(b, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #f4f4f4; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; border-radius: 3px; }
</style>
</head>
<body>
`, htmlEscape(title))
}

func writeFooter(b *strings.Builder) {
	b.WriteString("\n</body>\n</html>\n")
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
