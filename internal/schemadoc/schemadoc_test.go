package schemadoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/pkg/schema"
)

func docForTest(t *testing.T) *schema.Document {
	t.Helper()
	doc := &schema.Document{
		ID:     "orders",
		RowKey: "id",
		Columns: []schema.Column{
			{Key: "id", Title: "Order"},
			{Key: "status", Hidable: true, Filters: []schema.Filter{{Label: "Open", Value: "open"}}},
		},
		Pagination: &schema.Pagination{PageSize: 25, PageSizeOptions: []int{10, 25, 50}},
		Selection:  &schema.Selection{Mode: schema.SelectionSingle},
		Toolbar: []schema.Element{
			{Type: schema.ElementSearch, SearchKeys: []schema.SearchKey{{Label: "Status", Value: "status"}}},
			{Type: schema.ElementSelector},
		},
		Subtable: &schema.SubtableRule{
			When:      `_.kind == "group"`,
			DataIndex: "lines",
			Schema: &schema.Document{
				RowKey:  "sku",
				Columns: []schema.Column{{Key: "sku"}},
			},
		},
	}
	_, err := schema.Validate(doc)
	require.NoError(t, err)
	return doc
}

func TestMarkdown(t *testing.T) {
	md := Markdown(docForTest(t), "")

	assert.True(t, strings.HasPrefix(md, "# orders\n"), "falls back to the schema id as title")
	assert.Contains(t, md, "| `id` | Order | `id` | `text` | left |")
	assert.Contains(t, md, "hidable, 1 filters")
	assert.Contains(t, md, "search over Status")
	assert.Contains(t, md, "- Pagination: 25 rows per page (options: 10, 25, 50)")
	assert.Contains(t, md, "- Selection: single")
	assert.Contains(t, md, "Expandable when: `_.kind == \"group\"`")
	assert.Contains(t, md, "Child rows from `lines`")
	assert.Contains(t, md, "| `sku` |")
}

func TestMarkdown_InvalidColumnIsCalledOut(t *testing.T) {
	doc := &schema.Document{
		RowKey:  "id",
		Columns: []schema.Column{{Key: "id"}, {Key: "id"}},
	}
	_, err := schema.Validate(doc)
	require.NoError(t, err)

	md := Markdown(doc, "dup")
	assert.Contains(t, md, "invalid: duplicate key")
}

func TestGenerate_HTMLDocument(t *testing.T) {
	out := string(Generate(docForTest(t), "Orders <admin>"))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Orders &lt;admin&gt;</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "</html>")
}
