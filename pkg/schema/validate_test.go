package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDoc() *Document {
	return &Document{
		ID:     "orders",
		RowKey: "id",
		Columns: []Column{
			{Key: "id"},
			{Key: "status", Hidable: true},
		},
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	doc := validDoc()
	doc.Pagination = &Pagination{}
	doc.Selection = &Selection{Mode: "bogus"}

	res, err := Validate(doc)
	require.NoError(t, err)
	assert.True(t, res.Valid())

	assert.Equal(t, "id", doc.Columns[0].Title)
	assert.Equal(t, "id", doc.Columns[0].DataIndex)
	assert.Equal(t, DefaultComponent, doc.Columns[0].Component)
	assert.Equal(t, DefaultAlign, doc.Columns[0].Align)
	assert.Equal(t, DefaultPageSize, doc.Pagination.PageSize)
	assert.Equal(t, SelectionMultiple, doc.Selection.Mode)
}

func TestValidate_MissingColumnsIsFatal(t *testing.T) {
	_, err := Validate(&Document{RowKey: "id"})
	require.Error(t, err)

	fatal, ok := err.(*FatalError)
	require.True(t, ok, "expected *FatalError, got %T", err)
	require.Len(t, fatal.Issues, 1)
	assert.Equal(t, "columns", fatal.Issues[0].Path)
}

func TestValidate_MissingRowKeyIsFatal(t *testing.T) {
	_, err := Validate(&Document{Columns: []Column{{Key: "a"}}})
	require.Error(t, err)

	fatal, ok := err.(*FatalError)
	require.True(t, ok)
	assert.Equal(t, "rowKey", fatal.Issues[0].Path)
}

func TestValidate_NilDocumentIsFatal(t *testing.T) {
	_, err := Validate(nil)
	assert.Error(t, err)
}

func TestValidate_DuplicateColumnKeysEnumerated(t *testing.T) {
	doc := &Document{
		RowKey: "id",
		Columns: []Column{
			{Key: "id"},
			{Key: "name"},
			{Key: "id"},
			{Key: "name"},
		},
	}

	res, err := Validate(doc)
	require.NoError(t, err, "duplicate keys degrade, they do not crash validation")
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "columns[2].key", res.Issues[0].Path)
	assert.Equal(t, "columns[3].key", res.Issues[1].Path)

	// The first occurrences survive; the duplicates are inert.
	assert.Empty(t, doc.Columns[0].Invalid)
	assert.Empty(t, doc.Columns[1].Invalid)
	assert.NotEmpty(t, doc.Columns[2].Invalid)
	assert.NotEmpty(t, doc.Columns[3].Invalid)
	assert.Equal(t, []string{"id", "name"}, doc.DefaultDisplayColumns())
}

func TestValidate_ColumnWithoutKeyDegrades(t *testing.T) {
	doc := &Document{
		RowKey:  "id",
		Columns: []Column{{Key: "id"}, {Title: "no key"}},
	}

	res, err := Validate(doc)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "columns[1].key", res.Issues[0].Path)
	assert.Len(t, doc.ValidColumns(), 1)
}

func TestValidate_PageSizeClamped(t *testing.T) {
	doc := validDoc()
	doc.Pagination = &Pagination{PageSize: 9999, PageSizeOptions: []int{-5, 10, 0, 50}}

	res, err := Validate(doc)
	require.NoError(t, err)

	assert.Equal(t, MaxPageSize, doc.Pagination.PageSize)
	assert.Equal(t, []int{10, 50}, doc.Pagination.PageSizeOptions)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "pagination.pageSize", res.Issues[0].Path)
}

func TestValidate_UnknownToolbarElementDegrades(t *testing.T) {
	doc := validDoc()
	doc.Toolbar = []Element{
		{Type: ElementSearch},
		{Type: "carousel"},
		{Type: ElementSlot},
	}

	res, err := Validate(doc)
	require.NoError(t, err)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "toolbar[1].type", res.Issues[0].Path)
	assert.Equal(t, "toolbar[2].slot", res.Issues[1].Path)
	assert.Empty(t, doc.Toolbar[0].Invalid)
	assert.NotEmpty(t, doc.Toolbar[1].Invalid)
}

func TestValidate_ToolbarButtonTextDefaults(t *testing.T) {
	doc := validDoc()
	doc.Toolbar = []Element{{Type: ElementInsert}, {Type: ElementSelector}}

	_, err := Validate(doc)
	require.NoError(t, err)
	assert.Equal(t, DefaultInsertText, doc.Toolbar[0].ButtonText)
	assert.Equal(t, DefaultSelectorText, doc.Toolbar[1].ButtonText)
}

func TestValidate_InvalidChildSchemaIsNotFatal(t *testing.T) {
	doc := validDoc()
	doc.Subtable = &SubtableRule{
		DataIndex: "children",
		Schema:    &Document{RowKey: "id"}, // no columns: fatal for the child only
	}

	res, err := Validate(doc)
	require.NoError(t, err, "a failing child schema must not abort the parent")
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, "subtable.schema", res.Issues[0].Path)
}

func TestValidate_ExternalRules(t *testing.T) {
	doc := validDoc()
	rule := func(d *Document) []Issue {
		return []Issue{{Path: "id", Reason: "identifier must not be empty"}}
	}

	res, err := Validate(doc, rule)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "id", res.Issues[0].Path)
}

func TestHidableColumns(t *testing.T) {
	doc := &Document{
		RowKey: "id",
		Columns: []Column{
			{Key: "mock_1", Hidable: true},
			{Key: "mock_2", Hidable: false},
		},
	}
	_, err := Validate(doc)
	require.NoError(t, err)

	hidable := doc.HidableColumns()
	require.Len(t, hidable, 1)
	assert.Equal(t, "mock_1", hidable[0].Key)
}
