package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSONArray(t *testing.T) {
	rows, err := Load(`[{"id":"a"},{"id":"b"}]`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["id"])
}

func TestLoad_SingleJSONObject(t *testing.T) {
	rows, err := Load(`{"id":"a","n":1}`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0]["n"])
}

func TestLoad_NDJSON(t *testing.T) {
	rows, err := Load("{\"id\":\"a\"}\n{\"id\":\"b\"}\n{\"id\":\"c\"}")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestLoad_YAMLSequence(t *testing.T) {
	rows, err := Load("- id: a\n- id: b")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[1]["id"])
}

func TestLoad_MultiDocYAML(t *testing.T) {
	rows, err := Load("---\nid: a\n---\nid: b\n")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(`[1, 2, 3]`)
	assert.Error(t, err, "scalar lists are not records")

	_, err = Load(`{"broken":`)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a"}]`), 0o600))

	rows, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFromValue_StructSlice(t *testing.T) {
	type order struct {
		ID     string `json:"id"`
		Amount int    `json:"amount"`
	}
	rows, err := FromValue([]order{{ID: "o1", Amount: 5}, {ID: "o2", Amount: 7}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "o1", rows[0]["id"], "struct tags name the record fields")
	assert.Equal(t, float64(5), rows[0]["amount"])
}

func TestFromValue_Passthrough(t *testing.T) {
	in := []map[string]interface{}{{"id": "x"}}
	rows, err := FromValue(in)
	require.NoError(t, err)
	assert.Equal(t, in, rows)

	rows, err = FromValue(`[{"id":"y"}]`)
	require.NoError(t, err)
	assert.Equal(t, "y", rows[0]["id"])

	_, err = FromValue(nil)
	assert.Error(t, err)
}
