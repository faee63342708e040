package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"model.json", FormatJSON},
		{"MODEL.JSON", FormatJSON},
		{"model.yaml", FormatYAML},
		{"model.yml", FormatYAML},
		{"model", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForPath(tt.path))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	v, err := Decode([]byte(`{"Title":"Мой профиль","Count":3,"Price":19.5,"Active":true,"Tags":["a","b"],"Nothing":null}`), FormatJSON)
	require.NoError(t, err)

	title, _ := v.Member("title")
	assert.Equal(t, "Мой профиль", title.String())

	count, _ := v.Member("Count")
	assert.Equal(t, "3", count.String())

	price, _ := v.Member("Price")
	assert.Equal(t, "19.5", price.String())

	active, _ := v.Member("Active")
	b, ok := active.AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	tags, _ := v.Member("Tags")
	assert.Equal(t, "a, b", tags.String())

	nothing, ok := v.Member("Nothing")
	assert.True(t, ok)
	assert.True(t, nothing.IsNull())
}

func TestDecodeYAML(t *testing.T) {
	doc := `
User:
  Name: Тима
  IsAdmin: true
Items:
  - Name: Книга
    Price: 100
  - Name: Ручка
    Price: 10
`
	v, err := Decode([]byte(doc), FormatYAML)
	require.NoError(t, err)

	user, _ := v.Member("User")
	name, _ := user.Member("Name")
	assert.Equal(t, "Тима", name.String())

	items, _ := v.Member("Items")
	require.Equal(t, 2, items.Len())
	price, _ := items.Items()[1].Member("Price")
	assert.Equal(t, "10", price.String())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"a":`), FormatJSON)
	assert.ErrorContains(t, err, "invalid JSON model")

	_, err = Decode([]byte("a: [1, 2"), FormatYAML)
	assert.ErrorContains(t, err, "invalid YAML model")

	_, err = Decode([]byte("{}"), Format("toml"))
	assert.ErrorContains(t, err, "unsupported model format")
}

func TestRead(t *testing.T) {
	v, err := Read(strings.NewReader(`[1, 2, 3]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Name":"Никита"}`), 0o644))

	v, err := LoadFile(path)
	require.NoError(t, err)
	name, _ := v.Member("name")
	assert.Equal(t, "Никита", name.String())

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o644))
	_, err = LoadFile(broken)
	assert.ErrorContains(t, err, "broken.json")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
