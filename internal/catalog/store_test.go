// file: internal/catalog/store_test.go
// version: 1.0.0
// guid: a5d2e8f0-3c71-4b96-8e14-7f0b6c9a2d35

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {"name": "建筑总包二级", "require_all_types": true, "types": ["建筑工程", "结构"], "total_count": 3},
  {"name": "市政总包二级", "require_all_types": false, "types": ["道路"], "total_count": 2}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileStoreLoadJSON(t *testing.T) {
	store := NewFileStore(writeFile(t, "quals.json", sampleJSON))

	c, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"建筑总包二级", "市政总包二级"}, c.Names())

	q, _ := c.Lookup("建筑总包二级")
	assert.True(t, q.RequireAllTypes)
	assert.Equal(t, []string{"建筑工程", "结构"}, q.Types)
}

func TestFileStoreRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not an array", `{"name": "x"}`},
		{"missing total_count", `[{"name": "x", "require_all_types": false, "types": []}]`},
		{"string count", `[{"name": "x", "require_all_types": false, "types": [], "total_count": "3"}]`},
		{"non-string title", `[{"name": "x", "require_all_types": false, "types": [1], "total_count": 3}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileStore(writeFile(t, "quals.json", tt.content)).Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json")).Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileStoreSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quals.json")
	store := NewFileStore(path)
	want := New(sampleQualifications())

	require.NoError(t, store.Save(want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "建筑总包二级", "CJK text is written unescaped")
	assert.Contains(t, string(raw), "\n  {")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.All(), got.All())
}

func TestFileStoreYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quals.yaml")
	store := NewFileStore(path)
	want := New(sampleQualifications())

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.All(), got.All())
}

func TestPebbleStoreRoundTrip(t *testing.T) {
	store, err := NewPebbleStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	want := New(sampleQualifications())
	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.All(), got.All())

	smaller := New(sampleQualifications()[:1])
	require.NoError(t, store.Save(smaller))
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, smaller.Names(), got.Names(), "save replaces previous entries")
}

func TestOpen(t *testing.T) {
	s, err := Open("", "x.json")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open("sqlite", "x")
	assert.ErrorIs(t, err, ErrUnknownStoreType)
}

func TestProviderReload(t *testing.T) {
	path := writeFile(t, "quals.json", sampleJSON)
	p, err := NewProvider(NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Current().Len())

	var notified *Catalog
	p.OnReload(func(c *Catalog) { notified = c })

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	c, err := p.Reload()
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Same(t, c, notified)
	assert.Same(t, c, p.Current())
}

func TestProviderKeepsSnapshotOnFailedReload(t *testing.T) {
	path := writeFile(t, "quals.json", sampleJSON)
	p, err := NewProvider(NewFileStore(path))
	require.NoError(t, err)
	before := p.Current()

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err = p.Reload()
	require.Error(t, err)
	assert.Same(t, before, p.Current())
}

func TestStaticProvider(t *testing.T) {
	c := New(sampleQualifications())
	p := NewStaticProvider(c)

	got, err := p.Reload()
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Nil(t, p.Store())
}
