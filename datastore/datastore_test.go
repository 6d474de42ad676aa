package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*DataStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	ds, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds, path
}

func TestSetAndFind(t *testing.T) {
	ds, _ := newStore(t)

	ds.Set("guild-1", map[string]any{"prefix": "!"})
	v, ok := ds.Find("guild-1")
	require.True(t, ok)
	doc := v.(map[string]any)
	assert.Equal(t, "!", doc["prefix"])

	_, ok = ds.Find("guild-2")
	assert.False(t, ok)
}

func TestEdit_UpsertMerge(t *testing.T) {
	ds, _ := newStore(t)

	ds.Edit("guild-1", map[string]any{"prefix": "!"})
	ds.Edit("guild-1", map[string]any{"locale": "en"})
	ds.Edit("guild-1", map[string]any{"prefix": "?"})

	v, ok := ds.Find("guild-1")
	require.True(t, ok)
	doc := v.(map[string]any)
	assert.Equal(t, "?", doc["prefix"], "later edits overwrite the field")
	assert.Equal(t, "en", doc["locale"], "unrelated fields survive the merge")
}

func TestEdit_ReplacesNonObjectDocument(t *testing.T) {
	ds, _ := newStore(t)

	ds.Set("guild-1", "just a string")
	ds.Edit("guild-1", map[string]any{"prefix": "!"})

	v, _ := ds.Find("guild-1")
	doc, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "!", doc["prefix"])
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := New(path)
	require.NoError(t, err)
	ds.Set("guild-1", map[string]any{"prefix": "!"})
	require.NoError(t, ds.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok := reopened.Find("guild-1")
	require.True(t, ok)
	doc := v.(map[string]any)
	assert.Equal(t, "!", doc["prefix"])
}

func TestDeleteAndKeys(t *testing.T) {
	ds, _ := newStore(t)

	ds.Set("a", 1)
	ds.Set("b", 2)
	ds.Delete("a")

	assert.ElementsMatch(t, []string{"b"}, ds.Keys())
	_, ok := ds.Find("a")
	assert.False(t, ok)
}

func TestNew_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	ds, _ := newStore(t)
	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())
}
