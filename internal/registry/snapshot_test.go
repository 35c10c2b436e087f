package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarques/kprof/internal/store"
)

func TestSnapshotRoundTrip(t *testing.T) {
	reg := New()
	reg.Put("a", testProfile("https://a"))
	reg.Put("b", testProfile("https://b"))
	_, err := reg.SetCurrent("a")
	require.NoError(t, err)

	data, err := reg.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(data)
	require.NoError(t, err)

	assert.Equal(t, reg.List(), restored.List())
	name, p, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "a", name)
	assert.Equal(t, "https://a", p.Server)
}

func TestSnapshotRoundTripWithoutSelection(t *testing.T) {
	reg := New()
	reg.Put("a", testProfile("https://a"))

	data, err := reg.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(data)
	require.NoError(t, err)

	_, _, ok := restored.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, restored.Len())
}

func TestSnapshotFormat(t *testing.T) {
	reg := New()
	reg.Put("a", testProfile("https://a"))
	_, err := reg.SetCurrent("a")
	require.NoError(t, err)

	data, err := reg.Snapshot()
	require.NoError(t, err)

	// The two top-level fields are an external contract
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "profiles")
	assert.Contains(t, doc, "current")

	var current string
	require.NoError(t, json.Unmarshal(doc["current"], &current))
	assert.Equal(t, "a", current)
}

func TestSnapshotNullCurrent(t *testing.T) {
	reg := New()

	data, err := reg.Snapshot()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "null", string(doc["current"]))
}

func TestRestoreMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"wrong profiles shape", `{"profiles": [], "current": null}`},
		{"wrong current shape", `{"profiles": {}, "current": 42}`},
		{"unknown field", `{"profiles": {}, "current": null, "extra": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestRestoreRepairsDanglingSelection(t *testing.T) {
	// A snapshot saved while the selection pointed at a removed
	// profile restores with the selection cleared, not dangling
	data := []byte(`{"profiles": {"b": {"server": "https://b"}}, "current": "gone"}`)

	restored, err := Restore(data)
	require.NoError(t, err)

	_, _, ok := restored.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, restored.Len())
}

func TestRestoreEmptyDocument(t *testing.T) {
	restored, err := Restore([]byte(`{"profiles": {}, "current": null}`))
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
}

func TestSaveAndLoad(t *testing.T) {
	st := store.NewFileStoreFs(afero.NewMemMapFs(), "/state")
	ctx := context.Background()

	reg := New()
	reg.Put("a", testProfile("https://a"))
	_, err := reg.SetCurrent("a")
	require.NoError(t, err)

	require.NoError(t, reg.Save(ctx, st))

	loaded, err := Load(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, reg.List(), loaded.List())

	name, _, ok := loaded.Current()
	require.True(t, ok)
	assert.Equal(t, "a", name)
}

func TestLoadMissingBlobYieldsEmptyRegistry(t *testing.T) {
	st := store.NewFileStoreFs(afero.NewMemMapFs(), "/state")

	reg, err := Load(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
	_, _, ok := reg.Current()
	assert.False(t, ok)
}

func TestSaveFailsWithoutStoreRoot(t *testing.T) {
	st := store.NewFileStoreFs(afero.NewMemMapFs(), "")

	err := New().Save(context.Background(), st)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestLoadMalformedBlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := store.NewFileStoreFs(fs, "/state")
	require.NoError(t, afero.WriteFile(fs, "/state/config.json", []byte("garbage"), 0600))

	_, err := Load(context.Background(), st)
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}
