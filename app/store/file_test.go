package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTrip(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "nested", DefaultFileName)}

	d, err := Load(context.Background(), f)
	require.NoError(t, err, "missing file is not a warning")
	assert.Zero(t, d.Len())

	d.Add(1, 18446744073709551615, 42)
	require.NoError(t, d.Persist(context.Background()))

	bts, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 42, 18446744073709551615]`, string(bts))

	loaded, err := Load(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, d.IDs(), loaded.IDs())

	entries, err := os.ReadDir(filepath.Dir(f.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files must be left behind")
}

func TestFile_EmptySetIsArray(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), DefaultFileName)}
	require.NoError(t, f.Save(context.Background(), nil))

	bts, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(bts))
}

func TestFile_Corrupt(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), DefaultFileName)}
	require.NoError(t, os.WriteFile(f.Path, []byte(`{"not": "a list"`), 0o600))

	d, err := Load(context.Background(), f)
	require.Error(t, err)
	assert.Zero(t, d.Len())

	// the corrupt file is overwritten with a well-formed set on the next persist
	d.Add(7)
	require.NoError(t, d.Persist(context.Background()))

	ids, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, ids)
}

func TestFile_NoLocation(t *testing.T) {
	f := &File{}

	d, err := Load(context.Background(), f)
	assert.ErrorIs(t, err, ErrNoLocation)
	assert.Zero(t, d.Len())

	d.Add(1)
	err = d.Persist(context.Background())
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestFile_UnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// parent of the target is a regular file, so nothing can be written there
	f := &File{Path: filepath.Join(blocker, DefaultFileName)}
	err := f.Save(context.Background(), []uint64{1})
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, f.Path, perr.Location)
}
