package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "v1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v1", "model.json"), []byte(`{"kind":"x"}`), 0o644))

	s, err := NewFSStore(dir)
	require.NoError(t, err)

	rc, err := s.Open("v1/model.json")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"x"}`, string(b))

	info, err := s.Stat("v1/model.json")
	require.NoError(t, err)
	assert.Equal(t, int64(12), info.Size)

	_, err = s.Open("v1/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Stat("missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Open("")
	assert.Error(t, err)
}

func TestFSStore_StaysInBase(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "artifacts")
	require.NoError(t, os.Mkdir(base, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("inside"), 0o644))

	s, err := NewFSStore(base)
	require.NoError(t, err)
	rc, err := s.Open("../secret.txt")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "inside", string(b))
}

func TestNewFSStore_Errors(t *testing.T) {
	_, err := NewFSStore(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err = NewFSStore(f)
	assert.Error(t, err)
}
