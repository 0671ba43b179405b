package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteKeepsOrderAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	names := []string{"200_p0.jpg", "100_p0.jpg", "100_p0.jpg"}

	require.NoError(t, Write(dir, names))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, `["200_p0.jpg","100_p0.jpg","100_p0.jpg"]`, string(data))

	got, err := Read(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, []string{"a.jpg", "b.jpg"}))
	require.NoError(t, Write(dir, []string{"c.jpg"}))

	got, err := Read(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"c.jpg"}, got)

	_, err = os.Stat(Path(dir) + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestWriteNilAsEmptyArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, nil))

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestWriteMissingDir(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing"), []string{"a.jpg"})
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, FileName))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"not":"a list"}`), 0644))
	_, err = Read(filepath.Join(dir, FileName))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`["x.jpg", "y.jpg"]`), 0644))
	got, err := Read(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"x.jpg", "y.jpg"}, got)
}
