package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtworkIDFromFilename(t *testing.T) {
	tests := []struct {
		name   string
		wantID string
		wantOK bool
	}{
		{"12345_p0.jpg", "12345", true},
		{"12345_p12.png", "12345", true},
		{"999_p0.tar.gz", "999", true},
		{"12345_p0.", "", false},
		{"12345_p.jpg", "", false},
		{"abc_p0.jpg", "", false},
		{"12345.jpg", "", false},
		{"x12345_p0.jpg", "", false},
		{"12345_p0.jpg.part", "12345", true},
		{"manifest.json", "", false},
		{"１２３_p0.jpg", "", false},
		{"١٢٣_p0.jpg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ArtworkIDFromFilename(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestScanExisting(t *testing.T) {
	root := t.TempDir()
	horizontal := filepath.Join(root, "horizontal")
	vertical := filepath.Join(root, "vertical")
	square := filepath.Join(root, "square")

	touch(t, filepath.Join(horizontal, "100_p0.jpg"))
	touch(t, filepath.Join(horizontal, "100_p1.jpg"))
	touch(t, filepath.Join(vertical, "200_p0.png"))
	touch(t, filepath.Join(vertical, "notes.txt"))
	touch(t, filepath.Join(square, "400_p0.jpg.part"))
	touch(t, filepath.Join(vertical, "nested", "300_p0.png"))

	inv, err := ScanExisting([]string{horizontal, vertical, square})
	require.NoError(t, err)

	assert.Equal(t, 2, inv.Len())
	assert.True(t, inv.Has("100"))
	assert.True(t, inv.Has("200"))
	assert.False(t, inv.Has("300"), "scan is not recursive")
	assert.False(t, inv.Has("400"), "partial downloads do not count")
}

func TestScanExisting_NoDirectories(t *testing.T) {
	root := t.TempDir()

	inv, err := ScanExisting([]string{filepath.Join(root, "a"), filepath.Join(root, "b")})
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())

	inv, err = ScanExisting(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
}
