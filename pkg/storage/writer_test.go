package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://i.pximg.net/img-original/img/2024/01/01/00/00/00/12345_p0.png", "12345_p0.png", false},
		{"https://i.pximg.net/img/12345_p1.jpg?foo=bar", "12345_p1.jpg", false},
		{"https://example.com/img/%E9%A2%A8%E6%99%AF.png", "風景.png", false},
		{"https://example.com/", "", true},
		{"https://example.com", "", true},
		{"://bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FilenameFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveStream(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "tag", "horizontal", "1_p0.jpg")
	data := bytes.Repeat([]byte("0123456789"), 3000)

	n, err := SaveStream(bytes.NewReader(data), dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, content)
	assert.False(t, Exists(dest+PartSuffix))
}

type failingReader struct {
	remaining int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, errors.New("connection reset")
	}
	n := len(p)
	if n > r.remaining {
		n = r.remaining
	}
	r.remaining -= n
	return n, nil
}

func TestSaveStream_PartialDownloadLeavesNothing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "1_p0.jpg")

	_, err := SaveStream(&failingReader{remaining: 3 * ChunkSize}, dest)
	require.Error(t, err)
	assert.False(t, Exists(dest))
	assert.False(t, Exists(dest+PartSuffix))
}

type chunkRecorder struct {
	sizes []int
}

func (w *chunkRecorder) Write(p []byte) (int, error) {
	w.sizes = append(w.sizes, len(p))
	return len(p), nil
}

func TestCopyChunks(t *testing.T) {
	w := &chunkRecorder{}
	n, err := copyChunks(w, io.LimitReader(bytes.NewReader(make([]byte, 20000)), 20000))
	require.NoError(t, err)
	assert.Equal(t, int64(20000), n)
	for _, size := range w.sizes {
		assert.LessOrEqual(t, size, ChunkSize)
	}
}
