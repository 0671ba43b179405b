package transform

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/manifest"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"landscape downscale", 2000, 1000, 1920, 1920, 960},
		{"portrait downscale", 1000, 3000, 1920, 640, 1920},
		{"square downscale", 4000, 4000, 1920, 1920, 1920},
		{"within bounds", 800, 600, 1920, 800, 600},
		{"exactly max", 1920, 1080, 1920, 1920, 1080},
		{"never upscale", 10, 10, 1920, 10, 10},
		{"no limit", 5000, 100, 0, 5000, 100},
		{"extreme ratio keeps one pixel", 10000, 1, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitWithin(tt.w, tt.h, tt.max)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFlattenDropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 10, B: 10, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 255, A: 128})

	out := flatten(img)
	assert.True(t, out.Opaque())
	assert.Equal(t, color.RGBA{R: 200, G: 10, B: 10, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, out.RGBAAt(1, 0))
}

func TestPrepareFlattensPalette(t *testing.T) {
	palette := color.Palette{color.NRGBA{R: 255, A: 0}, color.NRGBA{G: 255, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)

	out := prepare(img, 0)
	rgba, ok := out.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 0))
}

func TestProcessAll(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "api_ready_images")

	writePNG(t, filepath.Join(src, "tag", "horizontal", "100_p0.png"), solid(2000, 1000, color.NRGBA{R: 255, A: 255}))
	writeJPEG(t, filepath.Join(src, "tag", "horizontal", "200_p0.JPG"), solid(300, 200, color.NRGBA{B: 255, A: 255}))
	writePNG(t, filepath.Join(src, "tag", "vertical", "300_p0.png"), solid(10, 40, color.NRGBA{G: 255, A: 100}))
	require.NoError(t, os.WriteFile(filepath.Join(src, "tag", "vertical", "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "tag", "vertical", "400_p0.png.part"), []byte("x"), 0644))

	tr := New(Options{MaxDimension: 1920, Quality: 25}, logger.NewNopLogger())
	report, err := tr.ProcessAll(context.Background(), src, out)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Categories, 2)
	assert.Equal(t, "horizontal", report.Categories[0].Category)
	assert.Equal(t, "tag", report.Categories[0].Tag)

	w, h := decodeSize(t, filepath.Join(out, "tag", "horizontal", "100_p0.jpg"))
	assert.Equal(t, 1920, w)
	assert.Equal(t, 960, h)

	w, h = decodeSize(t, filepath.Join(out, "tag", "horizontal", "200_p0.jpg"))
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)

	names, err := manifest.Read(filepath.Join(out, "tag", "horizontal", manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"100_p0.jpg", "200_p0.jpg"}, names)

	names, err = manifest.Read(filepath.Join(out, "tag", "vertical", manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"300_p0.jpg"}, names)
}

func TestProcessAllSkipsBrokenFiles(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	dir := filepath.Join(src, "tag", "square")

	writePNG(t, filepath.Join(dir, "1_p0.png"), solid(20, 20, color.NRGBA{A: 255}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2_p0.png"), []byte("not an image"), 0644))

	log := logger.NewTestLogger()
	report, err := New(Options{MaxDimension: 1920, Quality: 25}, log).ProcessAll(context.Background(), src, out)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, log.HasMessage("skipping image"))

	names, err := manifest.Read(filepath.Join(out, "tag", "square", manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"1_p0.jpg"}, names)
}

func TestProcessAllNoManifestWithoutOutput(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(src, "tag", "empty"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "tag", "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "tag", "broken", "x.webp"), []byte("junk"), 0644))

	report, err := New(Options{Quality: 25}, logger.NewNopLogger()).ProcessAll(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.Failed)

	_, err = os.Stat(filepath.Join(out, "tag", "empty"))
	assert.True(t, os.IsNotExist(err), "empty category must not create an output folder")

	_, err = os.Stat(filepath.Join(out, "tag", "broken", manifest.FileName))
	assert.True(t, os.IsNotExist(err), "no manifest without a produced file")
}

func TestProcessAllAcceptsAnyCategoryName(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writePNG(t, filepath.Join(src, "風景", "favourites", "5_p0.png"), solid(8, 8, color.NRGBA{R: 1, A: 255}))

	report, err := New(Options{Quality: 90}, logger.NewNopLogger()).ProcessAll(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.FileExists(t, filepath.Join(out, "風景", "favourites", "5_p0.jpg"))
}

func TestProcessAllOverwritesManifest(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	dir := filepath.Join(src, "tag", "square")
	writePNG(t, filepath.Join(dir, "1_p0.png"), solid(8, 8, color.NRGBA{A: 255}))
	writePNG(t, filepath.Join(dir, "2_p0.png"), solid(8, 8, color.NRGBA{A: 255}))

	tr := New(Options{Quality: 25}, logger.NewNopLogger())
	_, err := tr.ProcessAll(context.Background(), src, out)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "1_p0.png")))
	_, err = tr.ProcessAll(context.Background(), src, out)
	require.NoError(t, err)

	names, err := manifest.Read(filepath.Join(out, "tag", "square", manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"2_p0.jpg"}, names)
	// stale outputs are left in place
	assert.FileExists(t, filepath.Join(out, "tag", "square", "1_p0.jpg"))
}

func TestProcessAllInvalidSource(t *testing.T) {
	tr := New(Options{Quality: 25}, logger.NewNopLogger())

	_, err := tr.ProcessAll(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = tr.ProcessAll(context.Background(), file, t.TempDir())
	assert.Error(t, err)
}

func TestProcessAllCancelled(t *testing.T) {
	src := t.TempDir()
	writePNG(t, filepath.Join(src, "tag", "square", "1_p0.png"), solid(8, 8, color.NRGBA{A: 255}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(Options{Quality: 25}, logger.NewNopLogger()).ProcessAll(ctx, src, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Processed)
}

func TestNewClampsOptions(t *testing.T) {
	tr := New(Options{MaxDimension: -5, Quality: 0}, logger.NewNopLogger())
	assert.Equal(t, 0, tr.opts.MaxDimension)
	assert.Equal(t, 25, tr.opts.Quality)
}
