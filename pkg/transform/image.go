package transform

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"

	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// decodeFile opens and decodes a png, jpeg or webp file
func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unrecognized image: %w", err)
	}
	return img, nil
}

// opaque reports whether img is known to carry no transparency
func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// flatten copies img into an opaque RGBA image keeping the straight color
// channels and discarding alpha. Transparent areas are not composited onto a
// background.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}

// fitWithin returns the size of a w×h image scaled so that neither side
// exceeds max, keeping the aspect ratio. Images already within bounds, or a
// max of zero, keep their size.
func fitWithin(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		return max, atLeastOne(math.Round(float64(h) * float64(max) / float64(w)))
	}
	return atLeastOne(math.Round(float64(w) * float64(max) / float64(h))), max
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// resize scales img to w×h with Catmull-Rom resampling
func resize(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// prepare applies flattening and downscaling
func prepare(img image.Image, maxDimension int) image.Image {
	if !opaque(img) {
		img = flatten(img)
	}
	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxDimension)
	if w != b.Dx() || h != b.Dy() {
		img = resize(img, w, h)
	}
	return img
}

// encodeJPEG encodes img at the given quality
func encodeJPEG(img image.Image, quality int) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return &buf, nil
}
