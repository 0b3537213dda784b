// Package texture decodes and prepares albedo images for upload.
package texture

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxSize caps the longest side of a loaded texture.
const DefaultMaxSize = 1024

// Load decodes the image at path (PNG, JPEG, BMP or WebP) and fits it within maxSize.
func Load(path string, maxSize int) (*image.RGBA, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	return Fit(img, maxSize), nil
}

// Decode reads an image from r and fits it within maxSize.
func Decode(r io.Reader, maxSize int) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	return Fit(img, maxSize), nil
}

// Fit converts img to RGBA and downscales it, keeping the aspect ratio, so that neither side
// exceeds maxSize. maxSize <= 0 means DefaultMaxSize. Images already small enough are only
// converted.
func Fit(img image.Image, maxSize int) *image.RGBA {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return clone.AsRGBA(img)
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	return transform.Resize(img, w, h, transform.Linear)
}

// Checker returns a size×size checkerboard with cells squares per side. Used when no ball
// texture is configured so the rolling is still visible.
func Checker(size, cells int, a, b color.RGBA) *image.RGBA {
	if size <= 0 {
		size = 256
	}
	if cells <= 0 {
		cells = 8
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(1, size/cells)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
