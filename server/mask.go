package main

import (
	"image"

	"golang.org/x/image/draw"
)

// Mask is a row-major per-pixel opacity map, 4 bytes per pixel with the
// first channel holding 1 for solid and 0 for transparent. That 1/0
// encoding is the contract the pixel collision tier reads; the builders
// below are the only writers.
type Mask struct {
	W, H int
	Pix  []byte
}

// Solid reports whether the pixel at local (x, y) is opaque; coordinates
// outside the mask read as transparent
func (m Mask) Solid(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Pix[(y*m.W+x)*4] == 1
}

// BuildMask converts a decoded frame to an opacity mask: pixels whose
// alpha exceeds the threshold (a 0..1 fraction of full opacity) become
// solid
func BuildMask(img image.Image, threshold float64) Mask {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	m := Mask{W: w, H: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if float64(a) > threshold*0xffff {
				m.Pix[(y*w+x)*4] = 1
			}
		}
	}
	return m
}

// BuildMaskScaled resamples the frame to the given extent before masking,
// so mask pixels line up 1:1 with world units. Nearest neighbor keeps the
// result strictly binary.
func BuildMaskScaled(img image.Image, w, h int, threshold float64) Mask {
	if w <= 0 || h <= 0 {
		return Mask{}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return BuildMask(dst, threshold)
}
