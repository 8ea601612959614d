package main

import (
	"image"
	"image/color"
	"math"
)

// The server never renders, but the pixel collision tier needs real
// opacity masks. Frames for every entity kind are painted here at world
// size and converted once at construction.

var opaque = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// discFrame paints a filled circle; scale is the radius as a fraction of
// the half-frame
func discFrame(size int, scale float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	r := c * scale
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, opaque)
			}
		}
	}
	return img
}

// diamondFrame paints a filled diamond touching the frame edges at scale 1
func diamondFrame(size int, scale float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	r := c * scale
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := math.Abs(float64(x) + 0.5 - c)
			dy := math.Abs(float64(y) + 0.5 - c)
			if dx+dy <= r {
				img.SetNRGBA(x, y, opaque)
			}
		}
	}
	return img
}

// boxFrame paints a centered filled square; scale is its side as a
// fraction of the frame
func boxFrame(size int, scale float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	margin := int(float64(size) * (1 - scale) / 2)
	for y := margin; y < size-margin; y++ {
		for x := margin; x < size-margin; x++ {
			img.SetNRGBA(x, y, opaque)
		}
	}
	return img
}

// ellipseFrame paints an ellipse squashed horizontally by wScale, used
// for the coin spin
func ellipseFrame(size int, wScale float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	rx := c * wScale
	ry := c * 0.9
	if rx < 1 {
		rx = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - c) / rx
			dy := (float64(y) + 0.5 - c) / ry
			if dx*dx+dy*dy <= 1 {
				img.SetNRGBA(x, y, opaque)
			}
		}
	}
	return img
}

// runnerMasks is a single disc frame
func runnerMasks(size int) []Mask {
	return []Mask{BuildMask(discFrame(size, 0.9), 0)}
}

// sentryMasks is a two-frame diamond pulse
func sentryMasks(size int) []Mask {
	return []Mask{
		BuildMask(diamondFrame(size, 1.0), 0),
		BuildMask(diamondFrame(size, 0.8), 0),
	}
}

// coinMasks is the spin cycle: the disc squashes to a sliver and back
func coinMasks(size, frames int) []Mask {
	if frames < 1 {
		frames = 1
	}
	masks := make([]Mask, frames)
	for i := 0; i < frames; i++ {
		w := math.Abs(math.Cos(math.Pi * float64(i) / float64(frames)))
		if w < 0.15 {
			w = 0.15
		}
		masks[i] = BuildMask(ellipseFrame(size, w), 0)
	}
	return masks
}

// flareMasks is a single small disc frame
func flareMasks(size int) []Mask {
	return []Mask{BuildMask(discFrame(size, 1.0), 0)}
}

// plateMasks is a single near-full square frame
func plateMasks(size int) []Mask {
	return []Mask{BuildMask(boxFrame(size, 0.95), 0)}
}

// mistMasks is a single soft disc frame
func mistMasks(size int) []Mask {
	return []Mask{BuildMask(discFrame(size, 1.0), 0)}
}
