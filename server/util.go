package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// absInt returns |v|
func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// round1 rounds to one decimal, keeping state payloads small
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// For game use, we use a simple approach
var randSrc uint64

func randFloat() float64 {
	// Simple xorshift for non-crypto random
	randSrc ^= randSrc << 13
	randSrc ^= randSrc >> 7
	randSrc ^= randSrc << 17
	if randSrc == 0 {
		randSrc = 1
	}
	return float64(randSrc%10000) / 10000.0
}

func init() {
	// Seed from crypto/rand
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i, v := range b {
		randSrc |= uint64(v) << (uint(i) * 8)
	}
	if randSrc == 0 {
		randSrc = 1
	}
}

// randSeed returns a crypto-seeded value for per-session maze generation
func randSeed() uint64 {
	b := make([]byte, 8)
	rand.Read(b)
	var s uint64
	for i, v := range b {
		s |= uint64(v) << (uint(i) * 8)
	}
	if s == 0 {
		s = 1
	}
	return s
}

// headingVec maps a grid heading in degrees to its unit direction vector.
// Off-grid headings map to zero.
func headingVec(deg float64) Vec2 {
	switch ((int(deg) % 360) + 360) % 360 {
	case 0:
		return Vec2{X: 1, Y: 0}
	case 90:
		return Vec2{X: 0, Y: 1}
	case 180:
		return Vec2{X: -1, Y: 0}
	case 270:
		return Vec2{X: 0, Y: -1}
	}
	return Vec2{}
}
