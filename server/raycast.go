package main

import (
	"log"
	"math"
)

const (
	RayStepSize     = 1.0    // world units marched per sample
	MaxRayDistance  = 1000.0 // travel cap before a ray gives up
	WallHeightScale = 2500.0 // projected strip height at corrected distance 1
	ShadeFalloff    = 100.0  // corrected distance where brightness bottoms out
	ShadeFloor      = 0.2    // minimum brightness factor
)

// RaySegment is one cast ray in world coordinates, agent to final sample,
// for the overhead debug view
type RaySegment struct {
	X1, Y1 float64
	X2, Y2 float64
}

// WallStrip is one shaded vertical slice of the projected first-person
// view, in view coordinates
type WallStrip struct {
	X, Y  float64
	W, H  float64
	Shade uint8
}

// CastView casts rayCount rays across the field of view centered on the
// agent's heading and projects wall hits into view-space strips. Each ray
// marches in fixed steps until it meets a blocking tile, leaves the grid
// or runs out of travel. Hits are fisheye-corrected by the cosine of the
// ray's offset from the heading (floored at 1 to keep the projection
// finite), strip height falls off inversely with corrected distance and
// shade decays linearly down to a floor. Every ray yields a debug
// segment; only hits yield strips.
func CastView(agent *Entity, grid *TileGrid, fov float64, rayCount int, viewW, viewH float64) ([]RaySegment, []WallStrip) {
	if agent == nil || agent.Motion == nil || grid == nil {
		log.Printf("raycast: agent or grid not initialized")
		return nil, nil
	}
	if rayCount <= 0 {
		return nil, nil
	}

	startX := agent.X
	startY := agent.Y
	heading := agent.Motion.Heading

	angleStep := fov / float64(rayCount)
	sliceWidth := viewW / float64(rayCount)
	centerY := viewH / 2

	segments := make([]RaySegment, rayCount)
	var strips []WallStrip

	for i := 0; i < rayCount; i++ {
		angleOffset := (float64(i) - float64(rayCount)/2) * angleStep
		rayAngle := heading + angleOffset
		rad := rayAngle * math.Pi / 180
		dirX := math.Cos(rad)
		dirY := math.Sin(rad)

		rayX := startX
		rayY := startY
		segments[i] = RaySegment{startX, startY, startX, startY}

		hit := false
		dist := 0.0
		for !hit && dist < MaxRayDistance {
			rayX += dirX * RayStepSize
			rayY += dirY * RayStepSize
			dist += RayStepSize

			tx, ty := grid.TileCoords(Vec2{rayX, rayY})
			if !grid.InBounds(tx, ty) {
				break
			}
			segments[i] = RaySegment{startX, startY, rayX, rayY}

			if !grid.Walkable(grid.Index(tx, ty)) {
				hit = true

				corrected := dist * math.Cos((rayAngle-heading)*math.Pi/180)
				corrected = math.Max(1.0, corrected)

				wallHeight := WallHeightScale / corrected
				brightness := math.Max(ShadeFloor, 1.0-corrected/ShadeFalloff)
				shade := uint8(50 + 150*brightness)

				strips = append(strips, WallStrip{
					X:     float64(i) * sliceWidth,
					Y:     centerY - wallHeight/2,
					W:     sliceWidth,
					H:     wallHeight,
					Shade: shade,
				})
			}
		}
	}
	return segments, strips
}

// LineOfSight marches a single ray between two points and reports whether
// it stays on walkable tiles and clear of the occluder rects. Used for
// sentry vision checks; mist banks pass their bounds as occluders.
func LineOfSight(grid *TileGrid, from, to Vec2, occluders []Rect) bool {
	if grid == nil {
		return false
	}
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return true
	}
	dirX := dx / dist
	dirY := dy / dist

	x := from.X
	y := from.Y
	for traveled := 0.0; traveled < dist && traveled < MaxRayDistance; traveled += RayStepSize {
		x += dirX * RayStepSize
		y += dirY * RayStepSize

		tx, ty := grid.TileCoords(Vec2{x, y})
		if !grid.InBounds(tx, ty) {
			return false
		}
		if !grid.Walkable(grid.Index(tx, ty)) {
			return false
		}
		for _, oc := range occluders {
			if oc.ContainsPoint(x, y) {
				return false
			}
		}
	}
	return true
}
