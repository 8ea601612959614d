package main

import "math"

// RaycastCache accumulates predictive-collision diagnostics for one game:
// how many closest-approach solves ran and every computed approach time,
// in call order. Append-only; owned by the game loop and passed explicitly
// so runs stay isolated.
type RaycastCache struct {
	Evaluations int
	Times       []float64
}

// CheckCircleCollision checks if two circles overlap; touching counts
func CheckCircleCollision(pos1 Vec2, r1 float64, pos2 Vec2, r2 float64) bool {
	dx := pos1.X - pos2.X
	dy := pos1.Y - pos2.Y
	radSum := r1 + r2
	return dx*dx+dy*dy <= radSum*radSum
}

// CheckBoxCollision checks if two axis-aligned boxes overlap with strictly
// positive area on both axes; touching edges do not collide.
func CheckBoxCollision(pos1, size1, pos2, size2 Vec2) bool {
	xStart := math.Max(pos1.X, pos2.X)
	yStart := math.Max(pos1.Y, pos2.Y)
	xEnd := math.Min(pos1.X+size1.X, pos2.X+size2.X)
	yEnd := math.Min(pos1.Y+size1.Y, pos2.Y+size2.Y)
	return !(xStart >= xEnd || yStart >= yEnd)
}

// CheckPixelCollision checks two masked sprites pixel by pixel over their
// box overlap, short-circuiting on the first pair of solid pixels. A
// zero-area overlap reports no collision without touching the masks.
func CheckPixelCollision(m1 Mask, pos1, size1 Vec2, m2 Mask, pos2, size2 Vec2) bool {
	left := math.Max(pos1.X, pos2.X)
	top := math.Max(pos1.Y, pos2.Y)
	right := math.Min(pos1.X+size1.X, pos2.X+size2.X)
	bottom := math.Min(pos1.Y+size1.Y, pos2.Y+size2.Y)

	if left >= right || top >= bottom {
		return false
	}

	for y := int(top); y < int(bottom); y++ {
		for x := int(left); x < int(right); x++ {
			x1 := x - int(pos1.X)
			y1 := y - int(pos1.Y)
			x2 := x - int(pos2.X)
			y2 := y - int(pos2.Y)
			if m1.Solid(x1, y1) && m2.Solid(x2, y2) {
				return true
			}
		}
	}
	return false
}

// rotatePoint rotates (x, y) around the local origin by angle in degrees
func rotatePoint(x, y, angle float64) (float64, float64) {
	rad := angle * math.Pi / 180
	c := math.Cos(rad)
	s := math.Sin(rad)
	return x*c - y*s, x*s + y*c
}

// CheckPixelCollisionRotated is the pixel test for sprites drawn at a
// rotation: each overlap pixel is mapped into the sprite's unrotated local
// frame by rotating through the negated angle before the mask lookup.
func CheckPixelCollisionRotated(m1 Mask, pos1, size1 Vec2, angle1 float64, m2 Mask, pos2, size2 Vec2, angle2 float64) bool {
	left := math.Max(pos1.X, pos2.X)
	top := math.Max(pos1.Y, pos2.Y)
	right := math.Min(pos1.X+size1.X, pos2.X+size2.X)
	bottom := math.Min(pos1.Y+size1.Y, pos2.Y+size2.Y)

	if left >= right || top >= bottom {
		return false
	}

	for y := int(top); y < int(bottom); y++ {
		for x := int(left); x < int(right); x++ {
			rx1, ry1 := rotatePoint(float64(x-int(pos1.X)), float64(y-int(pos1.Y)), -angle1)
			rx2, ry2 := rotatePoint(float64(x-int(pos2.X)), float64(y-int(pos2.Y)), -angle2)
			if m1.Solid(int(rx1), int(ry1)) && m2.Solid(int(rx2), int(ry2)) {
				return true
			}
		}
	}
	return false
}

// CheckPredictiveCollision solves for the time both bodies' motions come
// closest, given each body's position, direction, speed and acceleration.
// Zero relative motion reports false without touching the cache. With no
// relative acceleration the linear closest-approach time is used as-is;
// otherwise the quadratic is solved and a negative discriminant or a
// closest approach in the past reports false. On success the time is
// appended to the cache.
func CheckPredictiveCollision(cache *RaycastCache, pos1, dir1 Vec2, speed1 float64, accel1 Vec2, pos2, dir2 Vec2, speed2 float64, accel2 Vec2) bool {
	relVel := dir1.Scale(speed1).Sub(dir2.Scale(speed2))
	relPos := pos1.Sub(pos2)
	relAcc := accel1.Sub(accel2)

	velDot := relVel.Dot(relVel)
	posVelDot := relPos.Dot(relVel)

	if velDot == 0 && relAcc.X == 0 && relAcc.Y == 0 {
		return false
	}
	if cache != nil {
		cache.Evaluations++
	}

	var approach float64
	if relAcc.X == 0 && relAcc.Y == 0 {
		if velDot == 0 {
			return false
		}
		approach = -posVelDot / velDot
	} else {
		a := 0.5 * relAcc.Dot(relAcc)
		b := relVel.Dot(relAcc)
		c := relPos.Dot(relVel)

		disc := b*b - 4*a*c
		if disc < 0 {
			return false
		}
		sq := math.Sqrt(disc)
		approach = math.Min((-b-sq)/(2*a), (-b+sq)/(2*a))
		if approach < 0 {
			return false
		}
	}

	if cache != nil {
		cache.Times = append(cache.Times, approach)
	}
	return true
}
