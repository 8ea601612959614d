package main

import "math"

const (
	JumpDuration        = 0.8 // seconds, full vault arc
	SurfaceJumpDuration = 0.4 // seconds, bob arc
)

// JumpState is the caller-owned accumulator for the jump helpers. Elapsed
// advances by dt on every call and resets to zero once the arc completes;
// Start is captured on first use by JumpToSurface and is the height the
// arc returns to.
type JumpState struct {
	Elapsed float64
	Start   Vec2
	Started bool
}

// FreeFall drops the position straight down by speed*dt
func FreeFall(pos Vec2, speed, dt float64) Vec2 {
	pos.Y += speed * dt
	return pos
}

// FollowDirVec advances the position along dir, scaled per axis by the
// acceleration vector
func FollowDirVec(pos, dir Vec2, speed, dt float64, accel Vec2) Vec2 {
	pos.X += dir.X * speed * dt * accel.X
	pos.Y += dir.Y * speed * dt * accel.Y
	return pos
}

// FollowDirVecOpposite advances the position against dir, scaled per axis
// by the acceleration vector
func FollowDirVecOpposite(pos, dir Vec2, speed, dt float64, accel Vec2) Vec2 {
	pos.X -= dir.X * speed * dt * accel.X
	pos.Y -= dir.Y * speed * dt * accel.Y
	return pos
}

// MoveLeft shifts the position left by speed*dt
func MoveLeft(pos Vec2, speed, dt float64) Vec2 {
	pos.X -= speed * dt
	return pos
}

// MoveRight shifts the position right by speed*dt
func MoveRight(pos Vec2, speed, dt float64) Vec2 {
	pos.X += speed * dt
	return pos
}

// MoveUp shifts the position up by speed*dt
func MoveUp(pos Vec2, speed, dt float64) Vec2 {
	pos.Y -= speed * dt
	return pos
}

// MoveDown shifts the position down by speed*dt
func MoveDown(pos Vec2, speed, dt float64) Vec2 {
	pos.Y += speed * dt
	return pos
}

// Jump advances one step of the vault arc: height rises over the first
// half of the duration and falls back over the second half while x keeps
// advancing at full speed. Once the duration is exceeded the accumulator
// resets and y is rounded to cancel accumulated float drift.
func Jump(js *JumpState, pos Vec2, speed, dt float64, accel Vec2, gravity float64) Vec2 {
	js.Elapsed += dt
	half := JumpDuration / 2
	if js.Elapsed <= JumpDuration {
		if js.Elapsed <= half {
			pos.Y -= speed * dt * (1 - js.Elapsed/half) * accel.Y * gravity
		} else {
			pos.Y += speed * dt * ((js.Elapsed - half) / half) * accel.Y * gravity
		}
		pos.X += speed * dt
	} else {
		js.Elapsed = 0
		pos.Y = math.Round(pos.Y)
	}
	return pos
}

// JumpToSurface advances one step of an in-place bob: a symmetric arc of
// height speed*accel.y*gravity above the start position captured on first
// use, landing back exactly at the start height.
func JumpToSurface(js *JumpState, pos Vec2, speed, dt float64, accel Vec2, gravity float64) Vec2 {
	if !js.Started {
		js.Start = pos
		js.Started = true
	}
	js.Elapsed += dt
	half := SurfaceJumpDuration / 2
	height := speed * accel.Y * gravity
	if js.Elapsed <= SurfaceJumpDuration {
		if js.Elapsed <= half {
			pos.Y = js.Start.Y - height*(js.Elapsed/half)
		} else {
			pos.Y = js.Start.Y - height + height*((js.Elapsed-half)/half)
		}
	} else {
		js.Elapsed = 0
		pos.Y = js.Start.Y
	}
	return pos
}
