package main

// Entity kind tags
const (
	KindRunner byte = 'r'
	KindSentry byte = 's'
	KindFlare  byte = 'f'
	KindCoin   byte = 'c'
	KindMist   byte = 'm'
	KindPlate  byte = 'p'
	KindWard   byte = 'w'
)

// Entity is the one shared record for everything placed in the world.
// Capabilities are optional: Motion is nil for fixtures that never move,
// Anim is nil for single-frame bodies. The physics side only ever borrows
// *Entity references; ownership stays with the game object that embeds it.
type Entity struct {
	ID     string
	Kind   byte
	X, Y   float64 // top-left corner, world units
	W, H   float64 // bounding box extent
	Radius float64 // broad-phase circle, centered in the box
	Frames []Mask  // per-animation-frame opacity masks
	Motion *Motion
	Anim   *Anim
	Alive  bool
}

// Motion is the movement capability: direction, speed and per-axis
// acceleration feed the kinematics helpers, Heading drives path-follow
// and ray projection.
type Motion struct {
	Mobile  bool
	Dir     Vec2
	Speed   float64
	Accel   Vec2
	Heading float64 // degrees, 0=right 90=down 180=left 270=up
	Jump    JumpState
}

// Anim is the animation capability
type Anim struct {
	Frame    int
	Elapsed  float64
	Interval float64 // seconds per frame
}

// Advance steps the frame counter, wrapping over n frames
func (a *Anim) Advance(dt float64, n int) {
	if n <= 0 {
		return
	}
	a.Elapsed += dt
	for a.Elapsed >= a.Interval && a.Interval > 0 {
		a.Elapsed -= a.Interval
		a.Frame = (a.Frame + 1) % n
	}
}

// Pos returns the entity position
func (e *Entity) Pos() Vec2 {
	return Vec2{e.X, e.Y}
}

// SetPos writes the entity position
func (e *Entity) SetPos(p Vec2) {
	e.X = p.X
	e.Y = p.Y
}

// Size returns the bounding box extent
func (e *Entity) Size() Vec2 {
	return Vec2{e.W, e.H}
}

// Box returns the axis-aligned bounding box
func (e *Entity) Box() Rect {
	return Rect{e.X, e.Y, e.W, e.H}
}

// Center returns the bounding box center
func (e *Entity) Center() Vec2 {
	return Vec2{e.X + e.W/2, e.Y + e.H/2}
}

// Mobile reports whether the entity carries an active motion capability
func (e *Entity) Mobile() bool {
	return e.Motion != nil && e.Motion.Mobile
}

// MaskAt returns the opacity mask for the given frame index, or an empty
// mask when the index is out of range
func (e *Entity) MaskAt(i int) Mask {
	if i < 0 || i >= len(e.Frames) {
		return Mask{}
	}
	return e.Frames[i]
}

// CurrentMask returns the mask for the current animation frame
func (e *Entity) CurrentMask() Mask {
	if e.Anim == nil {
		return e.MaskAt(0)
	}
	return e.MaskAt(e.Anim.Frame)
}
