package main

const (
	FlareSize     = 8.0
	FlareRadius   = 4.0
	FlareLifetime = 1.4  // seconds
	FlareOffset   = 18.0 // spawn distance from runner center
)

// Flare is a thrown light that stuns sentries on contact
type Flare struct {
	Ent     *Entity
	OwnerID string
	Life    float64
}

// NewFlare creates a flare from a runner's position and heading
func NewFlare(owner *Runner) *Flare {
	kd := GetKitDef(owner.Kit)
	dir := headingVec(owner.Ent.Motion.Heading)
	c := owner.Ent.Center()
	ent := &Entity{
		ID:     GenerateID(3),
		Kind:   KindFlare,
		X:      c.X + dir.X*FlareOffset - FlareSize/2,
		Y:      c.Y + dir.Y*FlareOffset - FlareSize/2,
		W:      FlareSize,
		H:      FlareSize,
		Radius: FlareRadius,
		Frames: flareMasks(int(FlareSize)),
		Motion: &Motion{
			Mobile:  true,
			Dir:     dir,
			Speed:   kd.FlareSpeed,
			Accel:   Vec2{1, 1},
			Heading: owner.Ent.Motion.Heading,
		},
		Alive: true,
	}
	return &Flare{
		Ent:     ent,
		OwnerID: owner.Ent.ID,
		Life:    FlareLifetime,
	}
}

// Update moves the flare one tick; it burns out on walls or when its
// lifetime runs down
func (f *Flare) Update(dt float64, grid *TileGrid) {
	if !f.Ent.Alive {
		return
	}
	m := f.Ent.Motion
	next := FollowDirVec(f.Ent.Pos(), m.Dir, m.Speed, dt, m.Accel)
	if grid.BlockedRect(Rect{next.X, next.Y, f.Ent.W, f.Ent.H}) {
		f.Ent.Alive = false
		return
	}
	f.Ent.SetPos(next)
	f.Life -= dt
	if f.Life <= 0 {
		f.Ent.Alive = false
	}
}

// ToState converts to protocol state
func (f *Flare) ToState() FlareState {
	return FlareState{
		ID:    f.Ent.ID,
		X:     round1(f.Ent.X),
		Y:     round1(f.Ent.Y),
		H:     f.Ent.Motion.Heading,
		Owner: f.OwnerID,
	}
}
