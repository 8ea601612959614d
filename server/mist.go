package main

const (
	MistSize  = 28.0
	MistSpeed = 26.0 // pixels/s drift
)

// Mist is a drifting bank of fog that blocks sentry sight lines
type Mist struct {
	Ent *Entity
}

// NewMist spawns a mist bank on the given tile drifting along one axis
func NewMist(grid *TileGrid, tile int) *Mist {
	tx, ty := grid.CoordsOf(tile)
	c := grid.TileCenter(tx, ty)

	// Random drift axis and sign
	dir := Vec2{X: 1}
	switch int(randFloat() * 4) {
	case 1:
		dir = Vec2{X: -1}
	case 2:
		dir = Vec2{Y: 1}
	case 3:
		dir = Vec2{Y: -1}
	}

	ent := &Entity{
		ID:     GenerateID(4),
		Kind:   KindMist,
		X:      c.X - MistSize/2,
		Y:      c.Y - MistSize/2,
		W:      MistSize,
		H:      MistSize,
		Radius: MistSize / 2,
		Frames: mistMasks(int(MistSize)),
		Motion: &Motion{Mobile: true, Dir: dir, Speed: MistSpeed, Accel: Vec2{1, 1}},
		Alive:  true,
	}
	return &Mist{Ent: ent}
}

// Update drifts the bank along its axis, reversing at walls
func (m *Mist) Update(dt float64, grid *TileGrid) {
	mo := m.Ent.Motion
	next := FollowDirVec(m.Ent.Pos(), mo.Dir, mo.Speed, dt, mo.Accel)
	if grid.BlockedRect(Rect{next.X, next.Y, m.Ent.W, m.Ent.H}) {
		mo.Dir = mo.Dir.Scale(-1)
		return
	}
	m.Ent.SetPos(next)
}

// Occluder returns the rect that blocks sentry sight lines
func (m *Mist) Occluder() Rect {
	return m.Ent.Box()
}

// ToState converts to protocol state
func (m *Mist) ToState() MistState {
	return MistState{
		ID: m.Ent.ID,
		X:  round1(m.Ent.X),
		Y:  round1(m.Ent.Y),
		W:  m.Ent.W,
		H:  m.Ent.H,
	}
}
