package main

const (
	CoinSize      = 14.0
	CoinValue     = 1
	CoinBobSpeed  = 6.0 // arc height in pixels via the surface-jump helper
	CoinFrames    = 6
	CoinFrameTime = 0.12
)

// Coin bobs in place on the corridor floor and is picked up on pixel
// contact
type Coin struct {
	Ent *Entity
}

// NewCoin spawns a coin centered on the given tile
func NewCoin(grid *TileGrid, tile int) *Coin {
	tx, ty := grid.CoordsOf(tile)
	c := grid.TileCenter(tx, ty)
	ent := &Entity{
		ID:     GenerateID(4),
		Kind:   KindCoin,
		X:      c.X - CoinSize/2,
		Y:      c.Y - CoinSize/2,
		W:      CoinSize,
		H:      CoinSize,
		Radius: CoinSize / 2,
		Frames: coinMasks(int(CoinSize), CoinFrames),
		Motion: &Motion{Mobile: true, Speed: CoinBobSpeed, Accel: Vec2{1, 1}},
		Anim:   &Anim{Interval: CoinFrameTime},
		Alive:  true,
	}
	return &Coin{Ent: ent}
}

// Update advances the bob arc and the spin animation. The surface-jump
// accumulator re-arms itself every cycle, so the coin loops forever.
func (c *Coin) Update(dt float64, gravity float64) {
	if !c.Ent.Alive {
		return
	}
	m := c.Ent.Motion
	c.Ent.SetPos(JumpToSurface(&m.Jump, c.Ent.Pos(), m.Speed, dt, m.Accel, gravity))
	c.Ent.Anim.Advance(dt, CoinFrames)
}

// ToState converts to protocol state
func (c *Coin) ToState() CoinState {
	return CoinState{
		ID:    c.Ent.ID,
		X:     round1(c.Ent.X),
		Y:     round1(c.Ent.Y),
		Frame: c.Ent.Anim.Frame,
	}
}
