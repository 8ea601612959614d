package main

const PlateSize = 24.0

// Plate is a floor switch; pressing it opens the gate tile guarding the
// goal
type Plate struct {
	Ent       *Entity
	GateIndex int
	Pressed   bool
}

// NewPlate places the plate on a tile, wired to the gate it opens
func NewPlate(grid *TileGrid, tile, gate int) *Plate {
	tx, ty := grid.CoordsOf(tile)
	c := grid.TileCenter(tx, ty)
	ent := &Entity{
		ID:     GenerateID(4),
		Kind:   KindPlate,
		X:      c.X - PlateSize/2,
		Y:      c.Y - PlateSize/2,
		W:      PlateSize,
		H:      PlateSize,
		Radius: PlateSize / 2,
		Frames: plateMasks(int(PlateSize)),
		Alive:  true,
	}
	return &Plate{Ent: ent, GateIndex: gate}
}

// Press latches the plate and opens the gate. Returns true on the first
// press only.
func (p *Plate) Press(grid *TileGrid) bool {
	if p.Pressed {
		return false
	}
	p.Pressed = true
	grid.SetWalkable(p.GateIndex, true)
	return true
}

// ToState converts to protocol state
func (p *Plate) ToState() PlateState {
	return PlateState{
		ID:      p.Ent.ID,
		X:       round1(p.Ent.X),
		Y:       round1(p.Ent.Y),
		Pressed: p.Pressed,
	}
}
