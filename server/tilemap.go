package main

// Tile is one cell of the maze grid
type Tile struct {
	Walkable bool
}

// TileGrid is the row-major tile world. Physics and projection read it;
// only the game flips walkable flags (the goal gate).
type TileGrid struct {
	Cols, Rows   int
	TileW, TileH float64
	Origin       Vec2
	Tiles        []Tile
}

// NewTileGrid creates a grid of blocking tiles
func NewTileGrid(cols, rows int, tileW, tileH float64, origin Vec2) *TileGrid {
	return &TileGrid{
		Cols:   cols,
		Rows:   rows,
		TileW:  tileW,
		TileH:  tileH,
		Origin: origin,
		Tiles:  make([]Tile, cols*rows),
	}
}

// Width returns the grid extent in world units
func (g *TileGrid) Width() float64 {
	return float64(g.Cols) * g.TileW
}

// Height returns the grid extent in world units
func (g *TileGrid) Height() float64 {
	return float64(g.Rows) * g.TileH
}

// InBounds reports whether the tile coordinates are on the grid
func (g *TileGrid) InBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < g.Cols && ty < g.Rows
}

// Index returns the row-major index of tile coordinates
func (g *TileGrid) Index(tx, ty int) int {
	return ty*g.Cols + tx
}

// CoordsOf returns the tile coordinates of a row-major index
func (g *TileGrid) CoordsOf(i int) (int, int) {
	return i % g.Cols, i / g.Cols
}

// TileCoords converts a world position to tile coordinates
func (g *TileGrid) TileCoords(p Vec2) (int, int) {
	tx := int((p.X - g.Origin.X) / g.TileW)
	ty := int((p.Y - g.Origin.Y) / g.TileH)
	return tx, ty
}

// TileIndex converts a world position to a row-major tile index
func (g *TileGrid) TileIndex(p Vec2) int {
	tx, ty := g.TileCoords(p)
	return g.Index(tx, ty)
}

// TileCenter returns the world center of the tile at coordinates
func (g *TileGrid) TileCenter(tx, ty int) Vec2 {
	return Vec2{
		X: g.Origin.X + float64(tx)*g.TileW + g.TileW/2,
		Y: g.Origin.Y + float64(ty)*g.TileH + g.TileH/2,
	}
}

// Walkable reports whether the tile at the index can be entered; indices
// off the grid read as blocking
func (g *TileGrid) Walkable(i int) bool {
	if i < 0 || i >= len(g.Tiles) {
		return false
	}
	return g.Tiles[i].Walkable
}

// SetWalkable flips the walkable flag at the index
func (g *TileGrid) SetWalkable(i int, v bool) {
	if i < 0 || i >= len(g.Tiles) {
		return
	}
	g.Tiles[i].Walkable = v
}

// BlockedRect reports whether the world rect touches any blocking tile or
// pokes off the grid. Movement code calls this before committing a step.
func (g *TileGrid) BlockedRect(r Rect) bool {
	minTX := int((r.X - g.Origin.X) / g.TileW)
	minTY := int((r.Y - g.Origin.Y) / g.TileH)
	maxTX := int((r.X + r.W - g.Origin.X) / g.TileW)
	maxTY := int((r.Y + r.H - g.Origin.Y) / g.TileH)
	for ty := minTY; ty <= maxTY; ty++ {
		for tx := minTX; tx <= maxTX; tx++ {
			if !g.InBounds(tx, ty) {
				return true
			}
			if !g.Tiles[g.Index(tx, ty)].Walkable {
				return true
			}
		}
	}
	return false
}
