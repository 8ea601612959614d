package main

// Maze algorithms selectable per session
const (
	MazeAlgorithmDFS  = "dfs"
	MazeAlgorithmPrim = "prim"
)

// mazeRand is a small xorshift source with an explicit seed so a
// session's maze can be reproduced from its recorded seed
type mazeRand struct {
	state uint64
}

func newMazeRand(seed uint64) *mazeRand {
	if seed == 0 {
		seed = 1
	}
	return &mazeRand{state: seed}
}

func (r *mazeRand) next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	if r.state == 0 {
		r.state = 1
	}
	return r.state
}

func (r *mazeRand) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

// GenerateMaze carves a maze into a fresh grid and returns it together
// with the start and goal tile indices. Dimensions are rounded up to odd
// so the wall lattice closes; the outer ring always stays solid. The
// algorithm is "dfs" (long winding corridors) or "prim" (short branchy
// ones).
func GenerateMaze(cols, rows int, tileW, tileH float64, origin Vec2, algorithm string, seed uint64) (*TileGrid, int, int) {
	if cols < 5 {
		cols = 5
	}
	if rows < 5 {
		rows = 5
	}
	if cols%2 == 0 {
		cols++
	}
	if rows%2 == 0 {
		rows++
	}

	g := NewTileGrid(cols, rows, tileW, tileH, origin)
	rng := newMazeRand(seed)

	switch algorithm {
	case MazeAlgorithmPrim:
		carvePrim(g, rng)
	default:
		carveDFS(g, rng)
	}

	start := g.Index(1, 1)
	goal := g.Index(cols-2, rows-2)
	g.Tiles[start].Walkable = true
	g.Tiles[goal].Walkable = true
	return g, start, goal
}

// carveDFS runs a depth-first backtracker over the odd-coordinate cell
// lattice, knocking out the wall tile between each visited pair
func carveDFS(g *TileGrid, rng *mazeRand) {
	type cell struct{ x, y int }
	dirs := [4][2]int{{2, 0}, {-2, 0}, {0, 2}, {0, -2}}

	g.Tiles[g.Index(1, 1)].Walkable = true
	stack := []cell{{1, 1}}

	for len(stack) > 0 {
		c := stack[len(stack)-1]

		var options [][2]int
		for _, d := range dirs {
			nx, ny := c.x+d[0], c.y+d[1]
			if nx > 0 && ny > 0 && nx < g.Cols-1 && ny < g.Rows-1 && !g.Tiles[g.Index(nx, ny)].Walkable {
				options = append(options, [2]int{nx, ny})
			}
		}
		if len(options) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		n := options[rng.intn(len(options))]
		g.Tiles[g.Index((c.x+n[0])/2, (c.y+n[1])/2)].Walkable = true
		g.Tiles[g.Index(n[0], n[1])].Walkable = true
		stack = append(stack, cell{n[0], n[1]})
	}
}

// carvePrim grows the maze from a random frontier edge at a time, which
// yields denser branching than the backtracker
func carvePrim(g *TileGrid, rng *mazeRand) {
	type edge struct{ fx, fy, tx, ty int }
	dirs := [4][2]int{{2, 0}, {-2, 0}, {0, 2}, {0, -2}}

	var frontier []edge
	addFrontier := func(x, y int) {
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx > 0 && ny > 0 && nx < g.Cols-1 && ny < g.Rows-1 && !g.Tiles[g.Index(nx, ny)].Walkable {
				frontier = append(frontier, edge{x, y, nx, ny})
			}
		}
	}

	g.Tiles[g.Index(1, 1)].Walkable = true
	addFrontier(1, 1)

	for len(frontier) > 0 {
		i := rng.intn(len(frontier))
		e := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if g.Tiles[g.Index(e.tx, e.ty)].Walkable {
			continue
		}
		g.Tiles[g.Index((e.fx+e.tx)/2, (e.fy+e.ty)/2)].Walkable = true
		g.Tiles[g.Index(e.tx, e.ty)].Walkable = true
		addFrontier(e.tx, e.ty)
	}
}
