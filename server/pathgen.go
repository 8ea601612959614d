package main

import "container/heap"

// pathNode is one A* frontier entry
type pathNode struct {
	index int
	g, f  int
}

// nodeQueue is a min-heap over the f score
type nodeQueue []pathNode

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].f < q[j].f }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) {
	*q = append(*q, x.(pathNode))
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// GeneratePathInstructions runs A* over walkable tiles from start to goal
// and returns the route as tile indices ordered goal-first, ready to be
// consumed from the back by FollowPath. The start tile itself is not part
// of the route. Returns nil when either end is blocked or unreachable.
func GeneratePathInstructions(g *TileGrid, start, goal int) []int {
	if g == nil || !g.Walkable(start) || !g.Walkable(goal) || start == goal {
		return nil
	}

	gx, gy := g.CoordsOf(goal)
	manhattan := func(i int) int {
		x, y := g.CoordsOf(i)
		return absInt(x-gx) + absInt(y-gy)
	}

	gScore := map[int]int{start: 0}
	cameFrom := make(map[int]int)
	closed := make(map[int]bool)

	open := &nodeQueue{{index: start, g: 0, f: manhattan(start)}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(pathNode)
		if cur.index == goal {
			route := []int{goal}
			for at := goal; ; {
				prev, ok := cameFrom[at]
				if !ok || prev == start {
					break
				}
				route = append(route, prev)
				at = prev
			}
			return route
		}
		if closed[cur.index] {
			continue
		}
		closed[cur.index] = true

		cx, cy := g.CoordsOf(cur.index)
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cx+d[0], cy+d[1]
			if !g.InBounds(nx, ny) {
				continue
			}
			ni := g.Index(nx, ny)
			if !g.Walkable(ni) || closed[ni] {
				continue
			}
			tentative := cur.g + 1
			if prev, ok := gScore[ni]; ok && tentative >= prev {
				continue
			}
			gScore[ni] = tentative
			cameFrom[ni] = cur.index
			heap.Push(open, pathNode{index: ni, g: tentative, f: tentative + manhattan(ni)})
		}
	}
	return nil
}
