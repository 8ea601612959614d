package main

import "log"

// FollowPath advances the agent one kinematic step along its precomputed
// tile route and keeps the route state current. Instructions are tile
// indices ordered goal-first and consumed from the back: the last element
// is always the next target. The slice is owned by the caller and mutated
// in place. On arriving in a new tile the agent is snapped to that tile's
// center, the next target is popped, and the heading is reoriented toward
// it. An agent whose heading has been knocked off the 90-degree grid
// rejoins the route at its current tile if the route still lists it, or
// else at the entry with the nearest tile index, discarding everything
// past the rejoin point.
func FollowPath(agent *Entity, grid *TileGrid, instructions *[]int, dt float64) {
	if agent == nil || agent.Motion == nil || grid == nil || instructions == nil {
		log.Printf("pathfollow: agent or grid not initialized")
		return
	}
	m := agent.Motion

	pos := agent.Pos()
	curTX, curTY := grid.TileCoords(pos)
	curIndex := grid.Index(curTX, curTY)

	switch m.Heading {
	case 0:
		pos = MoveRight(pos, m.Speed, dt)
	case 90:
		pos = MoveDown(pos, m.Speed, dt)
	case 180:
		pos = MoveLeft(pos, m.Speed, dt)
	case 270:
		pos = MoveUp(pos, m.Speed, dt)
	}
	agent.SetPos(pos)

	if len(*instructions) == 0 {
		return // route exhausted
	}

	nextTX, nextTY := grid.TileCoords(pos)
	nextIndex := grid.Index(nextTX, nextTY)

	recovering := false
	if int(m.Heading)%90 != 0 {
		path := *instructions
		found := -1
		for i, idx := range path {
			if idx == curIndex {
				found = i
				break
			}
		}
		if found == -1 {
			// Rejoin at the numerically nearest index. This is positional,
			// not a grid-distance search: on a wide map it can pick a tile
			// on another corridor. Kept as the route-recovery rule.
			best := 0
			for i, idx := range path {
				if absInt(idx-curIndex) < absInt(path[best]-curIndex) {
					best = i
				}
			}
			found = best
			nextIndex = path[found]
			nextTX, nextTY = grid.CoordsOf(nextIndex)
		}
		*instructions = path[:found+1]
		m.Heading = 0
		recovering = true
	}

	if nextTX != curTX || nextTY != curTY || recovering {
		agent.SetPos(grid.TileCenter(nextTX, nextTY))

		if len(*instructions) > 0 {
			path := *instructions
			targetIndex := path[len(path)-1]
			targetTX, targetTY := grid.CoordsOf(targetIndex)

			if !recovering {
				*instructions = path[:len(path)-1]
			}

			if targetTX < nextTX {
				m.Heading = 180
			} else if targetTX > nextTX {
				m.Heading = 0
			} else if targetTY < nextTY {
				m.Heading = 270
			} else if targetTY > nextTY {
				m.Heading = 90
			}
		}
	}
}
