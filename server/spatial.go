package main

import "log"

const (
	QuadMaxObjects = 10 // objects a leaf holds before it splits
	QuadMaxLevels  = 5  // deepest nesting allowed
)

// Quadtree partitions borrowed entity references by bounding box for
// broad-phase collision queries. A node either holds references itself or
// has exactly four children; objects that intersect no single quadrant
// stay at the parent. The tree never owns the entities it indexes.
type Quadtree struct {
	Bounds   Rect
	level    int
	objects  []*Entity
	children []*Quadtree
}

// NewQuadtree creates an empty root covering the given region
func NewQuadtree(x, y, w, h float64) *Quadtree {
	return &Quadtree{Bounds: Rect{x, y, w, h}}
}

// Clear drops all object references and children, resetting to an empty leaf
func (q *Quadtree) Clear() {
	q.objects = nil
	q.children = nil
}

// Contains reports whether both corners of the box lie inside this node's
// bounds, edges inclusive. This is the test for whether a moved object
// still belongs to the node holding it.
func (q *Quadtree) Contains(b Rect) bool {
	return q.Bounds.ContainsPoint(b.X, b.Y) && q.Bounds.ContainsPoint(b.X+b.W, b.Y+b.H)
}

// Subdivide splits the node into four equal quadrants one level deeper
// and deals every held object to the first child whose bounds intersect
// it; objects intersecting no child stay behind. At the maximum depth
// this is a no-op.
func (q *Quadtree) Subdivide() {
	if q.level >= QuadMaxLevels {
		return
	}
	hw := q.Bounds.W / 2
	hh := q.Bounds.H / 2
	x := q.Bounds.X
	y := q.Bounds.Y
	q.children = []*Quadtree{
		{Bounds: Rect{x, y, hw, hh}, level: q.level + 1},
		{Bounds: Rect{x + hw, y, hw, hh}, level: q.level + 1},
		{Bounds: Rect{x, y + hh, hw, hh}, level: q.level + 1},
		{Bounds: Rect{x + hw, y + hh, hw, hh}, level: q.level + 1},
	}

	kept := q.objects[:0]
	for _, obj := range q.objects {
		inserted := false
		for _, child := range q.children {
			if child.Bounds.Intersects(obj.Box()) {
				child.objects = append(child.objects, obj)
				inserted = true
				break
			}
		}
		if !inserted {
			kept = append(kept, obj)
		}
	}
	q.objects = kept
}

// Insert places an object at the deepest node whose quadrant intersects
// it first, splitting any leaf that grows past the object threshold. An
// object intersecting no quadrant is kept at this node.
func (q *Quadtree) Insert(obj *Entity) {
	if obj == nil {
		return
	}
	if q.children != nil {
		for _, child := range q.children {
			if child.Bounds.Intersects(obj.Box()) {
				child.Insert(obj)
				return
			}
		}
		q.objects = append(q.objects, obj)
		return
	}
	q.objects = append(q.objects, obj)
	if len(q.objects) > QuadMaxObjects {
		q.Subdivide()
	}
}

// Query returns every object at or below this node whose bounding box
// intersects the region, child results concatenated after this node's
// own. A region missing the node's bounds comes back empty, and a fault
// inside the walk is absorbed into an empty result instead of taking
// down the frame loop.
func (q *Quadtree) Query(region Rect) (result []*Entity) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("quadtree: query recovered at level %d: %v", q.level, r)
			result = nil
		}
	}()

	if !q.Bounds.Intersects(region) {
		if q.level == 0 {
			log.Printf("quadtree: query region misses tree bounds, returning empty")
		}
		return nil
	}

	for _, obj := range q.objects {
		if region.Intersects(obj.Box()) {
			result = append(result, obj)
		}
	}
	for _, child := range q.children {
		result = append(result, child.Query(region)...)
	}
	return result
}

// Update re-homes every mobile object whose bounds moved since it was
// placed: the stale reference is pulled out of the node holding it and
// the object is inserted again from the root, so a reference never sits
// in two nodes at once. Call on the root once per frame after motion.
func (q *Quadtree) Update() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("quadtree: update recovered at level %d: %v", q.level, r)
		}
	}()

	moved := q.detachMobile()
	for _, obj := range moved {
		q.Insert(obj)
	}
}

// detachMobile removes and returns every mobile object at or below this node
func (q *Quadtree) detachMobile() []*Entity {
	var moved []*Entity
	kept := q.objects[:0]
	for _, obj := range q.objects {
		if obj.Mobile() {
			moved = append(moved, obj)
		} else {
			kept = append(kept, obj)
		}
	}
	q.objects = kept
	for _, child := range q.children {
		moved = append(moved, child.detachMobile()...)
	}
	return moved
}
