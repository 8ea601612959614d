package main

const WardRepelSpeed = 160.0 // pixels/s shove applied to sentries in range

// Ward is a placed light circle that repels sentries, dropped by the
// Pathfinder power
type Ward struct {
	ID      string
	X, Y    float64
	Radius  float64
	OwnerID string
	Life    float64
}

// NewWard creates a ward at the given position
func NewWard(x, y float64, ownerID string) *Ward {
	return &Ward{
		ID:      GenerateID(4),
		X:       x,
		Y:       y,
		Radius:  WardRadius,
		OwnerID: ownerID,
		Life:    WardDuration,
	}
}

// Update ticks the ward lifetime, returns false when expired
func (w *Ward) Update(dt float64) bool {
	w.Life -= dt
	return w.Life > 0
}

// ToState converts to protocol state
func (w *Ward) ToState() WardState {
	return WardState{
		ID:    w.ID,
		X:     round1(w.X),
		Y:     round1(w.Y),
		R:     w.Radius,
		Owner: w.OwnerID,
	}
}
