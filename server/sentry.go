package main

import "math/rand"

const (
	SentrySize          = 26.0
	SentryRadius        = 13.0
	SentryPatrolSpeed   = 90.0
	SentryChaseSpeed    = 130.0
	SentryDetectRange   = 160.0 // 5 tiles
	SentryDetectRangeSq = SentryDetectRange * SentryDetectRange
	SentryAlertMul      = 1.5 // detect range multiplier while alerted
	SentryReplanTime    = 0.5 // seconds between chase replans
	SentryStunTime      = 1.2 // seconds of recoil after a flare hit
	SentryRecoilSpeed   = 220.0
	SentrySpinOffset    = 37.0 // degrees knocked off the grid by a hit
	SentryAlertTime     = 2.5  // seconds of alert after a flare warning
	SentryFrameTime     = 0.25
	SentryPhraseChance  = 0.2 // 20% chance of a callout on state change
)

// Sentry phrase pools keyed by situation
var sentryPhrases = map[string][]string{
	"spotted": {
		"🔦 Intruder!",
		"👁 I see you, runner!",
		"⚠ Halt!",
		"😠 There you are!",
		"🚨 Runner loose!",
	},
	"lost": {
		"🤔 Gone...",
		"👻 Lost them in the mist...",
		"❓ Where did they turn?",
		"😤 Slippery one.",
	},
	"struck": {
		"💥 Agh, my eyes!",
		"😵 Can't see!",
		"🔆 Too bright!",
		"🫨 What was that?!",
	},
}

// pickPhrase randomly selects a phrase from a pool (with chance gate)
func pickPhrase(pool string, chance float64) string {
	if rand.Float64() > chance {
		return ""
	}
	phrases := sentryPhrases[pool]
	if len(phrases) == 0 {
		return ""
	}
	return phrases[rand.Intn(len(phrases))]
}

// pickPhraseAlways selects a phrase without chance gate
func pickPhraseAlways(pool string) string {
	phrases := sentryPhrases[pool]
	if len(phrases) == 0 {
		return ""
	}
	return phrases[rand.Intn(len(phrases))]
}

// Sentry is an AI guard walking the maze corridors
type Sentry struct {
	Ent       *Entity
	Patrol    []int // waypoint tiles, cycled forever
	patrolIdx int
	Route     []int
	Chasing   bool
	TargetID  string
	ReplanT   float64 // time until the next chase replan
	Alert     float64 // alert timer from a flare warning
	Stunned   float64 // recoil timer after a flare hit
	recoilDir Vec2

	// State tracking for phrases
	WasChasing    bool
	PendingPhrase string // phrase to broadcast this tick
}

// NewSentry spawns a sentry on its home tile with a patrol loop
func NewSentry(grid *TileGrid, home int, patrol []int) *Sentry {
	tx, ty := grid.CoordsOf(home)
	c := grid.TileCenter(tx, ty)
	ent := &Entity{
		ID:     GenerateID(4),
		Kind:   KindSentry,
		X:      c.X - SentrySize/2,
		Y:      c.Y - SentrySize/2,
		W:      SentrySize,
		H:      SentrySize,
		Radius: SentryRadius,
		Frames: sentryMasks(int(SentrySize)),
		Motion: &Motion{Mobile: true, Speed: SentryPatrolSpeed, Accel: Vec2{1, 1}},
		Anim:   &Anim{Interval: SentryFrameTime},
		Alive:  true,
	}
	return &Sentry{Ent: ent, Patrol: patrol}
}

// Update steers the sentry one tick: chase the nearest visible runner,
// otherwise walk the patrol loop
func (s *Sentry) Update(dt float64, grid *TileGrid, runners map[string]*Runner, occluders []Rect) {
	if !s.Ent.Alive {
		return
	}

	s.PendingPhrase = ""
	if s.Alert > 0 {
		s.Alert -= dt
	}

	if s.Stunned > 0 {
		s.Stunned -= dt
		next := FollowDirVec(s.Ent.Pos(), s.recoilDir, SentryRecoilSpeed, dt, s.Ent.Motion.Accel)
		if !grid.BlockedRect(Rect{next.X, next.Y, s.Ent.W, s.Ent.H}) {
			s.Ent.SetPos(next)
		}
		return
	}

	// Nearest runner the sentry can actually see: within detect range and
	// with a clear ray (walls and mist banks both block)
	detect := SentryDetectRange
	if s.Alert > 0 {
		detect *= SentryAlertMul
	}
	var target *Runner
	best := detect * detect
	c := s.Ent.Center()
	for _, r := range runners {
		if r.Falling || r.Finished {
			continue
		}
		rc := r.Ent.Center()
		dx := rc.X - c.X
		dy := rc.Y - c.Y
		d2 := dx*dx + dy*dy
		if d2 > best {
			continue
		}
		if !LineOfSight(grid, c, rc, occluders) {
			continue
		}
		best = d2
		target = r
	}

	m := s.Ent.Motion
	if target != nil {
		// State transition: started chasing
		if !s.WasChasing {
			s.PendingPhrase = pickPhrase("spotted", SentryPhraseChance)
		}
		s.WasChasing = true
		s.Chasing = true
		s.TargetID = target.Ent.ID
		m.Speed = SentryChaseSpeed

		s.ReplanT -= dt
		if s.ReplanT <= 0 || len(s.Route) == 0 {
			from := grid.TileIndex(c)
			to := grid.TileIndex(target.Ent.Center())
			s.Route = GeneratePathInstructions(grid, from, to)
			s.ReplanT = SentryReplanTime
		}
	} else {
		// State transition: lost the runner
		if s.WasChasing {
			s.PendingPhrase = pickPhrase("lost", SentryPhraseChance)
		}
		s.WasChasing = false
		s.Chasing = false
		s.TargetID = ""
		m.Speed = SentryPatrolSpeed

		if len(s.Route) == 0 && len(s.Patrol) > 0 {
			from := grid.TileIndex(c)
			to := s.Patrol[s.patrolIdx]
			s.patrolIdx = (s.patrolIdx + 1) % len(s.Patrol)
			s.Route = GeneratePathInstructions(grid, from, to)
		}
	}

	FollowPath(s.Ent, grid, &s.Route, dt)
	s.Ent.Anim.Advance(dt, len(s.Ent.Frames))
}

// TakeHit knocks the sentry into a recoil along the flare's travel
// direction and spins its heading off the 90 degree grid, forcing path
// recovery once the stun wears off
func (s *Sentry) TakeHit(dir Vec2) {
	s.Stunned = SentryStunTime
	s.recoilDir = dir
	s.Ent.Motion.Heading += SentrySpinOffset
	s.Chasing = false
	s.WasChasing = false
	s.TargetID = ""
	s.PendingPhrase = pickPhraseAlways("struck")
}

// Warn puts the sentry on alert after a predictive flare warning
func (s *Sentry) Warn() {
	s.Alert = SentryAlertTime
}

// Repel shoves the sentry away from a ward and breaks its chase
func (s *Sentry) Repel(ward Vec2, dt float64, grid *TileGrid) {
	toWard := ward.Sub(s.Ent.Center())
	if l := toWard.Len(); l > 0 {
		toWard = toWard.Scale(1 / l)
	}
	next := FollowDirVecOpposite(s.Ent.Pos(), toWard, WardRepelSpeed, dt, s.Ent.Motion.Accel)
	if !grid.BlockedRect(Rect{next.X, next.Y, s.Ent.W, s.Ent.H}) {
		s.Ent.SetPos(next)
	}
	s.Route = nil
	s.Chasing = false
	s.WasChasing = false
	s.TargetID = ""
}

// ToState converts to protocol state
func (s *Sentry) ToState() SentryState {
	return SentryState{
		ID:      s.Ent.ID,
		X:       round1(s.Ent.X),
		Y:       round1(s.Ent.Y),
		H:       round1(s.Ent.Motion.Heading),
		Frame:   s.Ent.Anim.Frame,
		Chasing: s.Chasing,
		Alert:   s.Alert > 0,
		Stunned: s.Stunned > 0,
	}
}
