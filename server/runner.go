package main

const (
	RunnerSize       = 24.0  // bounding box, pixels
	RunnerFrameTime  = 0.18  // seconds per animation frame
	CaptureFallSpeed = 260.0 // pixels/s while falling off the maze
	RespawnTime      = 3.0   // seconds of capture fall before respawn
	VaultSpeedMul    = 0.65  // vault forward speed as a fraction of run speed
)

// Runner represents a player racing the maze
type Runner struct {
	Ent          *Entity
	Name         string
	Kit          RunnerKit
	AuthPlayerID int64 // 0 = guest

	Coins    int
	Captures int // times captured this race
	Score    int
	Finished bool
	FinishT  float64 // race clock at the moment of finishing

	Falling bool    // captured, falling off the maze
	FallT   float64 // respawn timer remaining

	Vaulting  bool
	VaultZ    float64 // height off the floor during a vault, for clients
	VaultCD   float64
	FlareCD   float64
	vaultArc  Vec2 // shadow position advanced by the jump helper
	vaultFrom Vec2 // world position when the vault began

	Power Power

	Autopilot bool
	Route     []int

	// Input intent, written by HandleInput under the game lock and
	// consumed by the next tick
	MoveX, MoveY int
	WantVault    bool
	WantFlare    bool
	WantPower    bool
	WantAuto     bool
}

// NewRunner creates a runner centered on the spawn tile
func NewRunner(id, name string, kit RunnerKit, grid *TileGrid, spawn int) *Runner {
	kd := GetKitDef(kit)
	tx, ty := grid.CoordsOf(spawn)
	c := grid.TileCenter(tx, ty)
	ent := &Entity{
		ID:     id,
		Kind:   KindRunner,
		X:      c.X - RunnerSize/2,
		Y:      c.Y - RunnerSize/2,
		W:      RunnerSize,
		H:      RunnerSize,
		Radius: kd.Radius,
		Frames: runnerMasks(int(RunnerSize)),
		Motion: &Motion{Mobile: true, Speed: kd.Speed, Accel: kd.Accel},
		Anim:   &Anim{Interval: RunnerFrameTime},
		Alive:  true,
	}
	return &Runner{
		Ent:   ent,
		Name:  name,
		Kit:   kit,
		Power: PowerForKit(kit),
	}
}

// Update moves the runner one tick (dt in seconds)
func (r *Runner) Update(dt float64, grid *TileGrid, gravity float64) {
	m := r.Ent.Motion
	if r.VaultCD > 0 {
		r.VaultCD -= dt
	}
	if r.FlareCD > 0 {
		r.FlareCD -= dt
	}
	r.Power.Update(dt)

	if r.Falling {
		r.Ent.SetPos(FreeFall(r.Ent.Pos(), CaptureFallSpeed, dt))
		r.FallT -= dt
		return
	}

	if r.Vaulting {
		r.stepVault(dt, grid, gravity)
		return
	}

	if r.Autopilot {
		FollowPath(r.Ent, grid, &r.Route, dt)
		if len(r.Route) == 0 {
			r.Autopilot = false
		}
		r.Ent.Anim.Advance(dt, len(r.Ent.Frames))
		return
	}

	// Manual movement: axis steps gated by the tile grid, heading follows
	// the last accepted step
	speed := m.Speed * r.Power.SpeedMul()
	pos := r.Ent.Pos()
	moved := false
	switch {
	case r.MoveX < 0:
		if next := MoveLeft(pos, speed, dt); !grid.BlockedRect(Rect{next.X, next.Y, r.Ent.W, r.Ent.H}) {
			pos = next
			m.Heading = 180
			moved = true
		}
	case r.MoveX > 0:
		if next := MoveRight(pos, speed, dt); !grid.BlockedRect(Rect{next.X, next.Y, r.Ent.W, r.Ent.H}) {
			pos = next
			m.Heading = 0
			moved = true
		}
	}
	switch {
	case r.MoveY < 0:
		if next := MoveUp(pos, speed, dt); !grid.BlockedRect(Rect{next.X, next.Y, r.Ent.W, r.Ent.H}) {
			pos = next
			m.Heading = 270
			moved = true
		}
	case r.MoveY > 0:
		if next := MoveDown(pos, speed, dt); !grid.BlockedRect(Rect{next.X, next.Y, r.Ent.W, r.Ent.H}) {
			pos = next
			m.Heading = 90
			moved = true
		}
	}
	r.Ent.SetPos(pos)
	if moved {
		r.Ent.Anim.Advance(dt, len(r.Ent.Frames))
	}
}

// StartVault begins a vault arc along the current heading
func (r *Runner) StartVault() {
	if r.Vaulting || r.Falling || r.VaultCD > 0 {
		return
	}
	kd := GetKitDef(r.Kit)
	r.Vaulting = true
	r.VaultCD = kd.VaultCD
	r.VaultZ = 0
	r.vaultFrom = r.Ent.Pos()
	r.vaultArc = r.Ent.Pos()
	r.Ent.Motion.Jump.Elapsed = 0
}

// stepVault advances the vault: the jump helper runs on a shadow position,
// its x advance becomes forward motion along the heading and its y arc
// becomes height off the floor. Wall tiles are ignored mid-air; a blocked
// landing bounces the runner back to where the vault began.
func (r *Runner) stepVault(dt float64, grid *TileGrid, gravity float64) {
	m := r.Ent.Motion
	next := Jump(&m.Jump, r.vaultArc, m.Speed*VaultSpeedMul, dt, m.Accel, gravity)
	if m.Jump.Elapsed == 0 {
		r.Vaulting = false
		r.VaultZ = 0
		if grid.BlockedRect(r.Ent.Box()) {
			r.Ent.SetPos(r.vaultFrom)
		}
		return
	}
	forward := next.X - r.vaultArc.X
	rise := next.Y - r.vaultArc.Y // negative while climbing
	r.vaultArc = next
	r.VaultZ -= rise
	if r.VaultZ < 0 {
		r.VaultZ = 0
	}
	dir := headingVec(m.Heading)
	r.Ent.X += dir.X * forward
	r.Ent.Y += dir.Y * forward
}

// RespawnAt resets the runner onto the given tile after a capture fall
func (r *Runner) RespawnAt(grid *TileGrid, tile int) {
	tx, ty := grid.CoordsOf(tile)
	c := grid.TileCenter(tx, ty)
	r.Ent.X = c.X - r.Ent.W/2
	r.Ent.Y = c.Y - r.Ent.H/2
	r.Falling = false
	r.FallT = 0
	r.Vaulting = false
	r.VaultZ = 0
	r.Autopilot = false
	r.Route = nil
	r.Ent.Motion.Heading = 0
	r.Ent.Motion.Jump = JumpState{}
}

// ResetForRace wipes race-scoped progress for a rematch
func (r *Runner) ResetForRace(grid *TileGrid, spawn int) {
	r.RespawnAt(grid, spawn)
	r.Coins = 0
	r.Captures = 0
	r.Score = 0
	r.Finished = false
	r.FinishT = 0
	r.VaultCD = 0
	r.FlareCD = 0
	r.Power = PowerForKit(r.Kit)
	r.MoveX, r.MoveY = 0, 0
	r.WantVault, r.WantFlare, r.WantPower, r.WantAuto = false, false, false, false
}

// CanFlare returns true if the runner can throw a flare
func (r *Runner) CanFlare() bool {
	return !r.Falling && !r.Vaulting && r.FlareCD <= 0
}

// ToState converts to protocol state
func (r *Runner) ToState() RunnerState {
	return RunnerState{
		ID:       r.Ent.ID,
		Name:     r.Name,
		X:        round1(r.Ent.X),
		Y:        round1(r.Ent.Y),
		Z:        round1(r.VaultZ),
		H:        r.Ent.Motion.Heading,
		Kit:      int(r.Kit),
		Frame:    r.Ent.Anim.Frame,
		Coins:    r.Coins,
		Score:    r.Score,
		Falling:  r.Falling,
		Vaulting: r.Vaulting,
		Auto:     r.Autopilot,
		Finished: r.Finished,
		Power:    int(r.Power.Type),
		PowerOn:  r.Power.Active,
	}
}
