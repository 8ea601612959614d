package main

// PowerType identifies the coin-fueled power
type PowerType int

const (
	PowerDash   PowerType = 0 // Standard: speed burst
	PowerReveal PowerType = 1 // Scout: sentries pinged through walls
	PowerWard   PowerType = 2 // Pathfinder: sentry-repelling ward
)

// Power cooldowns and durations
const (
	DashCooldown = 10.0
	DashDuration = 2.5
	DashMul      = 1.7

	RevealCooldown = 12.0
	RevealDuration = 4.0

	WardCooldown = 14.0
	WardDuration = 6.0
	WardRadius   = 80.0
)

// Power tracks the state of a runner's power
type Power struct {
	Type     PowerType
	Cooldown float64 // remaining cooldown
	Active   bool    // currently active
	Timer    float64 // remaining active duration
}

// PowerForKit returns the default power for a kit
func PowerForKit(kit RunnerKit) Power {
	switch kit {
	case KitScout:
		return Power{Type: PowerReveal}
	case KitPathfinder:
		return Power{Type: PowerWard}
	default:
		return Power{Type: PowerDash}
	}
}

// CanActivate returns true if the power is ready
func (p *Power) CanActivate() bool {
	return p.Cooldown <= 0 && !p.Active
}

// Activate starts the power and returns true on success
func (p *Power) Activate() bool {
	if !p.CanActivate() {
		return false
	}
	switch p.Type {
	case PowerDash:
		p.Active = true
		p.Timer = DashDuration
		p.Cooldown = DashCooldown
	case PowerReveal:
		p.Active = true
		p.Timer = RevealDuration
		p.Cooldown = RevealCooldown
	case PowerWard:
		p.Cooldown = WardCooldown
		// Ward entity spawned by game.go
	}
	return true
}

// Update ticks the power cooldown and active timer
func (p *Power) Update(dt float64) {
	if p.Cooldown > 0 {
		p.Cooldown -= dt
		if p.Cooldown < 0 {
			p.Cooldown = 0
		}
	}
	if p.Active {
		p.Timer -= dt
		if p.Timer <= 0 {
			p.Active = false
			p.Timer = 0
		}
	}
}

// SpeedMul returns the movement speed multiplier granted by the power
func (p *Power) SpeedMul() float64 {
	if p.Active && p.Type == PowerDash {
		return DashMul
	}
	return 1.0
}
