package main

// ApplyCapture starts the capture fall and returns how many coins the
// runner dropped (half, rounded down)
func ApplyCapture(r *Runner) int {
	if r.Falling {
		return 0
	}
	r.Falling = true
	r.FallT = RespawnTime
	r.Vaulting = false
	r.VaultZ = 0
	r.Autopilot = false
	r.Route = nil
	r.Captures++
	dropped := r.Coins / 2
	r.Coins -= dropped
	return dropped
}
