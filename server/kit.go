package main

// RunnerKit identifies the loadout a runner spawns with
type RunnerKit int

const (
	KitStandard   RunnerKit = 0
	KitScout      RunnerKit = 1
	KitPathfinder RunnerKit = 2
)

// KitDef holds the tuning for a runner kit
type KitDef struct {
	Speed      float64 // pixels/s
	Accel      Vec2    // per-axis arc scaling fed to the jump helpers
	FOV        float64 // projected view field, degrees
	RayCount   int     // rays across the view
	Radius     float64
	VaultCD    float64 // seconds between vaults
	FlareCD    float64 // seconds between flares
	FlareSpeed float64
	PowerCost  int // coins burned per power activation
}

var RunnerKits = [3]KitDef{
	// Standard: balanced, dash power
	{
		Speed: 120, Accel: Vec2{1, 1.1}, FOV: 60, RayCount: 60,
		Radius: 12, VaultCD: 2.0, FlareCD: 1.5, FlareSpeed: 300, PowerCost: 3,
	},
	// Scout: fast, wide view, reveal power
	{
		Speed: 150, Accel: Vec2{1, 0.9}, FOV: 70, RayCount: 80,
		Radius: 11, VaultCD: 2.5, FlareCD: 2.0, FlareSpeed: 340, PowerCost: 4,
	},
	// Pathfinder: slow, short vault cooldown, ward power
	{
		Speed: 105, Accel: Vec2{1, 1.3}, FOV: 55, RayCount: 50,
		Radius: 13, VaultCD: 1.6, FlareCD: 1.2, FlareSpeed: 280, PowerCost: 3,
	},
}

// GetKitDef returns the definition for a runner kit
func GetKitDef(kit RunnerKit) KitDef {
	if kit < 0 || int(kit) >= len(RunnerKits) {
		return RunnerKits[KitStandard]
	}
	return RunnerKits[kit]
}
