package main

import "testing"

func TestPowerForKit(t *testing.T) {
	tests := []struct {
		kit  RunnerKit
		want PowerType
	}{
		{KitStandard, PowerDash},
		{KitScout, PowerReveal},
		{KitPathfinder, PowerWard},
		{RunnerKit(7), PowerDash},
	}
	for _, tt := range tests {
		if got := PowerForKit(tt.kit); got.Type != tt.want {
			t.Errorf("kit %d: expected power %d, got %d", tt.kit, tt.want, got.Type)
		}
	}
}

func TestPowerDashLifecycle(t *testing.T) {
	p := PowerForKit(KitStandard)
	if !p.CanActivate() {
		t.Fatal("fresh power should be ready")
	}
	if !p.Activate() {
		t.Fatal("activation should succeed")
	}
	if !p.Active || p.Timer != DashDuration || p.Cooldown != DashCooldown {
		t.Errorf("dash state wrong after activation: %+v", p)
	}
	if p.SpeedMul() != DashMul {
		t.Errorf("expected dash multiplier %v, got %v", DashMul, p.SpeedMul())
	}
	if p.Activate() {
		t.Error("double activation should be refused")
	}

	// Run the duration out
	for i := 0; i < 26; i++ {
		p.Update(0.1)
	}
	if p.Active {
		t.Error("dash should expire")
	}
	if p.SpeedMul() != 1.0 {
		t.Errorf("expired dash should not boost speed, got %v", p.SpeedMul())
	}
	if p.CanActivate() {
		t.Error("cooldown should still block reactivation")
	}

	// Run the cooldown out
	for i := 0; i < 100; i++ {
		p.Update(0.1)
	}
	if p.Cooldown != 0 {
		t.Errorf("cooldown should clamp to zero, got %v", p.Cooldown)
	}
	if !p.CanActivate() {
		t.Error("power should be ready again")
	}
}

func TestPowerWardActivation(t *testing.T) {
	p := PowerForKit(KitPathfinder)
	if !p.Activate() {
		t.Fatal("ward activation should succeed")
	}
	// The ward itself is a world entity; the power only arms the cooldown
	if p.Active {
		t.Error("ward power should not report active")
	}
	if p.Cooldown != WardCooldown {
		t.Errorf("expected ward cooldown %v, got %v", WardCooldown, p.Cooldown)
	}
	if p.SpeedMul() != 1.0 {
		t.Error("ward should not boost speed")
	}
}

func TestPowerRevealActivation(t *testing.T) {
	p := PowerForKit(KitScout)
	if !p.Activate() {
		t.Fatal("reveal activation should succeed")
	}
	if !p.Active || p.Timer != RevealDuration || p.Cooldown != RevealCooldown {
		t.Errorf("reveal state wrong after activation: %+v", p)
	}
	if p.SpeedMul() != 1.0 {
		t.Error("reveal should not boost speed")
	}
}
