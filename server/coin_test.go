package main

import "testing"

func TestNewCoinCentered(t *testing.T) {
	g := openGrid(11, 11)
	c := NewCoin(g, g.Index(4, 4))

	tc := g.TileCenter(4, 4)
	if c.Ent.X != tc.X-CoinSize/2 || c.Ent.Y != tc.Y-CoinSize/2 {
		t.Errorf("expected coin centered, got (%v, %v)", c.Ent.X, c.Ent.Y)
	}
	if len(c.Ent.Frames) != CoinFrames {
		t.Errorf("expected %d spin frames, got %d", CoinFrames, len(c.Ent.Frames))
	}
}

func TestCoinBobsAndSpins(t *testing.T) {
	g := openGrid(11, 11)
	c := NewCoin(g, g.Index(4, 4))
	startY := c.Ent.Y

	c.Update(0.1, 1)
	if c.Ent.Y >= startY {
		t.Errorf("expected the coin lifted off its rest height, got %v", c.Ent.Y)
	}
	if c.Ent.X != g.TileCenter(4, 4).X-CoinSize/2 {
		t.Error("bob should not move the coin sideways")
	}

	c.Update(0.1, 1)
	if c.Ent.Anim.Frame != 1 {
		t.Errorf("expected spin frame 1 after 0.2s, got %d", c.Ent.Anim.Frame)
	}

	// A full cycle lands back at rest height
	for i := 0; i < 2; i++ {
		c.Update(0.1, 1)
	}
	if c.Ent.Y != startY {
		t.Errorf("expected landing at rest height %v, got %v", startY, c.Ent.Y)
	}
}

func TestCoinDeadNoUpdate(t *testing.T) {
	g := openGrid(11, 11)
	c := NewCoin(g, g.Index(4, 4))
	c.Ent.Alive = false
	y := c.Ent.Y

	c.Update(0.1, 1)
	if c.Ent.Y != y || c.Ent.Anim.Frame != 0 {
		t.Error("dead coin should not animate")
	}
}
