package main

import "testing"

// solidMask builds a w x h mask with every pixel solid
func solidMask(w, h int) Mask {
	m := Mask{W: w, H: h, Pix: make([]byte, w*h*4)}
	for i := 0; i < w*h; i++ {
		m.Pix[i*4] = 1
	}
	return m
}

// halfMask builds a w x h mask with only the right half solid
func halfMask(w, h int) Mask {
	m := Mask{W: w, H: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			m.Pix[(y*w+x)*4] = 1
		}
	}
	return m
}

func TestCircleCollision(t *testing.T) {
	tests := []struct {
		name   string
		p1     Vec2
		r1     float64
		p2     Vec2
		r2     float64
		expect bool
	}{
		{"overlap", Vec2{0, 0}, 5, Vec2{6, 0}, 5, true},
		{"touching", Vec2{0, 0}, 5, Vec2{10, 0}, 5, true},
		{"apart", Vec2{0, 0}, 5, Vec2{11, 0}, 5, false},
		{"same center", Vec2{3, 3}, 1, Vec2{3, 3}, 1, true},
	}
	for _, tt := range tests {
		if got := CheckCircleCollision(tt.p1, tt.r1, tt.p2, tt.r2); got != tt.expect {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.expect, got)
		}
	}
}

func TestBoxCollision(t *testing.T) {
	size := Vec2{10, 10}
	if !CheckBoxCollision(Vec2{0, 0}, size, Vec2{5, 5}, size) {
		t.Error("overlapping boxes should collide")
	}
	if CheckBoxCollision(Vec2{0, 0}, size, Vec2{10, 0}, size) {
		t.Error("edge-touching boxes should not collide")
	}
	if CheckBoxCollision(Vec2{0, 0}, size, Vec2{20, 20}, size) {
		t.Error("separated boxes should not collide")
	}
	if !CheckBoxCollision(Vec2{0, 0}, Vec2{20, 20}, Vec2{5, 5}, Vec2{2, 2}) {
		t.Error("contained box should collide")
	}
}

func TestPixelCollision(t *testing.T) {
	m1 := solidMask(4, 4)
	m2 := solidMask(4, 4)
	size := Vec2{4, 4}

	if !CheckPixelCollision(m1, Vec2{0, 0}, size, m2, Vec2{2, 0}, size) {
		t.Error("overlapping solid masks should collide")
	}
	if CheckPixelCollision(m1, Vec2{0, 0}, size, m2, Vec2{4, 0}, size) {
		t.Error("edge-touching masks should not collide")
	}

	// Box overlap but no solid pixels on one side
	half := halfMask(4, 4)
	if CheckPixelCollision(m1, Vec2{0, 0}, size, half, Vec2{3, 0}, size) {
		t.Error("overlap lands on the transparent half, should not collide")
	}
	if !CheckPixelCollision(m1, Vec2{0, 0}, size, half, Vec2{1, 0}, size) {
		t.Error("overlap reaches the solid half, should collide")
	}

	empty := Mask{W: 4, H: 4, Pix: make([]byte, 4*4*4)}
	if CheckPixelCollision(m1, Vec2{0, 0}, size, empty, Vec2{0, 0}, size) {
		t.Error("fully transparent mask should never collide")
	}
}

func TestPixelCollisionRotated(t *testing.T) {
	half := halfMask(4, 4)
	full := solidMask(4, 4)
	size := Vec2{4, 4}

	if !CheckPixelCollisionRotated(half, Vec2{0, 0}, size, 0, full, Vec2{2, 0}, size, 0) {
		t.Error("unrotated sprites should collide")
	}
	// A half turn swings the solid half out of the overlap (rotation is
	// around the sprite's local top-left)
	if CheckPixelCollisionRotated(half, Vec2{0, 0}, size, 180, full, Vec2{2, 0}, size, 0) {
		t.Error("half-turned sprite's pixels left the overlap, should not collide")
	}
}

func TestPredictiveCollisionHeadOn(t *testing.T) {
	cache := &RaycastCache{}
	accel := Vec2{1, 1}

	hit := CheckPredictiveCollision(cache,
		Vec2{0, 0}, Vec2{1, 0}, 10, accel,
		Vec2{100, 0}, Vec2{-1, 0}, 10, accel)

	if !hit {
		t.Fatal("head-on bodies should predict a collision")
	}
	if cache.Evaluations != 1 {
		t.Errorf("expected 1 evaluation, got %d", cache.Evaluations)
	}
	if len(cache.Times) != 1 || cache.Times[0] != 5 {
		t.Errorf("expected closest approach at t=5, got %v", cache.Times)
	}
}

func TestPredictiveCollisionStatic(t *testing.T) {
	cache := &RaycastCache{}
	accel := Vec2{1, 1}

	hit := CheckPredictiveCollision(cache,
		Vec2{0, 0}, Vec2{}, 0, accel,
		Vec2{100, 0}, Vec2{}, 0, accel)

	if hit {
		t.Error("two static bodies should not predict a collision")
	}
	// Zero relative motion bails out before the cache is touched
	if cache.Evaluations != 0 || len(cache.Times) != 0 {
		t.Errorf("expected untouched cache, got %d evaluations, %v", cache.Evaluations, cache.Times)
	}
}

func TestPredictiveCollisionAccel(t *testing.T) {
	cache := &RaycastCache{}

	// Only a relative acceleration, no relative velocity
	hit := CheckPredictiveCollision(cache,
		Vec2{0, 0}, Vec2{}, 0, Vec2{1, 0},
		Vec2{100, 0}, Vec2{}, 0, Vec2{0, 0})

	if !hit {
		t.Fatal("accelerating body should take the quadratic branch")
	}
	if cache.Evaluations != 1 {
		t.Errorf("expected 1 evaluation, got %d", cache.Evaluations)
	}
	if len(cache.Times) != 1 || cache.Times[0] != 0 {
		t.Errorf("expected approach at t=0, got %v", cache.Times)
	}
}

func TestPredictiveCollisionNegativeDiscriminant(t *testing.T) {
	cache := &RaycastCache{}

	// Perpendicular acceleration with a receding position term keeps the
	// discriminant negative
	hit := CheckPredictiveCollision(cache,
		Vec2{0, 0}, Vec2{1, 0}, 10, Vec2{0, 1},
		Vec2{-50, 0}, Vec2{}, 0, Vec2{0, 0})

	if hit {
		t.Error("negative discriminant should report no collision")
	}
	if cache.Evaluations != 1 {
		t.Errorf("expected the evaluation counted, got %d", cache.Evaluations)
	}
	if len(cache.Times) != 0 {
		t.Errorf("expected no approach time recorded, got %v", cache.Times)
	}
}
