package screen

import (
	"testing"
)

func TestFromCornersNormalizes(t *testing.T) {
	r := FromCorners(40, 30, 10, 5)
	if r != (Rect{X: 10, Y: 5, Width: 30, Height: 25}) {
		t.Errorf("FromCorners returned %+v", r)
	}
}

func TestCentered(t *testing.T) {
	display := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	r := display.Centered(650, 200)
	if r.X != 635 || r.Y != 440 || r.Width != 650 || r.Height != 200 {
		t.Errorf("Centered returned %+v", r)
	}

	big := display.Centered(4000, 3000)
	if big != display {
		t.Errorf("Expected oversized request to clamp to display, got %+v", big)
	}
}

func TestContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	if !r.Contains(10, 14) {
		t.Error("Expected point on the left/bottom-inner edge to be contained")
	}
	if r.Contains(15, 12) {
		t.Error("Right edge is exclusive")
	}
}

func TestPrimaryBounds(t *testing.T) {
	// Needs a display; headless runs only log.
	r, err := PrimaryBounds()
	if err != nil {
		t.Logf("Failed to get display bounds (expected in headless environment): %v", err)
		return
	}
	if r.Empty() {
		t.Error("Expected non-empty primary display bounds")
	}
}
