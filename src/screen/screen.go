package screen

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Rect is a screen or window-client rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

type Point struct {
	X int
	Y int
}

// FromCorners builds the normalized rectangle spanned by two corners.
func FromCorners(x0, y0, x1, y1 int) Rect {
	return Rect{
		X:      min(x0, x1),
		Y:      min(y0, y1),
		Width:  abs(x1 - x0),
		Height: abs(y1 - y0),
	}
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether (x, y) lies inside r (right/bottom exclusive).
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Offset returns r translated by p.
func (r Rect) Offset(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Centered returns a width x height rectangle centered inside r.
// The size is clamped to r.
func (r Rect) Centered(width, height int) Rect {
	width = min(width, r.Width)
	height = min(height, r.Height)
	return Rect{
		X:      r.X + (r.Width-width)/2,
		Y:      r.Y + (r.Height-height)/2,
		Width:  width,
		Height: height,
	}
}

func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// PrimaryBounds returns the bounds of the primary display in screen coordinates.
func PrimaryBounds() (Rect, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return Rect{}, fmt.Errorf("no active displays found")
	}

	b := screenshot.GetDisplayBounds(0)
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
