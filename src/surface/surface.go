// Package surface is the drawable frame bound to an overlay window.
//
// Frames are composed off-screen on an alpha-premultiplied RGBA canvas and
// only become visible when Present hands them to the window's Presenter
// together with a uniform alpha.
package surface

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/font"
)

var (
	// ErrStaleTarget is returned when drawing with a target from an earlier BeginFrame.
	ErrStaleTarget = errors.New("draw target is stale")
	// ErrTransient marks present failures that are expected to clear up on
	// their own (window minimized, occluded, display switching).
	ErrTransient = errors.New("transient present failure")
)

// CreationError means the surface could not be bound to its window.
// It is fatal for the overlay session.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("surface creation failed: %v", e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// IsTransient reports whether a Present error may be retried on the next frame.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Presenter is the native side of a surface: it owns the window's backing
// store and composites finished frames onto the desktop.
type Presenter interface {
	Resize(width, height int) error
	Present(frame *image.RGBA, alpha float64) error
}

type Options struct {
	// FontSize in points at 72 DPI. Zero means DefaultFontSize.
	FontSize float64
}

const DefaultFontSize = 16

type Surface struct {
	presenter Presenter
	canvas    *image.RGBA
	gen       uint64
	face      font.Face
}

// Target is a frame in progress. It is valid until the next BeginFrame or Resize.
type Target struct {
	surface *Surface
	gen     uint64
}

// Bounds is the drawable area in window-client coordinates.
func (t *Target) Bounds() image.Rectangle { return t.surface.canvas.Bounds() }

func New(p Presenter, width, height int, opts Options) (*Surface, error) {
	if p == nil {
		return nil, &CreationError{Err: errors.New("no presenter")}
	}
	if width <= 0 || height <= 0 {
		return nil, &CreationError{Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}

	size := opts.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	face, err := newFace(size)
	if err != nil {
		return nil, &CreationError{Err: fmt.Errorf("load font: %w", err)}
	}
	if err := p.Resize(width, height); err != nil {
		return nil, &CreationError{Err: err}
	}

	return &Surface{
		presenter: p,
		canvas:    image.NewRGBA(image.Rect(0, 0, width, height)),
		face:      face,
	}, nil
}

func (s *Surface) Size() (int, int) {
	b := s.canvas.Bounds()
	return b.Dx(), b.Dy()
}

// Resize rebinds the backing store. Resizing to the current size is a no-op.
func (s *Surface) Resize(width, height int) error {
	if w, h := s.Size(); w == width && h == height {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	if err := s.presenter.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	s.canvas = image.NewRGBA(image.Rect(0, 0, width, height))
	s.gen++
	return nil
}

// BeginFrame clears the canvas to fully transparent and returns a new target.
func (s *Surface) BeginFrame() *Target {
	s.gen++
	clear(s.canvas.Pix)
	return &Target{surface: s, gen: s.gen}
}

// Draw applies cmds in order; later commands paint over earlier ones.
func (s *Surface) Draw(t *Target, cmds ...Command) error {
	if err := s.check(t); err != nil {
		return err
	}
	r := &renderer{dst: s.canvas, face: s.face}
	for _, c := range cmds {
		c.draw(r)
	}
	return nil
}

// Present shows the frame with alpha (clamped to [0,1]) applied on top of
// the per-pixel alpha.
func (s *Surface) Present(t *Target, alpha float64) error {
	if err := s.check(t); err != nil {
		return err
	}
	return s.presenter.Present(s.canvas, clampAlpha(alpha))
}

// LineHeight is the distance between baselines of consecutive text lines.
func (s *Surface) LineHeight() int {
	return s.face.Metrics().Height.Ceil()
}

// MeasureText returns the advance width of text and the line height.
func (s *Surface) MeasureText(text string) (int, int) {
	return font.MeasureString(s.face, text).Ceil(), s.LineHeight()
}

func (s *Surface) check(t *Target) error {
	if t == nil || t.surface != s || t.gen != s.gen {
		return ErrStaleTarget
	}
	return nil
}

func clampAlpha(a float64) float64 {
	switch {
	case math.IsNaN(a), a < 0:
		return 0
	case a > 1:
		return 1
	default:
		return a
	}
}
