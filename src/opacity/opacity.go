// Package opacity animates the constant alpha of the overlay window.
//
// The animator keeps two values: the target the overlay should settle at,
// which jumps on mouse enter/leave, and the current value used for
// compositing, which walks toward the target at a fixed rate per second.
// Progress depends only on the sum of elapsed time fed to Tick, so the
// trajectory is the same at any frame rate.
package opacity

import (
	"math"
	"time"
)

// snapEpsilon is half of one 8-bit alpha step; closer than this the value
// is indistinguishable on screen and is snapped to the target.
const snapEpsilon = 1.0 / 510

// Levels are the resting targets without and with mouse focus.
type Levels struct {
	Idle  float64
	Hover float64
}

type Animator struct {
	levels        Levels
	rate          float64
	target        float64
	current       float64
	hasMouseFocus bool
}

// New returns an animator that fades in from 0 toward levels.Idle.
// rate is the opacity change per second and must be positive; non-positive
// rates fall back to 1.
func New(levels Levels, rate float64) *Animator {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 1
	}
	levels.Idle = clamp01(levels.Idle)
	levels.Hover = clamp01(levels.Hover)
	return &Animator{
		levels: levels,
		rate:   rate,
		target: levels.Idle,
	}
}

func (a *Animator) OnMouseEnter() {
	a.hasMouseFocus = true
	a.target = a.levels.Hover
}

func (a *Animator) OnMouseLeave() {
	a.hasMouseFocus = false
	a.target = a.levels.Idle
}

// Tick advances the current value toward the target by rate*elapsed.
// Negative durations do nothing.
func (a *Animator) Tick(elapsed time.Duration) {
	if elapsed <= 0 || a.current == a.target {
		return
	}
	step := a.rate * elapsed.Seconds()
	diff := a.target - a.current
	if math.Abs(diff) <= step || math.Abs(diff) < snapEpsilon {
		a.current = a.target
		return
	}
	if diff > 0 {
		a.current += step
	} else {
		a.current -= step
	}
	a.current = clamp01(a.current)
}

func (a *Animator) Value() float64      { return a.current }
func (a *Animator) Target() float64     { return a.target }
func (a *Animator) HasMouseFocus() bool { return a.hasMouseFocus }
func (a *Animator) Levels() Levels      { return a.levels }

// Converged reports whether no animation is in progress.
func (a *Animator) Converged() bool { return a.current == a.target }

// Alpha is the current value quantised to the 0..255 constant alpha of a layered window.
func (a *Animator) Alpha() uint8 {
	return uint8(math.Round(a.current * 255))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
