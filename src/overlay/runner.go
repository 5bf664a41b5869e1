package overlay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"anemone/src/config"
	"anemone/src/mode"
	"anemone/src/screen"
	"anemone/src/surface"
)

// ErrSessionActive is returned when a session is started while another one is open.
var ErrSessionActive = errors.New("an overlay session is already active")

// Handler receives the events of one window until it reports Done.
type Handler interface {
	Handle(Event)
	Done() bool
}

// Window is a native overlay window. It presents frames for the surface
// bound to it and pumps its input into a Handler.
type Window interface {
	surface.Presenter
	BoundsSetter
	// Run blocks, delivering events to h until h is done. Cancelling ctx
	// delivers a Close event.
	Run(ctx context.Context, h Handler) error
	Destroy()
}

// Platform creates native windows and reports screen metrics.
type Platform interface {
	ScreenBounds() (screen.Rect, error)
	CreateWindow(WindowOptions) (Window, error)
}

type Runner struct {
	Platform Platform
	Config   *config.Config
	Sink     Sink
	Notifier Notifier
	// OnTransition observes the state changes of every session.
	OnTransition func(m mode.Mode, from, to State)

	active atomic.Bool
}

// Run opens an overlay for m and blocks until it closes. Creating the window
// or its surface fails with *surface.CreationError.
func (r *Runner) Run(ctx context.Context, m mode.Mode) (Result, error) {
	if !r.active.CompareAndSwap(false, true) {
		return Result{Mode: m}, ErrSessionActive
	}
	defer r.active.Store(false)

	policy, err := PolicyFor(m, r.Config)
	if err != nil {
		return Result{Mode: m}, err
	}

	screenRect, err := r.Platform.ScreenBounds()
	if err != nil {
		return Result{Mode: m}, &surface.CreationError{Err: fmt.Errorf("screen metrics: %w", err)}
	}
	bounds := policy.InitialBounds(screenRect)

	opts := policy.Window
	opts.Bounds = bounds
	log.Printf("OVERLAY: opening %s window at %s", m, bounds)
	w, err := r.Platform.CreateWindow(opts)
	if err != nil {
		return Result{Mode: m}, &surface.CreationError{Err: fmt.Errorf("create window: %w", err)}
	}
	defer w.Destroy()

	surf, err := surface.New(w, bounds.Width, bounds.Height, surface.Options{FontSize: policy.FontSize})
	if err != nil {
		return Result{Mode: m}, err
	}

	var onTransition func(from, to State)
	if r.OnTransition != nil {
		onTransition = func(from, to State) { r.OnTransition(m, from, to) }
	}
	s := NewSession(SessionOptions{
		Policy:       policy,
		Screen:       screenRect,
		Bounds:       bounds,
		Surface:      surf,
		Window:       w,
		Sink:         r.Sink,
		Notifier:     r.Notifier,
		OnTransition: onTransition,
	})

	if err := w.Run(ctx, s); err != nil {
		return s.Result(), fmt.Errorf("overlay event loop: %w", err)
	}
	if err := s.Err(); err != nil {
		return s.Result(), err
	}
	log.Printf("OVERLAY: %s session %s", m, s.Result().Outcome)
	return s.Result(), nil
}
