package overlay

import (
	"errors"
	"fmt"
	"image"
	"log"

	"anemone/src/annotation"
	"anemone/src/logutil"
	"anemone/src/mode"
	"anemone/src/opacity"
	"anemone/src/screen"
	"anemone/src/surface"
)

// BoundsSetter moves or resizes the native window.
type BoundsSetter interface {
	SetBounds(screen.Rect) error
}

type SessionOptions struct {
	Policy Policy
	// Screen is the display the window lives on, in screen coordinates.
	Screen   screen.Rect
	Bounds   screen.Rect
	Surface  *surface.Surface
	Window   BoundsSetter
	Sink     Sink
	Notifier Notifier
	// OnTransition is called after every state change.
	OnTransition func(from, to State)
}

// Session is the overlay state machine for one window. All methods must be
// called from the goroutine that pumps the window's messages.
type Session struct {
	policy       Policy
	screen       screen.Rect
	bounds       screen.Rect
	surf         *surface.Surface
	win          BoundsSetter
	sink         Sink
	notifier     Notifier
	onTransition func(from, to State)

	state  State
	result Result
	err    error

	anim *opacity.Animator
	buf  *annotation.Buffer

	cursor    image.Point
	cursorIn  bool
	dragging  bool
	dragStart image.Point
	selection screen.Rect

	presentStalled bool
}

func NewSession(opts SessionOptions) *Session {
	return &Session{
		policy:       opts.Policy,
		screen:       opts.Screen,
		bounds:       opts.Bounds,
		surf:         opts.Surface,
		win:          opts.Window,
		sink:         opts.Sink,
		notifier:     opts.Notifier,
		onTransition: opts.OnTransition,
		state:        Initializing,
		result:       Result{Mode: opts.Policy.Mode, Outcome: Cancelled},
		anim:         opacity.New(opts.Policy.Opacity, opts.Policy.FadePerSecond),
		buf:          annotation.New(),
	}
}

func (s *Session) State() State               { return s.state }
func (s *Session) Done() bool                 { return s.state.Terminal() }
func (s *Session) Result() Result             { return s.result }
func (s *Session) Bounds() screen.Rect        { return s.bounds }
func (s *Session) Opacity() *opacity.Animator { return s.anim }
func (s *Session) Buffer() *annotation.Buffer { return s.buf }

// Err is the failure that forced the session closed, if any.
func (s *Session) Err() error { return s.err }

// Handle applies one event. Events after Closed are ignored.
func (s *Session) Handle(ev Event) {
	if s.state.Terminal() {
		return
	}
	if ev.Kind == EventClose || (ev.Kind == EventKeyDown && ev.Key == KeyEscape) {
		s.cancel(ev.String())
		return
	}

	switch s.state {
	case Initializing:
		if ev.Kind == EventTick {
			s.frame(ev)
		}
	case Active:
		s.apply(ev)
	}
}

func (s *Session) apply(ev Event) {
	switch ev.Kind {
	case EventTick:
		s.frame(ev)
	case EventMouseEnter:
		s.cursorIn = true
		s.anim.OnMouseEnter()
	case EventMouseLeave:
		s.cursorIn = false
		s.anim.OnMouseLeave()
	case EventMouseMove:
		s.cursor = image.Pt(ev.X, ev.Y)
		if s.dragging {
			s.selection = s.dragSelection(ev)
		}
	case EventMouseDown:
		if s.policy.Mode == mode.Clip {
			s.dragging = true
			s.dragStart = s.clampToClient(ev.X, ev.Y)
			s.cursor = s.dragStart
			s.selection = screen.Rect{}
		}
	case EventMouseUp:
		if s.policy.Mode == mode.Clip && s.dragging {
			s.dragging = false
			s.selection = s.dragSelection(ev)
			s.commitSelection()
		}
	case EventKeyDown:
		s.applyKey(ev)
	case EventChar:
		if s.policy.Mode == mode.Caption {
			s.buf.InsertChar(ev.Rune)
			s.resizeToContent()
		}
	}
}

// dragSelection spans from the drag start to ev. The window captures the
// mouse during a drag, so ev may lie outside the client area.
func (s *Session) dragSelection(ev Event) screen.Rect {
	end := s.clampToClient(ev.X, ev.Y)
	return screen.FromCorners(s.dragStart.X, s.dragStart.Y, end.X, end.Y)
}

func (s *Session) clampToClient(x, y int) image.Point {
	return image.Pt(min(max(x, 0), s.bounds.Width), min(max(y, 0), s.bounds.Height))
}

func (s *Session) applyKey(ev Event) {
	switch s.policy.Mode {
	case mode.Clip:
		if ev.Key == KeyEnter {
			s.commitSelection()
		}
	case mode.Caption:
		switch ev.Key {
		case KeyEnter:
			if ev.Ctrl {
				s.commit(Payload{Mode: mode.Caption, Lines: s.buf.Snapshot()})
				return
			}
			s.buf.Newline()
		case KeyBackspace:
			s.buf.Backspace()
		case KeyUp:
			s.buf.MoveSelection(-1)
		case KeyDown:
			s.buf.MoveSelection(1)
		case KeyLeft:
			s.buf.MoveCursor(-1)
		case KeyRight:
			s.buf.MoveCursor(1)
		default:
			return
		}
		s.resizeToContent()
	}
}

func (s *Session) commitSelection() {
	sel := s.selection
	if sel.Width <= minSelectionSpan || sel.Height <= minSelectionSpan {
		log.Printf("OVERLAY: selection too small (%dx%d), ignoring", sel.Width, sel.Height)
		return
	}
	region := sel.Offset(screen.Point{X: s.bounds.X, Y: s.bounds.Y})
	s.commit(Payload{Mode: mode.Clip, Region: region})
}

func (s *Session) commit(p Payload) {
	if !s.policy.CanCommit {
		return
	}
	s.transition(Committing)
	if s.sink != nil {
		if err := s.sink.Consume(p); err != nil {
			log.Printf("OVERLAY: result consumer failed: %v", err)
			s.notice(fmt.Sprintf("Could not deliver %s result: %v", p.Mode, err))
		}
	}
	s.result = Result{Mode: s.policy.Mode, Outcome: Committed, Payload: p}
	s.transition(Closed)
}

func (s *Session) cancel(reason string) {
	log.Printf("OVERLAY: dismissed by %s", reason)
	s.transition(Cancelling)
	s.result = Result{Mode: s.policy.Mode, Outcome: Cancelled}
	s.transition(Closed)
}

func (s *Session) fail(err error) {
	log.Printf("OVERLAY: closing after failure: %v", err)
	s.err = err
	s.cancel("failure")
}

func (s *Session) frame(ev Event) {
	s.anim.Tick(ev.Elapsed)

	err := s.render()
	switch {
	case err == nil:
		s.presentStalled = false
	case surface.IsTransient(err):
		if !s.presentStalled {
			log.Printf("OVERLAY: present deferred: %v", err)
			s.presentStalled = true
		}
		return
	default:
		s.fail(err)
		return
	}

	if s.state == Initializing {
		s.transition(Active)
	}
}

func (s *Session) render() error {
	if s.surf == nil {
		return errors.New("no surface")
	}
	t := s.surf.BeginFrame()
	if err := s.surf.Draw(t, s.compose(t.Bounds())...); err != nil {
		return err
	}
	return s.surf.Present(t, s.anim.Value())
}

// resizeToContent grows the Caption window to fit the buffer, never below
// the default size or beyond the screen, and keeps it centered.
func (s *Session) resizeToContent() {
	if !s.policy.ResizeToContent || s.surf == nil {
		return
	}
	w, h := s.contentSize()
	next := s.screen.Centered(max(w, s.policy.DefaultWidth), max(h, s.policy.DefaultHeight))
	if next == s.bounds {
		return
	}
	if s.win != nil {
		if err := s.win.SetBounds(next); err != nil {
			log.Printf("OVERLAY: resize to %s failed: %v", next, err)
			return
		}
	}
	if err := s.surf.Resize(next.Width, next.Height); err != nil {
		s.fail(err)
		return
	}
	log.Printf("OVERLAY: resized to content %s", next)
	s.bounds = next
}

func (s *Session) transition(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	log.Printf("OVERLAY: %s %s -> %s", s.policy.Mode, from, to)
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

func (s *Session) notice(message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notice("Anemone", logutil.Sanitize(message, 200))
}
