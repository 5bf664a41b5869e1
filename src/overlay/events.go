package overlay

import (
	"fmt"
	"time"
)

type EventKind int

const (
	EventTick EventKind = iota
	EventMouseMove
	EventMouseEnter
	EventMouseLeave
	EventMouseDown
	EventMouseUp
	EventKeyDown
	EventChar
	EventClose
)

// Key identifies the non-character keys an overlay reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// Event is one input or timer notification delivered by the native window.
// Coordinates are window-client coordinates.
type Event struct {
	Kind    EventKind
	Elapsed time.Duration
	X, Y    int
	Key     Key
	Ctrl    bool
	Rune    rune
}

func Tick(elapsed time.Duration) Event { return Event{Kind: EventTick, Elapsed: elapsed} }
func MouseMove(x, y int) Event         { return Event{Kind: EventMouseMove, X: x, Y: y} }
func MouseEnter() Event                { return Event{Kind: EventMouseEnter} }
func MouseLeave() Event                { return Event{Kind: EventMouseLeave} }
func MouseDown(x, y int) Event         { return Event{Kind: EventMouseDown, X: x, Y: y} }
func MouseUp(x, y int) Event           { return Event{Kind: EventMouseUp, X: x, Y: y} }
func KeyPress(k Key, ctrl bool) Event  { return Event{Kind: EventKeyDown, Key: k, Ctrl: ctrl} }
func Char(r rune) Event                { return Event{Kind: EventChar, Rune: r} }
func Close() Event                     { return Event{Kind: EventClose} }

func (e Event) String() string {
	switch e.Kind {
	case EventTick:
		return fmt.Sprintf("tick(%s)", e.Elapsed)
	case EventMouseMove:
		return fmt.Sprintf("move(%d,%d)", e.X, e.Y)
	case EventMouseEnter:
		return "enter"
	case EventMouseLeave:
		return "leave"
	case EventMouseDown:
		return fmt.Sprintf("down(%d,%d)", e.X, e.Y)
	case EventMouseUp:
		return fmt.Sprintf("up(%d,%d)", e.X, e.Y)
	case EventKeyDown:
		return fmt.Sprintf("key(%d,ctrl=%v)", e.Key, e.Ctrl)
	case EventChar:
		return fmt.Sprintf("char(%q)", e.Rune)
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("event(%d)", int(e.Kind))
	}
}

// State is the lifecycle position of an overlay session.
type State int

const (
	Initializing State = iota
	Active
	Committing
	Cancelling
	Closed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Active:
		return "Active"
	case Committing:
		return "Committing"
	case Cancelling:
		return "Cancelling"
	case Closed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s == Closed }
