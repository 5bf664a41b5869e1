package overlay

import (
	"anemone/src/mode"
	"anemone/src/screen"
)

type Outcome int

const (
	Cancelled Outcome = iota
	Committed
)

func (o Outcome) String() string {
	if o == Committed {
		return "committed"
	}
	return "cancelled"
}

// Payload is the content produced by a committing session.
// Lines is set for Caption, Region (screen coordinates) for Clip.
type Payload struct {
	Mode   mode.Mode
	Lines  []string
	Region screen.Rect
}

// Result is what a closed session hands back to the mode controller.
type Result struct {
	Mode    mode.Mode
	Outcome Outcome
	Payload Payload
}

// Sink consumes committed payloads (clipboard, stdout, settings store).
type Sink interface {
	Consume(Payload) error
}

// Notifier shows a non-blocking message to the user.
type Notifier interface {
	Notice(title, message string)
}
