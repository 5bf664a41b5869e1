// Package launcher asks the user what to do next: open an overlay mode,
// edit settings or exit.
package launcher

import (
	"context"
	"errors"
	"fmt"

	"anemone/src/mode"
	"anemone/src/overlay"
)

// ErrClosed is returned by Next once the launcher can produce no more choices.
var ErrClosed = errors.New("launcher closed")

type Kind int

const (
	ChooseMode Kind = iota
	ChooseSettings
	ChooseExit
)

type Choice struct {
	Kind Kind
	Mode mode.Mode
	// Reply, when set, receives the outcome of the session a ChooseMode opened.
	Reply func(overlay.Result, error)
}

func ModeChoice(m mode.Mode) Choice { return Choice{Kind: ChooseMode, Mode: m} }

func (c Choice) String() string {
	switch c.Kind {
	case ChooseMode:
		return "mode:" + c.Mode.String()
	case ChooseSettings:
		return "settings"
	case ChooseExit:
		return "exit"
	default:
		return fmt.Sprintf("choice(%d)", int(c.Kind))
	}
}

// Launcher blocks until the user picks something.
type Launcher interface {
	Next(ctx context.Context) (Choice, error)
}

// Fixed yields a single mode and then exit. It backs the --mode flag.
type Fixed struct {
	Mode mode.Mode
	used bool
}

func (f *Fixed) Next(ctx context.Context) (Choice, error) {
	if err := ctx.Err(); err != nil {
		return Choice{}, err
	}
	if f.used {
		return Choice{Kind: ChooseExit}, nil
	}
	f.used = true
	return ModeChoice(f.Mode), nil
}
