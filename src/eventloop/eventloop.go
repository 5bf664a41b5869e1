// Package eventloop is the mode controller: it asks the launcher what to do,
// runs one overlay session at a time and loops until the user exits.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"anemone/src/config"
	"anemone/src/launcher"
	"anemone/src/mode"
	"anemone/src/overlay"
	"anemone/src/surface"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

// SessionRunner opens an overlay and blocks until it closes.
type SessionRunner interface {
	Run(ctx context.Context, m mode.Mode) (overlay.Result, error)
}

type SettingsEditor interface {
	Edit(ctx context.Context) error
}

type Dialogs interface {
	Notice(title, message string)
	BlockingError(title, message string)
}

type Options struct {
	Launcher launcher.Launcher
	Runner   SessionRunner
	Settings SettingsEditor
	// Store receives LAST_MODE. Nil disables remembering the mode.
	Store    *config.Store
	Dialogs  Dialogs
	OnResult func(overlay.Result)
}

// Loop is the single-threaded coordinator between launcher and overlay sessions.
type Loop struct {
	opts Options
}

func New(opts Options) *Loop {
	return &Loop{opts: opts}
}

// Run blocks until the user exits, the launcher closes or ctx is cancelled,
// and returns the process exit code.
func (l *Loop) Run(ctx context.Context) int {
	for {
		choice, err := l.opts.Launcher.Next(ctx)
		if err != nil {
			if errors.Is(err, launcher.ErrClosed) || ctx.Err() != nil {
				log.Printf("Loop: launcher closed (%v)", err)
				return ExitOK
			}
			log.Printf("Loop: launcher failed: %v", err)
			return ExitFailure
		}
		log.Printf("Loop: choice %s", choice)

		switch choice.Kind {
		case launcher.ChooseExit:
			return ExitOK
		case launcher.ChooseSettings:
			l.editSettings(ctx)
		case launcher.ChooseMode:
			if !l.runMode(ctx, choice) {
				return ExitFailure
			}
		}
	}
}

// runMode runs one session. It reports false when the failure is fatal.
func (l *Loop) runMode(ctx context.Context, choice launcher.Choice) bool {
	m := choice.Mode
	l.rememberMode(m)

	res, err := l.opts.Runner.Run(ctx, m)
	if choice.Reply != nil {
		choice.Reply(res, err)
	}
	if err != nil {
		var creationErr *surface.CreationError
		switch {
		case errors.As(err, &creationErr):
			log.Printf("Loop: overlay creation failed: %v", err)
			l.blockingError(fmt.Sprintf("Could not open the %s overlay.\n\n%v", m.Title(), err))
			return false
		case errors.Is(err, overlay.ErrSessionActive):
			log.Printf("Loop: %v", err)
		default:
			log.Printf("Loop: %s session failed: %v", m, err)
			l.notice(fmt.Sprintf("The %s overlay closed unexpectedly: %v", m.Title(), err))
		}
		return true
	}

	log.Printf("Loop: %s session %s", m, res.Outcome)
	if l.opts.OnResult != nil {
		l.opts.OnResult(res)
	}
	return true
}

func (l *Loop) editSettings(ctx context.Context) {
	if l.opts.Settings == nil {
		return
	}
	if err := l.opts.Settings.Edit(ctx); err != nil {
		log.Printf("Loop: settings failed: %v", err)
		l.notice(fmt.Sprintf("Settings could not be updated: %v", err))
	}
}

func (l *Loop) rememberMode(m mode.Mode) {
	store := l.opts.Store
	if store == nil {
		return
	}
	store.Set(config.KeyLastMode, m.String())
	if err := store.Save(); err != nil {
		log.Printf("Loop: %v", err)
		l.notice(fmt.Sprintf("Could not save settings: %v", err))
	}
}

func (l *Loop) notice(message string) {
	if l.opts.Dialogs != nil {
		l.opts.Dialogs.Notice("Anemone", message)
	}
}

func (l *Loop) blockingError(message string) {
	if l.opts.Dialogs != nil {
		l.opts.Dialogs.BlockingError("Anemone", message)
	}
}
