package overlay

import (
	"fmt"

	"anemone/src/config"
	"anemone/src/mode"
	"anemone/src/opacity"
	"anemone/src/screen"
)

const (
	DefaultWidth  = 650
	DefaultHeight = 200

	minSelectionSpan = 5
)

// WindowOptions is the declarative description of the native window a
// session needs. The session never touches window attributes itself.
type WindowOptions struct {
	Bounds       screen.Rect
	Title        string
	Topmost      bool
	Borderless   bool
	NoActivate   bool
	ClickThrough bool
	Crosshair    bool
	// PollKeys asks the window to synthesize Escape and Enter from the
	// global key state, for windows that never get keyboard focus.
	PollKeys bool
	// PollEscape polls only Escape, and only while the window lacks focus.
	PollEscape bool
	// PollCursor synthesizes cursor movement and presence from the global
	// cursor position, for windows that receive no mouse input.
	PollCursor bool
}

// Policy is the per-mode configuration of the one overlay state machine.
type Policy struct {
	Mode            mode.Mode
	Opacity         opacity.Levels
	FadePerSecond   float64
	FontSize        float64
	FullScreen      bool
	DefaultWidth    int
	DefaultHeight   int
	CanCommit       bool
	ResizeToContent bool
	Window          WindowOptions
}

// PolicyFor builds the policy of m from cfg. A nil cfg uses built-in defaults.
func PolicyFor(m mode.Mode, cfg *config.Config) (Policy, error) {
	if !m.Valid() {
		return Policy{}, fmt.Errorf("unknown mode %d", int(m))
	}
	if cfg == nil {
		cfg = config.Resolve(nil)
	}

	levels := cfg.Opacity[m]
	p := Policy{
		Mode:          m,
		Opacity:       opacity.Levels{Idle: levels.Idle, Hover: levels.Hover},
		FadePerSecond: cfg.FadePerSecond,
		FontSize:      16,
		DefaultWidth:  DefaultWidth,
		DefaultHeight: DefaultHeight,
		Window: WindowOptions{
			Title:      "Anemone - " + m.Title(),
			Topmost:    true,
			Borderless: true,
		},
	}

	switch m {
	case mode.Clip:
		p.FullScreen = true
		p.CanCommit = true
		p.Window.NoActivate = true
		p.Window.PollKeys = true
		p.Window.Crosshair = true
	case mode.Caption:
		p.CanCommit = true
		p.ResizeToContent = true
		p.FontSize = cfg.CaptionFontSize
		p.Window.PollEscape = true
	case mode.Transparent:
		p.FullScreen = true
		p.Window.NoActivate = true
		p.Window.ClickThrough = true
		p.Window.PollKeys = true
		p.Window.PollCursor = true
	}
	return p, nil
}

// InitialBounds places the window on the display described by screenRect.
func (p Policy) InitialBounds(screenRect screen.Rect) screen.Rect {
	if p.FullScreen {
		return screenRect
	}
	return screenRect.Centered(p.DefaultWidth, p.DefaultHeight)
}
