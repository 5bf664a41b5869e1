//go:build !windows

package overlay

import (
	"errors"

	"anemone/src/screen"
)

// ErrUnsupportedPlatform is returned by CreateWindow outside Windows.
var ErrUnsupportedPlatform = errors.New("layered overlay windows are only supported on Windows")

type nativePlatform struct{}

// NewPlatform returns a platform that reports screen metrics but cannot create windows.
func NewPlatform() Platform { return nativePlatform{} }

func (nativePlatform) ScreenBounds() (screen.Rect, error) {
	return screen.PrimaryBounds()
}

func (nativePlatform) CreateWindow(WindowOptions) (Window, error) {
	return nil, ErrUnsupportedPlatform
}
