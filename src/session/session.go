// Package session holds the consumers of committed overlay results.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"anemone/src/clipboard"
	"anemone/src/config"
	"anemone/src/mode"
	"anemone/src/overlay"
)

// Text renders a payload the way it is handed to the user.
func Text(p overlay.Payload) string {
	switch p.Mode {
	case mode.Caption:
		return strings.Join(p.Lines, "\n")
	case mode.Clip:
		return p.Region.String()
	default:
		return ""
	}
}

type ClipboardTarget struct{}

func (ClipboardTarget) Consume(p overlay.Payload) error {
	if err := clipboard.Write(Text(p)); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) Consume(p overlay.Payload) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, Text(p))
	return err
}

// StoreTarget remembers the last committed result of each mode in the settings store.
type StoreTarget struct {
	Store *config.Store
}

func (t StoreTarget) Consume(p overlay.Payload) error {
	if t.Store == nil {
		return errors.New("store target missing store")
	}
	var key string
	switch p.Mode {
	case mode.Caption:
		key = config.KeyLastCaption
	case mode.Clip:
		key = config.KeyLastClip
	default:
		return nil
	}
	t.Store.Set(key, Text(p))
	return t.Store.Save()
}

// Targets hands a payload to every target, even after one fails.
type Targets []overlay.Sink

func (ts Targets) Consume(p overlay.Payload) error {
	var errs []error
	for _, t := range ts {
		if err := t.Consume(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
