// Package settings lets the user edit the settings store in a text editor.
package settings

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"anemone/src/config"
)

// Opener opens path in an editor and returns once the editor has closed.
type Opener func(ctx context.Context, path string) error

type Editor struct {
	Config *config.Config
	// Open defaults to the platform editor.
	Open Opener
}

// Edit writes any missing defaults, opens the store file, waits for the
// editor and reloads the configuration.
func (e *Editor) Edit(ctx context.Context) error {
	store := e.Config.Store
	_, statErr := os.Stat(store.Path())
	if config.WriteDefaults(store) || statErr != nil {
		if err := store.Save(); err != nil {
			return err
		}
		log.Printf("Settings: wrote defaults to %s", store.Path())
	}

	open := e.Open
	if open == nil {
		open = OpenInEditor
	}
	log.Printf("Settings: opening %s", store.Path())
	if err := open(ctx, store.Path()); err != nil {
		return fmt.Errorf("open editor: %w", err)
	}

	if err := e.Config.Reload(); err != nil {
		return err
	}
	log.Printf("Settings: reloaded %d keys", len(store.Keys()))
	return nil
}

// OpenInEditor runs notepad on Windows and $EDITOR (or vi) elsewhere.
func OpenInEditor(ctx context.Context, path string) error {
	name, args := editorCommand(runtime.GOOS, os.Getenv("EDITOR"))
	cmd := exec.CommandContext(ctx, name, append(args, path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(goos, editorEnv string) (string, []string) {
	if goos == "windows" {
		return "notepad.exe", nil
	}
	if fields := strings.Fields(editorEnv); len(fields) > 0 {
		return fields[0], fields[1:]
	}
	return "vi", nil
}
