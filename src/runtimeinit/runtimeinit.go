package runtimeinit

import (
	"fmt"
	"log"

	"anemone/src/clipboard"
	"anemone/src/config"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(*config.Config)
	// RequireClipboard turns a clipboard init failure into a bootstrap error.
	RequireClipboard bool
}

// Bootstrap loads the configuration, sets up logging and initializes the clipboard.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg)
	}
	log.Printf("Config: using store %s", cfg.Store.Path())

	if err := clipboard.Init(); err != nil {
		if opts.RequireClipboard {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		log.Printf("Clipboard unavailable, commits will not be copied: %v", err)
	}

	return cfg, nil
}
