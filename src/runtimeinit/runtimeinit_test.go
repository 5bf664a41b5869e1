package runtimeinit

import (
	"os"
	"path/filepath"
	"testing"

	"anemone/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapLoadsOverrideStore(t *testing.T) {
	t.Setenv(config.KeyCaptionFontSize, "")
	t.Setenv(config.KeyEnableFileLogging, "")
	path := filepath.Join(t.TempDir(), "anemone.env")
	require.NoError(t, os.WriteFile(path, []byte("CAPTION_FONT_SIZE=30\nENABLE_FILE_LOGGING=true\n"), 0o644))

	var logged *config.Config
	cfg, err := Bootstrap(Options{
		LoadOptions:  config.LoadOptions{StorePathOverride: path},
		SetupLogging: func(c *config.Config) { logged = c },
	})
	require.NoError(t, err)

	assert.Same(t, cfg, logged)
	assert.Equal(t, path, cfg.Store.Path())
	assert.Equal(t, 30.0, cfg.CaptionFontSize)
	assert.True(t, cfg.EnableFileLogging)
}
