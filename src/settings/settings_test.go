package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"anemone/src/config"
	"anemone/src/mode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditWritesDefaultsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "anemone.env")
	cfg := config.Resolve(config.NewStore(path))

	var opened string
	e := &Editor{
		Config: cfg,
		Open: func(_ context.Context, p string) error {
			opened = p
			_, err := os.Stat(p)
			require.NoError(t, err, "defaults exist before the editor opens")
			return os.WriteFile(p, []byte("FADE_PER_SECOND=8\nCLIP_OPACITY_IDLE=0.25\n"), 0o644)
		},
	}

	require.NoError(t, e.Edit(context.Background()))
	assert.Equal(t, path, opened)
	assert.Equal(t, 8.0, cfg.FadePerSecond)
	assert.Equal(t, 0.25, cfg.Opacity[mode.Clip].Idle)
	assert.Same(t, cfg.Store, e.Config.Store)
}

func TestEditReportsEditorFailure(t *testing.T) {
	cfg := config.Resolve(config.NewStore(filepath.Join(t.TempDir(), "anemone.env")))
	boom := errors.New("no editor")
	e := &Editor{Config: cfg, Open: func(context.Context, string) error { return boom }}

	assert.ErrorIs(t, e.Edit(context.Background()), boom)
}

func TestEditReportsSaveFailure(t *testing.T) {
	cfg := config.Resolve(config.NewStore(t.TempDir()))
	e := &Editor{Config: cfg, Open: func(context.Context, string) error {
		t.Fatal("editor must not open when defaults cannot be written")
		return nil
	}}

	var accessErr *config.AccessError
	require.ErrorAs(t, e.Edit(context.Background()), &accessErr)
	assert.Equal(t, "save", accessErr.Op)
}

func TestEditorCommand(t *testing.T) {
	name, args := editorCommand("windows", "code --wait")
	assert.Equal(t, "notepad.exe", name)
	assert.Empty(t, args)

	name, args = editorCommand("linux", "code --wait")
	assert.Equal(t, "code", name)
	assert.Equal(t, []string{"--wait"}, args)

	name, _ = editorCommand("darwin", "")
	assert.Equal(t, "vi", name)
}
