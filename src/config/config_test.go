package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"anemone/src/mode"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anemone.env")
	content := "ENABLE_FILE_LOGGING=true\nCAPTION_OPACITY_IDLE=0.5\nHOTKEY_CLIP=Ctrl+Shift+C\nFADE_PER_SECOND=nope\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write store: %v", err)
	}
	t.Setenv("HOTKEY_CAPTION", "Ctrl+Shift+T")

	cfg, err := LoadWithOptions(LoadOptions{StorePathOverride: path})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if got := cfg.Opacity[mode.Caption].Idle; got != 0.5 {
		t.Errorf("Expected caption idle opacity 0.5, got %v", got)
	}
	if got := cfg.Opacity[mode.Caption].Hover; got != 1.0 {
		t.Errorf("Expected default caption hover opacity 1.0, got %v", got)
	}
	if cfg.Hotkeys[mode.Clip] != "Ctrl+Shift+C" {
		t.Errorf("Expected clip hotkey from store, got '%s'", cfg.Hotkeys[mode.Clip])
	}
	if cfg.Hotkeys[mode.Caption] != "Ctrl+Shift+T" {
		t.Errorf("Expected caption hotkey from environment, got '%s'", cfg.Hotkeys[mode.Caption])
	}
	if cfg.FadePerSecond != DefaultFadePerSecond {
		t.Errorf("Expected invalid fade rate to fall back to default, got %v", cfg.FadePerSecond)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "anemone.env")
	cfg, err := LoadWithOptions(LoadOptions{StorePathOverride: path})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Opacity[mode.Transparent] != (OpacityLevels{Idle: 0, Hover: 0.6}) {
		t.Errorf("Unexpected transparent defaults: %+v", cfg.Opacity[mode.Transparent])
	}
	if len(cfg.Store.Keys()) != 0 {
		t.Errorf("Expected empty store, got keys %v", cfg.Store.Keys())
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "anemone.env")
	store := NewStore(path)
	store.Set(KeyLastCaption, "Hi\n!")
	store.Set(KeyLastMode, "caption")
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, ok := reloaded.Get(KeyLastCaption); !ok || v != "Hi\n!" {
		t.Errorf("Expected multi-line caption to survive, got %q (present=%v)", v, ok)
	}
	if _, ok := reloaded.Get("ABSENT"); ok {
		t.Error("Expected absent key to be reported as absent")
	}
}

func TestStoreLoadDirectoryIsAccessError(t *testing.T) {
	store := NewStore(t.TempDir())
	err := store.Load()
	var accessErr *AccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("Expected *AccessError, got %v", err)
	}
	if accessErr.Op != "load" {
		t.Errorf("Expected op 'load', got %q", accessErr.Op)
	}
}

func TestWriteDefaultsKeepsExistingValues(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "anemone.env"))
	store.Set(OpacityKey(mode.Clip, "IDLE"), "0.2")

	if !WriteDefaults(store) {
		t.Fatal("Expected defaults to be written into an almost empty store")
	}
	if v, _ := store.Get(OpacityKey(mode.Clip, "IDLE")); v != "0.2" {
		t.Errorf("Existing value was overwritten: %q", v)
	}
	if v, _ := store.Get(HotkeyKey(mode.Transparent)); v != "Ctrl+Alt+3" {
		t.Errorf("Expected transparent hotkey default, got %q", v)
	}
	if WriteDefaults(store) {
		t.Error("Second WriteDefaults should not change anything")
	}
}

func TestReloadPicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anemone.env")
	cfg, _ := LoadWithOptions(LoadOptions{StorePathOverride: path})
	if err := os.WriteFile(path, []byte("CLIP_OPACITY_HOVER=0.9\n"), 0o644); err != nil {
		t.Fatalf("Failed to write store: %v", err)
	}
	if err := cfg.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if cfg.Opacity[mode.Clip].Hover != 0.9 {
		t.Errorf("Expected reloaded hover opacity 0.9, got %v", cfg.Opacity[mode.Clip].Hover)
	}
}
