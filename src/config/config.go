package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"anemone/src/mode"
)

// Setting keys. Environment variables with the same name take precedence
// over values in the store.
const (
	KeyEnableFileLogging = "ENABLE_FILE_LOGGING"
	KeyLogFile           = "LOG_FILE"
	KeyFadePerSecond     = "FADE_PER_SECOND"
	KeyCaptionFontSize   = "CAPTION_FONT_SIZE"
	KeyLastMode          = "LAST_MODE"
	KeyLastCaption       = "LAST_CAPTION"
	KeyLastClip          = "LAST_CLIP"

	StorePathEnvVar = "ANEMONE_CONFIG"
	storeDirName    = "anemone"
	storeFileName   = "anemone.env"
)

const (
	DefaultFadePerSecond   = 4.0
	DefaultCaptionFontSize = 22.0
	DefaultLogFile         = "anemone_debug.log"
)

// OpacityLevels are the resting opacities with and without the mouse over the overlay.
type OpacityLevels struct {
	Idle  float64
	Hover float64
}

var defaultOpacity = map[mode.Mode]OpacityLevels{
	mode.Clip:        {Idle: 0.35, Hover: 0.55},
	mode.Caption:     {Idle: 0.85, Hover: 1.0},
	mode.Transparent: {Idle: 0.0, Hover: 0.6},
}

var defaultHotkeys = map[mode.Mode]string{
	mode.Clip:        "Ctrl+Alt+1",
	mode.Caption:     "Ctrl+Alt+2",
	mode.Transparent: "Ctrl+Alt+3",
}

type LoadOptions struct {
	StorePathOverride string
}

type Config struct {
	Store             *Store
	EnableFileLogging bool
	LogFile           string
	FadePerSecond     float64
	CaptionFontSize   float64
	Hotkeys           map[mode.Mode]string
	Opacity           map[mode.Mode]OpacityLevels
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions opens the store and resolves typed settings from it.
// Store read failures are logged and built-in defaults are used instead.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	store := NewStore(resolveStorePath(opts))
	if err := store.Load(); err != nil {
		log.Printf("Config: %v; using defaults", err)
	}
	return Resolve(store), nil
}

// Resolve derives typed settings from store values, environment overrides and defaults.
func Resolve(store *Store) *Config {
	cfg := &Config{
		Store:             store,
		EnableFileLogging: strings.ToLower(lookup(store, KeyEnableFileLogging)) == "true",
		LogFile:           getWithDefault(store, KeyLogFile, DefaultLogFile),
		FadePerSecond:     positiveFloat(store, KeyFadePerSecond, DefaultFadePerSecond),
		CaptionFontSize:   positiveFloat(store, KeyCaptionFontSize, DefaultCaptionFontSize),
		Hotkeys:           map[mode.Mode]string{},
		Opacity:           map[mode.Mode]OpacityLevels{},
	}

	for _, m := range mode.All {
		cfg.Hotkeys[m] = getWithDefault(store, HotkeyKey(m), defaultHotkeys[m])
		def := defaultOpacity[m]
		cfg.Opacity[m] = OpacityLevels{
			Idle:  unitFloat(store, OpacityKey(m, "IDLE"), def.Idle),
			Hover: unitFloat(store, OpacityKey(m, "HOVER"), def.Hover),
		}
	}

	return cfg
}

// Reload re-reads the store file and refreshes the typed settings in place.
func (c *Config) Reload() error {
	err := c.Store.Load()
	*c = *Resolve(c.Store)
	return err
}

// WriteDefaults stores every known setting that is still absent.
// It reports whether anything was added.
func WriteDefaults(store *Store) bool {
	changed := store.SetDefault(KeyEnableFileLogging, "false")
	changed = store.SetDefault(KeyFadePerSecond, formatFloat(DefaultFadePerSecond)) || changed
	changed = store.SetDefault(KeyCaptionFontSize, formatFloat(DefaultCaptionFontSize)) || changed
	for _, m := range mode.All {
		changed = store.SetDefault(HotkeyKey(m), defaultHotkeys[m]) || changed
		changed = store.SetDefault(OpacityKey(m, "IDLE"), formatFloat(defaultOpacity[m].Idle)) || changed
		changed = store.SetDefault(OpacityKey(m, "HOVER"), formatFloat(defaultOpacity[m].Hover)) || changed
	}
	return changed
}

// HotkeyKey is the setting name of the global hotkey for m, e.g. HOTKEY_CLIP.
func HotkeyKey(m mode.Mode) string {
	return "HOTKEY_" + strings.ToUpper(m.String())
}

// OpacityKey is the setting name for an opacity level, e.g. CAPTION_OPACITY_IDLE.
func OpacityKey(m mode.Mode, level string) string {
	return strings.ToUpper(m.String()) + "_OPACITY_" + level
}

func resolveStorePath(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.StorePathOverride); override != "" {
		return override
	}
	if envPath := strings.TrimSpace(os.Getenv(StorePathEnvVar)); envPath != "" {
		return envPath
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, storeDirName, storeFileName)
	}
	return storeFileName
}

func lookup(store *Store, key string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if store == nil {
		return ""
	}
	value, _ := store.Get(key)
	return strings.TrimSpace(value)
}

func getWithDefault(store *Store, key, defaultValue string) string {
	if value := lookup(store, key); value != "" {
		return value
	}
	return defaultValue
}

func positiveFloat(store *Store, key string, defaultValue float64) float64 {
	raw := lookup(store, key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Printf("Config: ignoring invalid %s=%q", key, raw)
		return defaultValue
	}
	return v
}

func unitFloat(store *Store, key string, defaultValue float64) float64 {
	raw := lookup(store, key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		log.Printf("Config: ignoring invalid %s=%q (expected 0..1)", key, raw)
		return defaultValue
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
