package hotkey

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listener dispatches global key combinations to callbacks. All bindings
// share one gohook event loop.
type Listener struct {
	mu       sync.Mutex
	bindings []*binding
	running  bool
}

type binding struct {
	combo    string
	keys     []keyState
	callback func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

func NewListener() *Listener { return &Listener{} }

// Register adds a combination such as "Ctrl+Alt+1". It must be called before Start.
func (l *Listener) Register(hotkeyConfig string, callback func()) error {
	b, err := newBinding(hotkeyConfig, callback)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings = append(l.bindings, b)
	log.Printf("Hotkey listener configured for: %s", hotkeyConfig)
	return nil
}

// Start runs the hook on its own goroutine. Callbacks run on that goroutine.
func (l *Listener) Start() {
	l.mu.Lock()
	if l.running || len(l.bindings) == 0 {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				l.dispatch(ev.Rawcode, true)
			case gohook.KeyUp:
				l.dispatch(ev.Rawcode, false)
			}
		}
		log.Printf("Event channel closed")
	}()
}

// Stop ends the hook. The listener cannot be restarted.
func (l *Listener) Stop() {
	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	if running {
		gohook.End()
	}
}

func (l *Listener) dispatch(rawcode uint16, down bool) {
	var fire []func()
	l.mu.Lock()
	for _, b := range l.bindings {
		if b.update(rawcode, down) && b.callback != nil {
			log.Printf("HOTKEY COMBINATION DETECTED! %s", b.combo)
			fire = append(fire, b.callback)
		}
	}
	l.mu.Unlock()

	for _, cb := range fire {
		cb()
	}
}

func newBinding(hotkeyConfig string, callback func()) (*binding, error) {
	b := &binding{combo: hotkeyConfig, callback: callback}
	for _, keyName := range parseHotkey(hotkeyConfig) {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("hotkey %q: cannot map key %q", hotkeyConfig, keyName)
		}
		b.keys = append(b.keys, keyState{name: keyName, rawcodes: rawcodes})
	}
	if len(b.keys) == 0 {
		return nil, fmt.Errorf("hotkey %q: no keys", hotkeyConfig)
	}
	return b, nil
}

// update records a key transition and reports whether the whole combination
// is now held. Firing resets the combination.
func (b *binding) update(rawcode uint16, down bool) bool {
	matched := false
	for i := range b.keys {
		for _, rc := range b.keys[i].rawcodes {
			if rc == rawcode {
				b.keys[i].pressed = down
				matched = true
				break
			}
		}
	}
	if !down || !matched {
		return false
	}
	for _, k := range b.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range b.keys {
		b.keys[i].pressed = false
	}
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// specialKeys are the non-alphanumeric keys a mode combination may use.
// Escape, Enter and Backspace drive the open overlay and cannot be bound.
var specialKeys = map[string][]uint16{
	"ctrl":        {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":         {164, 165}, // VK_LMENU, VK_RMENU
	"shift":       {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":         {91, 92},   // VK_LWIN, VK_RWIN
	"space":       {32},
	"printscreen": {44},
	"prtsc":       {44},
	"pause":       {19},
	"insert":      {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pagedown":    {34},
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes
// Returns a slice of rawcodes (e.g., both left and right variants for modifiers)
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if keyName == "win" || keyName == "super" {
		keyName = "cmd"
	}
	if codes, ok := specialKeys[keyName]; ok {
		return codes
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}

	if n, err := strconv.Atoi(strings.TrimPrefix(keyName, "f")); err == nil && strings.HasPrefix(keyName, "f") && n >= 1 && n <= 24 {
		return []uint16{uint16(111 + n)} // VK_F1 = 112
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
