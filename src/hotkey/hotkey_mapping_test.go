package hotkey

import (
	"testing"

	"anemone/src/config"
	"anemone/src/mode"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"super", []uint16{91, 92}},
		{"1", []uint16{49}},
		{"3", []uint16{51}},
		{"c", []uint16{67}},
		{"f9", []uint16{120}},
		{"f24", []uint16{135}},
		{"printscreen", []uint16{44}},
		{"prtsc", []uint16{44}},
		{"pageup", []uint16{33}},

		// Overlay controls stay unbound.
		{"esc", nil},
		{"enter", nil},
		{"backspace", nil},
		{"f25", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToRawcodes(tt.keyName)
			if len(result) != len(tt.expected) {
				t.Errorf("keyNameToRawcodes(%q) returned %d rawcodes, expected %d",
					tt.keyName, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("keyNameToRawcodes(%q)[%d] = %d, expected %d",
						tt.keyName, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+1", []string{"ctrl", "alt", "1"}},
		{"ctrl + alt + 3", []string{"ctrl", "alt", "3"}},
		{"Shift+PrtSc", []string{"shift", "prtsc"}},
		{"Win+Shift+C", []string{"cmd", "shift", "c"}},
		{"Super+F9", []string{"cmd", "f9"}},
		{"Ctrl++T", []string{"ctrl", "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseHotkey(%q) returned %d keys, expected %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDefaultModeHotkeysRegister(t *testing.T) {
	cfg := config.Resolve(nil)
	l := NewListener()
	for _, m := range mode.All {
		if err := l.Register(cfg.Hotkeys[m], func() {}); err != nil {
			t.Errorf("default %s hotkey %q: %v", m, cfg.Hotkeys[m], err)
		}
	}
}

func TestOverlayControlKeysCannotBeBound(t *testing.T) {
	for _, combo := range []string{"Ctrl+Esc", "Alt+Enter", "Ctrl+Backspace"} {
		if _, err := newBinding(combo, nil); err == nil {
			t.Errorf("newBinding(%q) succeeded, want error", combo)
		}
	}
}

func TestBindingFiresOnFullCombination(t *testing.T) {
	fired := 0
	b, err := newBinding("Ctrl+Alt+1", func() { fired++ })
	if err != nil {
		t.Fatalf("newBinding: %v", err)
	}

	steps := []struct {
		rawcode uint16
		down    bool
		want    bool
	}{
		{162, true, false}, // left ctrl
		{49, true, false},  // 1 without alt
		{49, false, false},
		{165, true, false}, // right alt
		{49, true, true},
		{49, true, false}, // combination resets after firing
	}
	for i, s := range steps {
		if got := b.update(s.rawcode, s.down); got != s.want {
			t.Errorf("step %d: update(%d, %v) = %v, want %v", i, s.rawcode, s.down, got, s.want)
		}
	}
}

func TestNewBindingRejectsUnknownKeys(t *testing.T) {
	if _, err := newBinding("Ctrl+Banana", nil); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := newBinding("  ", nil); err == nil {
		t.Error("expected error for empty combination")
	}
}

func TestListenerDispatch(t *testing.T) {
	l := NewListener()
	var got []string
	if err := l.Register("Ctrl+Alt+1", func() { got = append(got, "clip") }); err != nil {
		t.Fatal(err)
	}
	if err := l.Register("Ctrl+Alt+2", func() { got = append(got, "caption") }); err != nil {
		t.Fatal(err)
	}

	for _, rc := range []uint16{162, 164, 50} {
		l.dispatch(rc, true)
	}
	if len(got) != 1 || got[0] != "caption" {
		t.Errorf("dispatch fired %v, want [caption]", got)
	}
}
