package main

import (
	"testing"

	"anemone/src/eventloop"
	"anemone/src/mode"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"anemone", "-mode", "clip", "-config", "/tmp/a.env"},
			out:  []string{"anemone", "--mode", "clip", "--config", "/tmp/a.env"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"anemone", "-mode=caption", "-verbose"},
			out:  []string{"anemone", "--mode=caption", "--verbose"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"anemone", "--mode", "clip", "-v", "-modex"},
			out:  []string{"anemone", "--mode", "clip", "-v", "-modex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--mode", "trans", "--config", "/tmp/a.env", "-v"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.configPath != "/tmp/a.env" || !opts.verbose {
		t.Fatalf("unexpected options: %+v", opts)
	}

	m, fixed, err := opts.fixedMode()
	if err != nil || !fixed || m != mode.Transparent {
		t.Fatalf("fixedMode() = %v, %v, %v", m, fixed, err)
	}
}

func TestRunWithArgsRejectsUnknownMode(t *testing.T) {
	if code := runWithArgs([]string{"anemone", "--mode", "hologram"}); code != eventloop.ExitFailure {
		t.Fatalf("Expected exit code %d, got %d", eventloop.ExitFailure, code)
	}
}
