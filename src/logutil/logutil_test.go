package logutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	got := Sanitize("Hi\n!\x01", 0)
	if got != `Hi\n!?` {
		t.Errorf("Sanitize returned %q", got)
	}
	if got := Sanitize("abcdef", 3); got != "abc..." {
		t.Errorf("Expected truncation, got %q", got)
	}
}

func TestRotateShiftsArchives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anemone.log")
	if err := os.WriteFile(path, []byte("current"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archiveName(path, 1), []byte("older"), 0o644); err != nil {
		t.Fatal(err)
	}

	rotate(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected base log to be moved away, stat err=%v", err)
	}
	data, err := os.ReadFile(archiveName(path, 2))
	if err != nil || string(data) != "older" {
		t.Errorf("Expected .2 to hold the previous .1, got %q (%v)", data, err)
	}
	data, err = os.ReadFile(archiveName(path, 1))
	if err != nil || string(data) != "current" {
		t.Errorf("Expected .1 to hold the current log, got %q (%v)", data, err)
	}
}

func TestWriterRotatesAtLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anemone.log")
	w := &rotatingWriter{path: path, limit: 8}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.f.Close()

	if data, _ := os.ReadFile(archiveName(path, 1)); string(data) != "first\n" {
		t.Errorf("archive holds %q", data)
	}
	if data, _ := os.ReadFile(path); string(data) != "second\n" {
		t.Errorf("log holds %q", data)
	}
}

func TestWriterRecoversAfterFailedOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	path := filepath.Join(dir, "anemone.log")
	w := &rotatingWriter{path: path, limit: maxSizeBytes}

	if _, err := w.Write([]byte("lost\n")); err == nil {
		t.Fatal("Expected error while the log directory is missing")
	}
	if w.f != nil {
		t.Fatal("Expected no file handle after a failed open")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("kept\n")); err != nil {
		t.Fatalf("Write after recovery: %v", err)
	}
	w.f.Close()
	if data, _ := os.ReadFile(path); string(data) != "kept\n" {
		t.Errorf("log holds %q", data)
	}
}
