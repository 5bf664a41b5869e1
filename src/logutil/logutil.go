package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Setup enables file logging with size-based rotation (10MB, max 3 archives).
// When disabled, logs are discarded so the tray process stays silent.
func Setup(enableFileLogging bool, path string) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	w, err := openRotating(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(w)
}

// SetupStderr sends logs to stderr (verbose CLI runs).
func SetupStderr() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.SetOutput(os.Stderr)
}

// rotatingWriter appends to path. A nil f means the last open failed and
// is retried on the next write.
type rotatingWriter struct {
	path  string
	limit int64
	f     *os.File
}

func openRotating(path string) (*rotatingWriter, error) {
	rotateIfNeeded(path)
	w := &rotatingWriter{path: path, limit: maxSizeBytes}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	if w.f == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.limit {
		_ = w.f.Close()
		w.f = nil
		rotate(w.path)
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	return w.f.Write(p)
}

func rotateIfNeeded(path string) {
	if st, err := os.Stat(path); err == nil && st.Size() > maxSizeBytes {
		rotate(path)
	}
}

// rotate shifts path -> .1 -> .2 -> .3; the oldest archive is discarded.
func rotate(path string) {
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }

// Sanitize makes user text safe for a single log line: control characters are
// escaped and the result is truncated.
func Sanitize(text string, maxLen int) string {
	runes := []rune(text)
	truncated := false
	if maxLen > 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
		truncated = true
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case r == '\n' || r == '\r':
			out = append(out, '\\', 'n')
		case r == '\t':
			out = append(out, '\\', 't')
		case r < 32 || r == 127:
			out = append(out, '?')
		default:
			out = append(out, r)
		}
	}
	if truncated {
		return string(out) + "..."
	}
	return string(out)
}
