package annotation

import (
	"log"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Buffer is the multi-line caption text being edited in an overlay session.
//
// Lines are never empty as a whole (an empty buffer is one empty line), the
// selected line is always a valid index and the cursor column (in runes)
// never exceeds the selected line's length.
type Buffer struct {
	lines    [][]rune
	selected int
	column   int
}

func New() *Buffer {
	return &Buffer{lines: [][]rune{{}}}
}

// InsertChar inserts r at the cursor and advances the cursor by one.
// '\n' starts a new line; other control characters except tab are dropped.
func (b *Buffer) InsertChar(r rune) {
	switch {
	case r == '\n':
		b.Newline()
		return
	case r != '\t' && unicode.IsControl(r):
		return
	}

	line := b.lines[b.selected]
	line = append(line, 0)
	copy(line[b.column+1:], line[b.column:])
	line[b.column] = r
	b.lines[b.selected] = line
	b.column++
	b.normalize("InsertChar")
}

// Newline splits the selected line at the cursor; the cursor moves to the
// start of the new line.
func (b *Buffer) Newline() {
	line := b.lines[b.selected]
	head := append([]rune(nil), line[:b.column]...)
	tail := append([]rune(nil), line[b.column:]...)

	lines := make([][]rune, 0, len(b.lines)+1)
	lines = append(lines, b.lines[:b.selected]...)
	lines = append(lines, head, tail)
	lines = append(lines, b.lines[b.selected+1:]...)
	b.lines = lines
	b.selected++
	b.column = 0
	b.normalize("Newline")
}

// Backspace removes the grapheme cluster before the cursor. At column 0 the
// selected line is joined onto the previous one; at the very start of the
// buffer it does nothing.
func (b *Buffer) Backspace() {
	if b.column > 0 {
		line := b.lines[b.selected]
		start := previousBoundary(line, b.column)
		b.lines[b.selected] = append(line[:start:start], line[b.column:]...)
		b.column = start
		b.normalize("Backspace")
		return
	}
	if b.selected == 0 {
		return
	}

	prev := b.lines[b.selected-1]
	joinAt := len(prev)
	merged := make([]rune, 0, len(prev)+len(b.lines[b.selected]))
	merged = append(merged, prev...)
	merged = append(merged, b.lines[b.selected]...)

	b.lines[b.selected-1] = merged
	b.lines = append(b.lines[:b.selected], b.lines[b.selected+1:]...)
	b.selected--
	b.column = joinAt
	b.normalize("Backspace")
}

// MoveSelection moves the selected line by delta, clamped to the buffer.
// The cursor column is clamped to the new line's length.
func (b *Buffer) MoveSelection(delta int) {
	b.selected = clamp(b.selected+delta, 0, len(b.lines)-1)
	b.column = clamp(b.column, 0, len(b.lines[b.selected]))
	b.normalize("MoveSelection")
}

// MoveCursor moves the cursor by delta grapheme clusters within the selected line.
func (b *Buffer) MoveCursor(delta int) {
	line := b.lines[b.selected]
	for ; delta < 0 && b.column > 0; delta++ {
		b.column = previousBoundary(line, b.column)
	}
	for ; delta > 0 && b.column < len(line); delta-- {
		b.column = nextBoundary(line, b.column)
	}
	b.normalize("MoveCursor")
}

// Snapshot returns a copy of the lines in visual order.
func (b *Buffer) Snapshot() []string {
	out := make([]string, len(b.lines))
	for i, line := range b.lines {
		out[i] = string(line)
	}
	return out
}

// Line returns the text of line i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return string(b.lines[i])
}

func (b *Buffer) Text() string      { return strings.Join(b.Snapshot(), "\n") }
func (b *Buffer) Len() int          { return len(b.lines) }
func (b *Buffer) SelectedLine() int { return b.selected }
func (b *Buffer) CursorColumn() int { return b.column }

// Empty reports whether the buffer holds only a single empty line.
func (b *Buffer) Empty() bool {
	return len(b.lines) == 1 && len(b.lines[0]) == 0
}

// normalize restores the invariants should an operation ever break them.
// Reaching the repair branch is a bug; it is logged, not returned.
func (b *Buffer) normalize(op string) {
	repaired := false
	if len(b.lines) == 0 {
		b.lines = [][]rune{{}}
		repaired = true
	}
	if b.selected < 0 || b.selected >= len(b.lines) {
		b.selected = clamp(b.selected, 0, len(b.lines)-1)
		repaired = true
	}
	if b.column < 0 || b.column > len(b.lines[b.selected]) {
		b.column = clamp(b.column, 0, len(b.lines[b.selected]))
		repaired = true
	}
	if repaired {
		log.Printf("ANNOTATION: invalid buffer state after %s repaired (lines=%d selected=%d column=%d)", op, len(b.lines), b.selected, b.column)
	}
}

// previousBoundary returns the rune offset of the grapheme cluster that ends at col.
func previousBoundary(line []rune, col int) int {
	start := 0
	g := uniseg.NewGraphemes(string(line[:col]))
	for g.Next() {
		if next := start + len(g.Runes()); next < col {
			start = next
		}
	}
	return start
}

// nextBoundary returns the rune offset just after the grapheme cluster starting at col.
func nextBoundary(line []rune, col int) int {
	g := uniseg.NewGraphemes(string(line[col:]))
	if g.Next() {
		return col + len(g.Runes())
	}
	return len(line)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
