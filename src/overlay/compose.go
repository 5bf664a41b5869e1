package overlay

import (
	"fmt"
	"image"
	"image/color"

	"anemone/src/mode"
	"anemone/src/surface"
)

const (
	captionPadding  = 16
	guideBandHeight = 28
	hintInset       = 16

	clipHint    = "Drag to select   ENTER confirm   ESC cancel"
	captionHint = "Ctrl+Enter commit   Esc cancel"
)

var (
	dimColor       = color.RGBA{A: 255}
	// Alpha 1 keeps the hole hit-testable on a layered window.
	holeColor      = color.RGBA{A: 1}
	selectionColor = color.RGBA{R: 230, G: 40, B: 40, A: 255}
	crosshairColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	hintColor      = color.RGBA{R: 255, G: 255, A: 255}

	panelColor     = color.RGBA{R: 24, G: 24, B: 28, A: 240}
	borderColor    = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	highlightColor = color.RGBA{R: 38, G: 62, B: 104, A: 255}
	textColor      = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	mutedColor     = color.RGBA{R: 140, G: 140, B: 150, A: 255}

	bandColor     = color.RGBA{R: 96, G: 86, A: 96}
	bandEdgeColor = color.RGBA{R: 255, G: 220, A: 255}
)

func (s *Session) compose(b image.Rectangle) []surface.Command {
	switch s.policy.Mode {
	case mode.Clip:
		return s.composeClip(b)
	case mode.Caption:
		return s.composeCaption(b)
	case mode.Transparent:
		return s.composeGuide(b)
	}
	return nil
}

func (s *Session) composeClip(b image.Rectangle) []surface.Command {
	cmds := []surface.Command{surface.Fill{Rect: b, Color: dimColor}}

	if sel := s.selection; !sel.Empty() {
		r := sel.Image()
		cmds = append(cmds,
			surface.Fill{Rect: r, Color: holeColor, Replace: true},
			surface.Stroke{Rect: r, Color: selectionColor, Width: 2},
			surface.Text{
				At:    image.Pt(r.Min.X, max(b.Min.Y, r.Min.Y-s.surf.LineHeight()-4)),
				Text:  fmt.Sprintf("%d x %d", sel.Width, sel.Height),
				Color: hintColor,
			},
		)
	}

	if s.cursorIn {
		c := s.cursor
		cmds = append(cmds,
			surface.Line{From: image.Pt(b.Min.X, c.Y), To: image.Pt(b.Max.X, c.Y), Color: crosshairColor, Width: 1},
			surface.Line{From: image.Pt(c.X, b.Min.Y), To: image.Pt(c.X, b.Max.Y), Color: crosshairColor, Width: 1},
		)
	}

	return append(cmds, surface.Text{
		At:    b.Min.Add(image.Pt(hintInset, hintInset)),
		Text:  clipHint,
		Color: hintColor,
	})
}

func (s *Session) composeCaption(b image.Rectangle) []surface.Command {
	cmds := []surface.Command{
		surface.Fill{Rect: b, Color: panelColor},
		surface.Stroke{Rect: b, Color: borderColor, Width: 1},
	}

	lh := s.surf.LineHeight()
	x := b.Min.X + captionPadding
	for i, line := range s.buf.Snapshot() {
		y := b.Min.Y + captionPadding + i*lh
		if i == s.buf.SelectedLine() {
			cmds = append(cmds, surface.Fill{
				Rect:  image.Rect(b.Min.X+4, y, b.Max.X-4, y+lh),
				Color: highlightColor,
			})
			prefix := string([]rune(line)[:s.buf.CursorColumn()])
			cw, _ := s.surf.MeasureText(prefix)
			cmds = append(cmds, surface.Fill{
				Rect:  image.Rect(x+cw, y+2, x+cw+2, y+lh-2),
				Color: textColor,
			})
		}
		cmds = append(cmds, surface.Text{At: image.Pt(x, y), Text: line, Color: textColor})
	}

	return append(cmds, surface.Text{
		At:    image.Pt(x, b.Max.Y-captionPadding-lh),
		Text:  captionHint,
		Color: mutedColor,
	})
}

func (s *Session) composeGuide(b image.Rectangle) []surface.Command {
	if !s.cursorIn {
		return nil
	}
	top := s.cursor.Y - guideBandHeight/2
	band := image.Rect(b.Min.X, top, b.Max.X, top+guideBandHeight)
	return []surface.Command{
		surface.Fill{Rect: band, Color: bandColor},
		surface.Line{From: band.Min, To: image.Pt(band.Max.X, band.Min.Y), Color: bandEdgeColor, Width: 1},
		surface.Line{From: image.Pt(band.Min.X, band.Max.Y), To: band.Max, Color: bandEdgeColor, Width: 1},
	}
}

// contentSize is the window size needed to show the whole caption buffer.
func (s *Session) contentSize() (int, int) {
	lh := s.surf.LineHeight()
	w, _ := s.surf.MeasureText(captionHint)
	for _, line := range s.buf.Snapshot() {
		lw, _ := s.surf.MeasureText(line)
		w = max(w, lw)
	}
	// One extra row for the hint line.
	h := (s.buf.Len()+1)*lh + 3*captionPadding
	return w + 2*captionPadding + 4, h
}
