package surface

import (
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Command is one drawing primitive.
type Command interface {
	draw(r *renderer)
}

// Fill paints a solid rectangle. With Replace the pixels are overwritten
// instead of blended, which is how holes are punched into a dimmed layer.
type Fill struct {
	Rect    image.Rectangle
	Color   color.Color
	Replace bool
}

// Stroke outlines a rectangle with a border Width pixels wide, drawn inside Rect.
type Stroke struct {
	Rect  image.Rectangle
	Color color.Color
	Width int
}

// Line is an anti-aliased segment of the given Width.
type Line struct {
	From  image.Point
	To    image.Point
	Color color.Color
	Width float32
}

// Text draws a single line with its top-left corner at At.
type Text struct {
	At    image.Point
	Text  string
	Color color.Color
}

type renderer struct {
	dst  *image.RGBA
	face font.Face
}

func (c Fill) draw(r *renderer) {
	op := draw.Over
	if c.Replace {
		op = draw.Src
	}
	draw.Draw(r.dst, c.Rect.Intersect(r.dst.Bounds()), image.NewUniform(c.Color), image.Point{}, op)
}

func (c Stroke) draw(r *renderer) {
	w := c.Width
	if w <= 0 {
		w = 1
	}
	b := c.Rect.Canon()
	edges := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+w),
		image.Rect(b.Min.X, b.Max.Y-w, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y+w, b.Min.X+w, b.Max.Y-w),
		image.Rect(b.Max.X-w, b.Min.Y+w, b.Max.X, b.Max.Y-w),
	}
	for _, e := range edges {
		Fill{Rect: e, Color: c.Color}.draw(r)
	}
}

func (c Line) draw(r *renderer) {
	w := c.Width
	if w <= 0 {
		w = 1
	}
	x0, y0 := float32(c.From.X), float32(c.From.Y)
	x1, y1 := float32(c.To.X), float32(c.To.Y)
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	// half-width normal
	nx, ny := -dy/length*w/2, dx/length*w/2
	corners := [4][2]float32{
		{x0 + nx, y0 + ny},
		{x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny},
		{x0 - nx, y0 - ny},
	}

	// Rasterize only the segment's bounding box.
	box := quadBounds(corners).Intersect(r.dst.Bounds())
	if box.Empty() {
		return
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	z.MoveTo(corners[0][0]-ox, corners[0][1]-oy)
	for _, p := range corners[1:] {
		z.LineTo(p[0]-ox, p[1]-oy)
	}
	z.ClosePath()
	z.Draw(r.dst, box, image.NewUniform(c.Color), image.Point{})
}

func quadBounds(pts [4][2]float32) image.Rectangle {
	minX, minY := pts[0][0], pts[0][1]
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	return image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
}

func (c Text) draw(r *renderer) {
	ascent := r.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  r.dst,
		Src:  image.NewUniform(c.Color),
		Face: r.face,
		Dot:  fixed.P(c.At.X, c.At.Y+ascent),
	}
	d.DrawString(c.Text)
}

var (
	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func newFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return opentype.NewFace(fontData, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Rasterize draws cmds onto dst using the default font size. It is meant for
// small static images such as icons.
func Rasterize(dst *image.RGBA, cmds ...Command) error {
	face, err := newFace(DefaultFontSize)
	if err != nil {
		return err
	}
	r := &renderer{dst: dst, face: face}
	for _, c := range cmds {
		c.draw(r)
	}
	return nil
}
