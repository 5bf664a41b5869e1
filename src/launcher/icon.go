package launcher

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"log"
	"runtime"

	"anemone/src/surface"
)

const iconSize = 32

// Icon returns the tray icon: ICO on Windows, PNG elsewhere.
func Icon() []byte {
	pngData, err := iconPNG()
	if err != nil {
		log.Printf("Tray: icon render failed: %v", err)
		return nil
	}
	if runtime.GOOS != "windows" {
		return pngData
	}
	return wrapICO(pngData, iconSize)
}

func iconPNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	accent := color.RGBA{R: 0, G: 120, B: 212, A: 255}
	err := surface.Rasterize(img,
		surface.Fill{Rect: image.Rect(2, 2, 30, 30), Color: color.RGBA{R: 20, G: 24, B: 32, A: 230}},
		surface.Stroke{Rect: image.Rect(2, 2, 30, 30), Color: accent, Width: 2},
		surface.Fill{Rect: image.Rect(6, 13, 26, 19), Color: color.RGBA{R: 96, G: 86, A: 128}},
		surface.Line{From: image.Pt(16, 6), To: image.Pt(16, 26), Color: color.White, Width: 2},
		surface.Line{From: image.Pt(6, 16), To: image.Pt(26, 16), Color: color.White, Width: 2},
	)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapICO embeds a PNG image in a single-entry ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, count
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, le, uint16(1))  // planes
	_ = binary.Write(&buf, le, uint16(32)) // bits per pixel
	_ = binary.Write(&buf, le, uint32(len(pngData)))
	_ = binary.Write(&buf, le, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}
