package shape

import (
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Text rasterization parameters.
const (
	canvasSize    = 1024
	textFontSize  = 180
	textStride    = 4
	textThreshold = 128
	textWorldUnit = 0.05
)

// textPoints returns the silhouette of s in the z=0 plane. Results are cached
// per string. Callers must hold g.mu.
func (g *Generator) textPoints(s string) []mgl32.Vec3 {
	if !g.hasGlyphs(s) {
		g.logger.Warn("font lacks glyphs, using fallback text",
			slog.String("text", s), slog.String("fallback", g.fallback))
		s = g.fallback
	}

	if pts, ok := g.silhouettes[s]; ok {
		return pts
	}

	pts, err := g.rasterize(s)
	if err != nil {
		g.logger.Warn("text rasterization failed", slog.String("text", s), slog.Any("error", err))
		return nil
	}
	if len(pts) == 0 {
		g.logger.Warn("text rasterized to an empty silhouette", slog.String("text", s))
	}
	g.silhouettes[s] = pts
	return pts
}

// hasGlyphs reports whether the font maps every rune of s to a real glyph.
func (g *Generator) hasGlyphs(s string) bool {
	var buf sfnt.Buffer
	for _, r := range s {
		if r == ' ' {
			continue
		}
		idx, err := g.font.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}

// rasterize draws s centered on a square grayscale canvas and samples bright
// pixels on a coarse grid.
func (g *Generator) rasterize(s string) ([]mgl32.Vec3, error) {
	face, err := opentype.NewFace(g.font, &opentype.FaceOptions{
		Size:    textFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewGray(image.Rect(0, 0, canvasSize, canvasSize))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}

	// Center horizontally on the advance width and vertically on the
	// middle of the ascent/descent box.
	m := face.Metrics()
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.I(canvasSize/2) - width/2,
		Y: fixed.I(canvasSize/2) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(s)

	var pts []mgl32.Vec3
	for y := 0; y < canvasSize; y += textStride {
		for x := 0; x < canvasSize; x += textStride {
			if img.GrayAt(x, y).Y > textThreshold {
				pts = append(pts, mgl32.Vec3{
					float32(x-canvasSize/2) * textWorldUnit,
					-float32(y-canvasSize/2) * textWorldUnit,
					0,
				})
			}
		}
	}
	return pts, nil
}
