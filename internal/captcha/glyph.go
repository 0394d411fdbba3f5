package captcha

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

const maxGlyphRotation = 40

// glyphPen carries what every code character of one Generate call shares.
type glyphPen struct {
	face      font.Face
	fontSize  int
	baseline  int
	fontColor *RGB
}

func newGlyphPen(face font.Face, fontSize int, fontColor *RGB) glyphPen {
	return glyphPen{
		face:      face,
		fontSize:  fontSize,
		baseline:  int(float64(fontSize) * 1.2),
		fontColor: fontColor,
	}
}

// drawGlyph advances the cursor by a random step and draws ch there with a
// random rotation. It returns the new cursor position.
func (p glyphPen) drawGlyph(c *canvas, src Source, ch rune, cursorX int) int {
	x := cursorX + uniform(src, p.fontSize, int(float64(p.fontSize)*1.3))
	col := glyphColor(src, p.fontColor)
	angle := uniform(src, -maxGlyphRotation, maxGlyphRotation)

	drawRotatedString(c.img, p.face, string(ch), x, p.baseline, float64(angle), col)
	return x
}

// drawRotatedString renders s with its baseline origin at (x, y), rotated
// counter-clockwise by deg degrees around that origin.
func drawRotatedString(dst *image.RGBA, face font.Face, s string, x, y int, deg float64, col RGB) {
	bounds, _ := font.BoundString(face, s)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	if maxX <= minX || maxY <= minY {
		return
	}

	glyph := image.NewRGBA(image.Rect(0, 0, maxX-minX, maxY-minY))
	d := &font.Drawer{
		Dst:  glyph,
		Src:  image.NewUniform(col.RGBA()),
		Face: face,
		Dot:  fixed.P(-minX, -minY),
	}
	d.DrawString(s)

	sin, cos := math.Sincos(deg * math.Pi / 180)
	mx, my := float64(minX), float64(minY)
	m := f64.Aff3{
		cos, sin, cos*mx + sin*my + float64(x),
		-sin, cos, -sin*mx + cos*my + float64(y),
	}

	xdraw.BiLinear.Transform(dst, m, glyph, glyph.Bounds(), xdraw.Over, nil)
}
