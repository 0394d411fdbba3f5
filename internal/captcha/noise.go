package captcha

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	noiseAlphabet     = "1234567890abcdefghijklmnopqrstuvwxyz"
	noiseGlyphsPerSet = 5
	noiseMargin       = 10
	defaultNoiseLevel = 10
)

// drawNoise scatters small decorative characters over the canvas. Each of the
// level groups shares one light color. Positions are the top-left corner of the
// glyph cell and may lie partly outside the canvas.
func drawNoise(c *canvas, src Source, level int) {
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent

	d := &font.Drawer{
		Dst:  c.img,
		Face: face,
	}

	for i := 0; i < level; i++ {
		d.Src = image.NewUniform(RandomLightColor(src).RGBA())
		for j := 0; j < noiseGlyphsPerSet; j++ {
			x := uniform(src, -noiseMargin, c.width())
			y := uniform(src, -noiseMargin, c.height())
			ch := noiseAlphabet[src.Intn(len(noiseAlphabet))]

			d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + ascent}
			d.DrawString(string(ch))
		}
	}
}
