package captcha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()

	f, err := opentype.Parse(goregular.TTF)
	require.NoError(t, err)

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = face.Close() })

	return face
}

func TestGlyphPen_CursorAdvance(t *testing.T) {
	tests := []struct {
		name     string
		fontSize int
	}{
		{name: "正常系: 25px", fontSize: 25},
		{name: "正常系: 10px", fontSize: 10},
		{name: "正常系: 1px", fontSize: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pen := newGlyphPen(testFace(t, float64(tt.fontSize)), tt.fontSize, nil)
			c := newCanvas(300, 60)
			src := NewSource(11)

			cursor := 0
			for i := 0; i < 20; i++ {
				next := pen.drawGlyph(c, src, 'a', cursor)
				step := next - cursor

				assert.GreaterOrEqual(t, step, tt.fontSize)
				assert.LessOrEqual(t, step, int(float64(tt.fontSize)*1.3))
				cursor = next
			}
		})
	}
}

func TestGlyphPen_Baseline(t *testing.T) {
	pen := newGlyphPen(testFace(t, 25), 25, nil)
	assert.Equal(t, 30, pen.baseline)
}

func TestDrawRotatedString(t *testing.T) {
	white := RGB{255, 255, 255}
	black := RGB{0, 0, 0}
	face := testFace(t, 40)

	for _, deg := range []float64{0, 40, -40} {
		c := newCanvas(120, 80)
		c.fill(white)

		drawRotatedString(c.img, face, "W", 40, 55, deg, black)

		assert.Greater(t, countNot(c, white), 0, "angle %v", deg)
	}
}

func TestDrawRotatedString_UprightUsesExactColor(t *testing.T) {
	white := RGB{255, 255, 255}
	ink := RGB{200, 10, 10}
	c := newCanvas(120, 80)
	c.fill(white)

	drawRotatedString(c.img, testFace(t, 60), "M", 10, 65, 0, ink)

	found := false
	for y := 0; y < 80 && !found; y++ {
		for x := 0; x < 120; x++ {
			if c.img.RGBAAt(x, y) == ink.RGBA() {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "glyph interior should be painted with the glyph color")
}

func TestDrawRotatedString_SpaceDrawsNothing(t *testing.T) {
	white := RGB{255, 255, 255}
	c := newCanvas(50, 50)
	c.fill(white)

	drawRotatedString(c.img, testFace(t, 20), " ", 10, 30, 15, RGB{})

	assert.Equal(t, 0, countNot(c, white))
}

func TestDrawRotatedString_ClipsAtEdges(t *testing.T) {
	c := newCanvas(20, 20)

	assert.NotPanics(t, func() {
		drawRotatedString(c.img, testFace(t, 30), "g", 15, 5, 30, RGB{})
		drawRotatedString(c.img, testFace(t, 30), "g", -25, -5, -30, RGB{})
	})
}
