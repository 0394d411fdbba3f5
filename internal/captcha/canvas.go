package captcha

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// canvas is the pixel buffer of a single Generate call.
type canvas struct {
	img *image.RGBA
}

func newCanvas(width, height int) *canvas {
	return &canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (c *canvas) width() int  { return c.img.Bounds().Dx() }
func (c *canvas) height() int { return c.img.Bounds().Dy() }

// fill paints the whole canvas with col.
func (c *canvas) fill(col RGB) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col.RGBA()), image.Point{}, draw.Src)
}

// setPixel plots one pixel; coordinates outside the canvas are ignored.
func (c *canvas) setPixel(x, y int, col RGB) {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return
	}
	c.img.SetRGBA(x, y, col.RGBA())
}

// strokeRect draws a one pixel outline along the canvas edges.
func (c *canvas) strokeRect(col RGB) {
	w, h := c.width(), c.height()
	for x := 0; x < w; x++ {
		c.setPixel(x, 0, col)
		c.setPixel(x, h-1, col)
	}
	for y := 0; y < h; y++ {
		c.setPixel(0, y, col)
		c.setPixel(w-1, y, col)
	}
}

// encode writes the canvas as PNG.
func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("failed to encode captcha image: %w", err)
	}
	return buf.Bytes(), nil
}

// release drops the pixel buffer. The canvas must not be used afterwards.
func (c *canvas) release() {
	c.img = nil
}
