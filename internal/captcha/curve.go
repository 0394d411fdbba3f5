package captcha

import "math"

// curveStrokeDivisor sets the stroke length of the distortion curve relative to
// the font size. Both curve segments use it.
const curveStrokeDivisor = 20

// sineSegment is y = A*sin(w*x + f) + b + height/2.
type sineSegment struct {
	amplitude float64
	offset    float64
	phase     float64
	omega     float64
}

func (s sineSegment) at(x, height int) float64 {
	return s.amplitude*math.Sin(s.omega*float64(x)+s.phase) + s.offset + float64(height)/2
}

// curve describes the two segments drawn by drawCurve, joined at mid.
type curve struct {
	first  sineSegment
	second sineSegment
	mid    int
}

// randomSegment picks amplitude, phase and period; the vertical offset is left to the caller.
func randomSegment(src Source, width, height int) sineSegment {
	amplitude := uniform(src, 1, height/2)
	phase := uniform(src, -height/4, height/4)
	period := uniform(src, height, width*2)

	var omega float64
	if period != 0 {
		omega = 2 * math.Pi / float64(period)
	}

	return sineSegment{
		amplitude: float64(amplitude),
		phase:     float64(phase),
		omega:     omega,
	}
}

// drawCurve draws a sinusoidal band across the canvas from left to right. The
// second segment's offset is derived so that it continues where the first one ends.
func drawCurve(c *canvas, src Source, col RGB, fontSize int) curve {
	w, h := c.width(), c.height()

	first := randomSegment(src, w, h)
	first.offset = float64(uniform(src, -h/4, h/4))
	mid := uniform(src, w/2, int(float64(w)*0.8))

	second := randomSegment(src, w, h)
	second.offset = first.at(mid, h) - second.amplitude*math.Sin(second.omega*float64(mid)+second.phase) - float64(h)/2

	stroke := max(1, fontSize/curveStrokeDivisor)
	plotSegment(c, first, 0, mid, stroke, col)
	plotSegment(c, second, mid, w, stroke, col)

	return curve{first: first, second: second, mid: mid}
}

// plotSegment plots x in [from, to]. Each column gets a short diagonal stroke
// at (x+i, y+i) for i = stroke..1.
func plotSegment(c *canvas, s sineSegment, from, to, stroke int, col RGB) {
	h := c.height()
	for x := from; x <= to; x++ {
		if s.omega == 0 {
			continue
		}
		y := int(math.Floor(s.at(x, h)))
		for i := stroke; i > 0; i-- {
			c.setPixel(x+i, y+i, col)
		}
	}
}
