package captcha

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBA returns the color as a fully opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

type colorKind uint8

const (
	colorUnset colorKind = iota
	colorHex
	colorTriple
)

// ColorSpec is either a hex string or an explicit RGB triple.
// The zero value means "not configured".
type ColorSpec struct {
	kind    colorKind
	hex     string
	r, g, b int
}

// Hex returns a ColorSpec for "#RGB" or "#RRGGBB", the leading '#' being optional.
func Hex(s string) ColorSpec {
	return ColorSpec{kind: colorHex, hex: s}
}

// Triple returns a ColorSpec for explicit channel values in [0, 255].
func Triple(r, g, b int) ColorSpec {
	return ColorSpec{kind: colorTriple, r: r, g: g, b: b}
}

// IsSet reports whether the spec carries a color.
func (c ColorSpec) IsSet() bool {
	return c.kind != colorUnset
}

func (c ColorSpec) String() string {
	switch c.kind {
	case colorHex:
		return c.hex
	case colorTriple:
		return fmt.Sprintf("rgb(%d, %d, %d)", c.r, c.g, c.b)
	default:
		return "unset"
	}
}

// ParseColor resolves a ColorSpec into an RGB value.
func ParseColor(spec ColorSpec) (RGB, error) {
	switch spec.kind {
	case colorHex:
		return ParseHex(spec.hex)
	case colorTriple:
		for _, v := range []int{spec.r, spec.g, spec.b} {
			if v < 0 || v > 255 {
				return RGB{}, fmt.Errorf("%w: component %d out of range in %s", ErrInvalidColorFormat, v, spec)
			}
		}
		return RGB{R: uint8(spec.r), G: uint8(spec.g), B: uint8(spec.b)}, nil
	default:
		return RGB{}, fmt.Errorf("%w: color not set", ErrInvalidColorFormat)
	}
}

// ParseHex parses "#RGB" or "#RRGGBB". Three-digit values duplicate each nibble.
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return RGB{}, fmt.Errorf("%w: %q must have 3 or 6 hex digits", ErrInvalidColorFormat, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorFormat, s, err)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// RandomLightColor returns a pastel color with every channel in [151, 225].
func RandomLightColor(src Source) RGB {
	return RGB{
		R: uint8(150 + uniform(src, 1, 75)),
		G: uint8(150 + uniform(src, 1, 75)),
		B: uint8(150 + uniform(src, 1, 75)),
	}
}

// glyphColor returns the configured font color or a random grey.
func glyphColor(src Source, fontColor *RGB) RGB {
	if fontColor != nil {
		return *fontColor
	}
	v := uint8(uniform(src, 50, 200))
	return RGB{R: v, G: v, B: v}
}

// curveColor returns the configured font color or a random dark color.
func curveColor(src Source, fontColor *RGB) RGB {
	if fontColor != nil {
		return *fontColor
	}
	return RGB{
		R: uint8(uniform(src, 1, 150)),
		G: uint8(uniform(src, 1, 150)),
		B: uint8(uniform(src, 1, 150)),
	}
}
