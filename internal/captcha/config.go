package captcha

import (
	"fmt"
	"unicode/utf8"
)

// DefaultCharset is the default pool of code characters.
const DefaultCharset = "123467890abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Config describes how captchas are rendered. It is read-only once passed to New.
type Config struct {
	// Charset is the pool of characters codes are sampled from, with replacement.
	Charset string
	// Length is the number of characters of a sampled code.
	Length int
	Width  int
	Height int
	// FontSize in pixels. Zero derives it as floor(Width / (Length * 1.5)).
	FontSize int

	// Background is used unless RandomLightBackground is set. Unset means a random light color.
	Background            ColorSpec
	RandomLightBackground bool
	// FontColor is used for code characters and the curve. Unset means random per glyph.
	FontColor ColorSpec

	BorderColor ColorSpec
	DrawBorder  bool

	DrawNoise bool
	// NoiseLevel is the number of noise glyph groups. Zero means the default of 10.
	NoiseLevel int

	DrawCurve bool
	// DrawLine is accepted for compatibility and has no effect.
	DrawLine bool

	// FontPath is the TrueType font used when RandomFont is off. Empty means the bundled default.
	FontPath string
	// RandomFont picks one font at random from Fonts, else from the .ttf files in
	// FontDir, else from the bundled set.
	RandomFont bool
	Fonts      []string
	FontDir    string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Charset:     DefaultCharset,
		Length:      4,
		Width:       150,
		Height:      40,
		Background:  Hex("#F3FBFE"),
		BorderColor: Hex("#000"),
		DrawNoise:   true,
		NoiseLevel:  defaultNoiseLevel,
		DrawCurve:   true,
		DrawLine:    true,
	}
}

// normalize validates c and fills in derived values.
func (c Config) normalize() (Config, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return c, fmt.Errorf("%w: width and height must be positive, got %dx%d", ErrInvalidConfiguration, c.Width, c.Height)
	}
	if c.Length <= 0 {
		return c, fmt.Errorf("%w: length must be positive, got %d", ErrInvalidConfiguration, c.Length)
	}
	if utf8.RuneCountInString(c.Charset) == 0 {
		return c, fmt.Errorf("%w: charset is empty", ErrInvalidConfiguration)
	}
	if c.NoiseLevel < 0 {
		return c, fmt.Errorf("%w: noise level must not be negative, got %d", ErrInvalidConfiguration, c.NoiseLevel)
	}
	if c.NoiseLevel == 0 {
		c.NoiseLevel = defaultNoiseLevel
	}

	if c.FontSize == 0 {
		c.FontSize = int(float64(c.Width) / (float64(c.Length) * 1.5))
	}
	if c.FontSize <= 0 {
		return c, fmt.Errorf("%w: font size must be positive, got %d", ErrInvalidConfiguration, c.FontSize)
	}

	return c, nil
}
