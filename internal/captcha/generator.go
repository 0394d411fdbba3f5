// Package captcha provides text CAPTCHA image generation.
package captcha

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/kyiku/textcaptcha/internal/fonts"
)

// fontDPI makes FontSize a pixel size.
const fontDPI = 72

// State is the lifecycle state of a Generator.
type State int

const (
	// StateConfigured means the generator is valid but has not produced an image yet.
	StateConfigured State = iota
	// StateRendering is held while Generate draws on its canvas.
	StateRendering
	// StateEncoded means the last Generate call produced an image.
	StateEncoded
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateRendering:
		return "rendering"
	case StateEncoded:
		return "encoded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Captcha is the result of one Generate call.
type Captcha struct {
	// Code is the lower-cased plaintext the image shows.
	Code string
	// Image is the PNG byte stream.
	Image  []byte
	Width  int
	Height int
}

// DataURI returns the image as a base64 data URI.
func (c *Captcha) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.Image)
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource sets the random source. The generator takes ownership of src.
func WithSource(src Source) Option {
	return func(g *Generator) {
		g.src = src
	}
}

// WithLogger sets the logger. Codes are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator renders captchas from a fixed Config.
// A Generator is not safe for concurrent use; give each goroutine its own.
type Generator struct {
	cfg     Config
	charset []rune
	src     Source
	logger  *zap.Logger

	font     *opentype.Font
	fontName string

	background *RGB
	fontColor  *RGB
	border     RGB

	state State
	last  *Captcha
}

// New validates cfg, resolves its colors and loads the font.
func New(cfg Config, opts ...Option) (*Generator, error) {
	g := &Generator{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.src == nil {
		g.src = NewRandomSource()
	}

	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	g.cfg = cfg
	g.charset = []rune(cfg.Charset)

	if err := g.resolveColors(); err != nil {
		return nil, err
	}
	if err := g.loadFont(); err != nil {
		return nil, err
	}

	g.logger.Debug("captcha generator configured",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("font_size", cfg.FontSize),
		zap.String("font", g.fontName),
	)

	return g, nil
}

func (g *Generator) resolveColors() error {
	if g.cfg.Background.IsSet() {
		bg, err := ParseColor(g.cfg.Background)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		if !g.cfg.RandomLightBackground {
			g.background = &bg
		}
	}

	if g.cfg.FontColor.IsSet() {
		fc, err := ParseColor(g.cfg.FontColor)
		if err != nil {
			return fmt.Errorf("font color: %w", err)
		}
		g.fontColor = &fc
	}

	if g.cfg.BorderColor.IsSet() {
		border, err := ParseColor(g.cfg.BorderColor)
		if err != nil {
			return fmt.Errorf("border color: %w", err)
		}
		g.border = border
	}

	return nil
}

func (g *Generator) loadFont() error {
	var err error

	switch {
	case g.cfg.RandomFont:
		paths := g.cfg.Fonts
		if len(paths) == 0 && g.cfg.FontDir != "" {
			paths, err = fonts.Discover(g.cfg.FontDir)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrFontResourceUnavailable, err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("%w: no .ttf fonts in %s", ErrFontResourceUnavailable, g.cfg.FontDir)
			}
		}

		if len(paths) > 0 {
			g.fontName = paths[g.src.Intn(len(paths))]
			g.font, err = fonts.Load(g.fontName)
		} else {
			bundled := fonts.Bundled()
			res := bundled[g.src.Intn(len(bundled))]
			g.fontName = res.Name
			g.font, err = fonts.Parse(res.Name, res.Data)
		}
	case g.cfg.FontPath != "":
		g.fontName = g.cfg.FontPath
		g.font, err = fonts.Load(g.cfg.FontPath)
	default:
		res := fonts.Default()
		g.fontName = res.Name
		g.font, err = fonts.Parse(res.Name, res.Data)
	}

	return err
}

// Config returns the normalized configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// FontName returns the path or bundled name of the selected font.
func (g *Generator) FontName() string {
	return g.fontName
}

// State returns the lifecycle state.
func (g *Generator) State() State {
	return g.state
}

// Generate samples a code of the configured length from the charset and renders it.
func (g *Generator) Generate() (*Captcha, error) {
	code := make([]rune, g.cfg.Length)
	for i := range code {
		code[i] = g.charset[g.src.Intn(len(g.charset))]
	}
	return g.render(string(code))
}

// GenerateCode renders code verbatim. Its length replaces the configured length.
func (g *Generator) GenerateCode(code string) (*Captcha, error) {
	if utf8.RuneCountInString(code) == 0 {
		return nil, fmt.Errorf("%w: code is empty", ErrInvalidConfiguration)
	}
	return g.render(code)
}

func (g *Generator) render(code string) (*Captcha, error) {
	prev := g.state
	g.state = StateRendering

	result, err := g.draw(code)
	if err != nil {
		g.state = prev
		return nil, err
	}

	g.last = result
	g.state = StateEncoded

	g.logger.Debug("captcha generated",
		zap.Int("length", utf8.RuneCountInString(result.Code)),
		zap.Int("bytes", len(result.Image)),
	)

	return result, nil
}

func (g *Generator) draw(code string) (*Captcha, error) {
	face, err := opentype.NewFace(g.font, &opentype.FaceOptions{
		Size:    float64(g.cfg.FontSize),
		DPI:     fontDPI,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create font face: %v", ErrFontResourceUnavailable, err)
	}
	defer face.Close()

	c := newCanvas(g.cfg.Width, g.cfg.Height)
	defer c.release()

	c.fill(g.backgroundColor())

	if g.cfg.DrawBorder {
		c.strokeRect(g.border)
	}
	if g.cfg.DrawNoise {
		drawNoise(c, g.src, g.cfg.NoiseLevel)
	}
	if g.cfg.DrawCurve {
		drawCurve(c, g.src, curveColor(g.src, g.fontColor), g.cfg.FontSize)
	}

	pen := newGlyphPen(face, g.cfg.FontSize, g.fontColor)
	cursor := 0
	for _, ch := range code {
		cursor = pen.drawGlyph(c, g.src, ch, cursor)
	}

	data, err := c.encode()
	if err != nil {
		return nil, err
	}

	return &Captcha{
		Code:   strings.ToLower(code),
		Image:  data,
		Width:  g.cfg.Width,
		Height: g.cfg.Height,
	}, nil
}

func (g *Generator) backgroundColor() RGB {
	if g.background != nil {
		return *g.background
	}
	return RandomLightColor(g.src)
}

// Code returns the plaintext of the last generated captcha.
func (g *Generator) Code() (string, error) {
	if g.last == nil {
		return "", ErrNotYetGenerated
	}
	return g.last.Code, nil
}

// ImageBytes returns the PNG bytes of the last generated captcha.
func (g *Generator) ImageBytes() ([]byte, error) {
	if g.last == nil {
		return nil, ErrNotYetGenerated
	}
	return g.last.Image, nil
}

// Base64 returns the last generated captcha as a data URI.
func (g *Generator) Base64() (string, error) {
	if g.last == nil {
		return "", ErrNotYetGenerated
	}
	return g.last.DataURI(), nil
}
