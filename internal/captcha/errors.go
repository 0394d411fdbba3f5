// Package captcha provides text CAPTCHA image generation.
package captcha

import (
	"errors"
	"fmt"

	"github.com/kyiku/textcaptcha/internal/fonts"
)

var (
	// ErrInvalidConfiguration is returned for bad dimensions, an empty charset or code,
	// and malformed colors.
	ErrInvalidConfiguration = errors.New("invalid captcha configuration")

	// ErrInvalidColorFormat is returned when a color spec cannot be resolved.
	// It matches ErrInvalidConfiguration with errors.Is.
	ErrInvalidColorFormat = fmt.Errorf("%w: invalid color format", ErrInvalidConfiguration)

	// ErrFontResourceUnavailable is returned when the font file is missing or corrupt.
	ErrFontResourceUnavailable = fonts.ErrUnavailable

	// ErrNotYetGenerated is returned by output accessors called before Generate.
	ErrNotYetGenerated = errors.New("captcha not yet generated")
)
