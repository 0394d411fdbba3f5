// Package fonts loads the TrueType fonts used to render CAPTCHA characters.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrUnavailable is returned when a font cannot be read or parsed.
var ErrUnavailable = errors.New("font resource unavailable")

// Resource is a named, in-memory font file.
type Resource struct {
	Name string
	Data []byte
}

// Bundled returns the fonts shipped with the binary.
func Bundled() []Resource {
	return []Resource{
		{Name: "goregular", Data: goregular.TTF},
		{Name: "gobold", Data: gobold.TTF},
		{Name: "goitalic", Data: goitalic.TTF},
		{Name: "gobolditalic", Data: gobolditalic.TTF},
		{Name: "gomedium", Data: gomedium.TTF},
		{Name: "gomono", Data: gomono.TTF},
	}
}

// Default returns the font used when none is configured.
func Default() Resource {
	return Resource{Name: "goregular", Data: goregular.TTF}
}

// Parse parses font data. name is only used in error messages.
func Parse(name string, data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse font %s: %v", ErrUnavailable, name, err)
	}
	return f, nil
}

// Load reads and parses the font file at path.
func Load(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read font %s: %v", ErrUnavailable, path, err)
	}
	return Parse(path, data)
}

// Discover returns the paths of the .ttf files (extension matched
// case-insensitively) directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read font directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".ttf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}
