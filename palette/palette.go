// Package palette holds the Coral Health Chart lookup tables that map a
// hue/brightness code such as "D3" to a display colour.
package palette

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

//go:embed palettes.toml
var defaultPalette []byte

// ErrUnknownCode is returned when a code has no palette entry.
var ErrUnknownCode = errors.New("palette: unknown colour code")

// Format selects how a code is rendered for display.
type Format string

const (
	FormatHex Format = "hex"
	FormatRGB Format = "rgb"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHex, FormatRGB:
		return f, nil
	default:
		return "", fmt.Errorf("palette: unknown colour format %q (want hex or rgb)", s)
	}
}

type file struct {
	Hex map[string]string `toml:"hex"`
	RGB map[string][]int  `toml:"rgb"`
}

// Palette is an immutable code → colour table.
type Palette struct {
	hex map[string]string
	rgb map[string][3]uint8
}

var builtin = mustParse(defaultPalette)

// Default returns the built-in palette.
func Default() *Palette {
	return builtin
}

// LoadFile reads a palette override from a TOML file.
func LoadFile(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("palette: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a TOML palette. Every [hex] value must be a valid
// "#rrggbb" colour; codes missing from [rgb] take the hex colour's channels.
func Parse(data []byte) (*Palette, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("palette: decode: %w", err)
	}
	if len(f.Hex) == 0 {
		return nil, errors.New("palette: no [hex] entries")
	}

	p := &Palette{
		hex: make(map[string]string, len(f.Hex)),
		rgb: make(map[string][3]uint8, len(f.Hex)),
	}
	for code, h := range f.Hex {
		code = strings.ToUpper(code)
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: code %s: %w", code, err)
		}
		p.hex[code] = strings.ToUpper(h)
		r, g, b := c.RGB255()
		p.rgb[code] = [3]uint8{r, g, b}
	}
	for code, triple := range f.RGB {
		code = strings.ToUpper(code)
		if _, ok := p.hex[code]; !ok {
			return nil, fmt.Errorf("palette: rgb code %s has no hex entry", code)
		}
		if len(triple) != 3 {
			return nil, fmt.Errorf("palette: rgb code %s: want 3 channels, got %d", code, len(triple))
		}
		var out [3]uint8
		for i, v := range triple {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("palette: rgb code %s: channel %d out of range", code, v)
			}
			out[i] = uint8(v)
		}
		p.rgb[code] = out
	}
	return p, nil
}

func mustParse(data []byte) *Palette {
	p, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return p
}

// Hex returns the "#RRGGBB" colour for code.
func (p *Palette) Hex(code string) (string, error) {
	h, ok := p.hex[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	return h, nil
}

// RGB returns the red, green and blue channels for code.
func (p *Palette) RGB(code string) ([3]uint8, error) {
	c, ok := p.rgb[code]
	if !ok {
		return [3]uint8{}, fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	return c, nil
}

// Render returns code's colour in the requested format.
func (p *Palette) Render(code string, f Format) (string, error) {
	if f == FormatRGB {
		c, err := p.RGB(code)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rgb(%d, %d, %d)", c[0], c[1], c[2]), nil
	}
	return p.Hex(code)
}

// Codes returns every code in the palette, sorted.
func (p *Palette) Codes() []string {
	codes := make([]string, 0, len(p.hex))
	for c := range p.hex {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
