package img2cell

import (
	"fmt"
	"strings"
)

// Mode selects the palette restriction, distance metric and search used
// by the matcher.
type Mode int

const (
	// ModeColor searches every foreground, background and glyph
	// combination using the full L*a*b* distance.
	ModeColor Mode = iota
	// ModeGrayscale reduces targets to luminance, keeps only neutral
	// palette entries and compares lightness alone.
	ModeGrayscale
	// ModeMonochrome uses two colors, ink and paper, and only chooses the
	// glyph whose coverage best reproduces the target luminance.
	ModeMonochrome
)

var modeNames = map[Mode]string{
	ModeColor:      "color",
	ModeGrayscale:  "grayscale",
	ModeMonochrome: "monochrome",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names returned by Mode.String, plus the short
// forms "gray" and "mono".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "color", "colour", "":
		return ModeColor, nil
	case "grayscale", "greyscale", "gray", "grey":
		return ModeGrayscale, nil
	case "monochrome", "mono":
		return ModeMonochrome, nil
	}
	return 0, fmt.Errorf("%w: unknown render mode %q", ErrConfiguration, s)
}

// restrict returns the palette the mode renders with.
func (m Mode) restrict(p *Palette) (*Palette, error) {
	switch m {
	case ModeGrayscale:
		return p.Grayscale()
	case ModeMonochrome:
		return p.Monochrome()
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrConfiguration)
	}
	return p, nil
}

// prepare maps a target pixel into the mode's color domain.
func (m Mode) prepare(p Pixel) Pixel {
	if m == ModeColor {
		return p
	}
	return Gray(p.Luminance())
}
