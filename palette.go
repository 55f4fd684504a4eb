package img2cell

import (
	"embed"
	"encoding/json"
	"fmt"
	"image/color"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml"
	"github.com/soniakeys/quant"
	"gopkg.in/yaml.v3"
)

//go:embed colordata/*.json
var colordata embed.FS

// NoCode marks a palette entry that has no indexed terminal color and is
// emitted as a 24-bit color instead.
const NoCode = -1

// PaletteEntry is one palette color.
type PaletteEntry struct {
	Name   string
	Code   int    // ANSI color number, or NoCode
	RGB    uint32 // 0xRRGGBB as the device shows it
	Linear Pixel
}

// Palette is an ordered, densely indexed list of colors. Cells refer to
// entries by their position.
type Palette struct {
	Name    string
	cs      *ColorSpace
	entries []PaletteEntry
}

var _ quant.Palette = (*Palette)(nil)

// PaletteColor is a palette color as written in a palette file.
type PaletteColor struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Code *int   `json:"code,omitempty" yaml:"code,omitempty" toml:"code,omitempty"`
	Hex  string `json:"hex" yaml:"hex" toml:"hex"`
}

// PaletteFile is the on-disk palette format shared by the JSON, YAML and
// TOML encodings.
type PaletteFile struct {
	Name   string         `json:"name" yaml:"name" toml:"name"`
	Colors []PaletteColor `json:"colors" yaml:"colors" toml:"colors"`
}

// NewPalette builds a palette from file colors. At most 256 colors are
// allowed since cells store indices as bytes.
func NewPalette(cs *ColorSpace, name string, colors []PaletteColor) (*Palette, error) {
	if len(colors) == 0 || len(colors) > 256 {
		return nil, fmt.Errorf("%w: palette %q has %d colors",
			ErrConfiguration, name, len(colors))
	}
	p := &Palette{Name: name, cs: cs, entries: make([]PaletteEntry, 0, len(colors))}
	for i, c := range colors {
		parsed, err := colorful.Hex(normalizeHex(c.Hex))
		if err != nil {
			return nil, fmt.Errorf("%w: palette %q color %d: %v",
				ErrConfiguration, name, i, err)
		}
		r, g, b := parsed.RGB255()
		code := NoCode
		if c.Code != nil {
			if *c.Code < 0 || *c.Code > 255 {
				return nil, fmt.Errorf("%w: palette %q color %d: code %d out of range",
					ErrConfiguration, name, i, *c.Code)
			}
			code = *c.Code
		}
		p.entries = append(p.entries, PaletteEntry{
			Name:   c.Name,
			Code:   code,
			RGB:    uint32(r)<<16 | uint32(g)<<8 | uint32(b),
			Linear: cs.DecodeRGB(r, g, b),
		})
	}
	return p, nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToLower(s)
}

// BuiltinPalettes lists the names of the embedded palettes.
func BuiltinPalettes() []string {
	files, _ := colordata.ReadDir("colordata")
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// LoadPalette loads an embedded palette by name, or failing that a
// palette file from disk. The file format follows the extension: .json,
// .yaml/.yml or .toml.
func LoadPalette(cs *ColorSpace, nameOrPath string) (*Palette, error) {
	// First, try the embedded palettes.
	data, vfsErr := colordata.ReadFile("colordata/" + nameOrPath + ".json")
	format := ".json"
	if vfsErr != nil {
		var fsErr error
		data, fsErr = os.ReadFile(nameOrPath)
		if fsErr != nil {
			return nil, fmt.Errorf("%w: palette %q: %v",
				ErrConfiguration, nameOrPath, fsErr)
		}
		format = strings.ToLower(filepath.Ext(nameOrPath))
	}
	return ParsePalette(cs, data, format)
}

// ParsePalette decodes a palette file. format is a file extension.
func ParsePalette(cs *ColorSpace, data []byte, format string) (*Palette, error) {
	var pf PaletteFile
	var err error
	switch format {
	case ".json", "json":
		err = json.Unmarshal(data, &pf)
	case ".yaml", ".yml", "yaml", "yml":
		err = yaml.Unmarshal(data, &pf)
	case ".toml", "toml":
		err = toml.Unmarshal(data, &pf)
	default:
		return nil, fmt.Errorf("%w: unknown palette format %q",
			ErrConfiguration, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding palette: %v", ErrConfiguration, err)
	}
	return NewPalette(cs, pf.Name, pf.Colors)
}

// File returns the palette in its file form.
func (p *Palette) File() PaletteFile {
	pf := PaletteFile{Name: p.Name, Colors: make([]PaletteColor, len(p.entries))}
	for i, e := range p.entries {
		pf.Colors[i] = PaletteColor{Name: e.Name, Hex: fmt.Sprintf("#%06x", e.RGB)}
		if e.Code != NoCode {
			code := e.Code
			pf.Colors[i].Code = &code
		}
	}
	return pf
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entry returns entry i. ok is false when i is out of range.
func (p *Palette) Entry(i int) (e PaletteEntry, ok bool) {
	if i < 0 || i >= len(p.entries) {
		return PaletteEntry{}, false
	}
	return p.entries[i], true
}

// Entries returns a copy of the entries.
func (p *Palette) Entries() []PaletteEntry {
	return append([]PaletteEntry(nil), p.entries...)
}

// ComputePalette derives an n-color palette from img by median cut in
// linear light. n must be a power of two between 2 and 256. Leaves that
// round to the same device color are merged, so a source with fewer than
// n distinct colors yields a smaller palette.
func ComputePalette(cs *ColorSpace, img *Image, n int) (*Palette, error) {
	if n < 2 || n > 256 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d colors", ErrUnsupportedPaletteSize, n)
	}
	if img == nil || len(img.Pix) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidDimensions)
	}
	work := append([]Pixel(nil), img.Pix...)
	var leaves []Pixel
	medianCut(work, bits.TrailingZeros(uint(n)), &leaves)

	p := &Palette{Name: fmt.Sprintf("median%d", n), cs: cs}
	seen := make(map[uint32]bool, len(leaves))
	for _, leaf := range leaves {
		rgb := cs.EncodeRGB(leaf)
		if seen[rgb] {
			continue
		}
		seen[rgb] = true
		p.entries = append(p.entries, PaletteEntry{
			Name:   fmt.Sprintf("#%06x", rgb),
			Code:   NoCode,
			RGB:    rgb,
			Linear: cs.DecodeRGB(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb)),
		})
	}
	return p, nil
}

// withEndpoints returns p with black and white appended when they are
// missing and there is room for them. Grayscale and monochrome rendering
// of a low-variety image then still has two levels to work with.
func (p *Palette) withEndpoints() *Palette {
	have := make(map[uint32]bool, len(p.entries))
	for _, e := range p.entries {
		have[e.RGB] = true
	}
	out := &Palette{Name: p.Name, cs: p.cs, entries: append([]PaletteEntry(nil), p.entries...)}
	for _, rgb := range []uint32{0x000000, 0xffffff} {
		if have[rgb] || len(out.entries) >= 256 {
			continue
		}
		out.entries = append(out.entries, PaletteEntry{
			Name:   fmt.Sprintf("#%06x", rgb),
			Code:   NoCode,
			RGB:    rgb,
			Linear: p.cs.DecodeRGB(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb)),
		})
	}
	return out
}

// medianCut splits px depth times, appending the mean of every final
// subset to leaves in low-to-high order. px is reordered in place.
func medianCut(px []Pixel, depth int, leaves *[]Pixel) {
	if len(px) == 0 {
		return
	}
	mean, dev := channelStats(px)
	if depth == 0 || (dev[0] == 0 && dev[1] == 0 && dev[2] == 0) {
		*leaves = append(*leaves, mean)
		return
	}
	// Strict comparison keeps R over G over B on ties.
	ch := 0
	for c := 1; c < 3; c++ {
		if dev[c] > dev[ch] {
			ch = c
		}
	}
	pivot := mean.channel(ch)
	lo := 0
	for i := range px {
		if px[i].channel(ch) < pivot {
			px[lo], px[i] = px[i], px[lo]
			lo++
		}
	}
	medianCut(px[:lo], depth-1, leaves)
	medianCut(px[lo:], depth-1, leaves)
}

// channelStats returns the mean of px and the per-channel sum of squared
// deviations from it.
func channelStats(px []Pixel) (mean Pixel, dev [3]float64) {
	for _, p := range px {
		mean = mean.Add(p)
	}
	mean = mean.Scale(1 / float64(len(px)))
	for _, p := range px {
		d := p.Sub(mean)
		dev[0] += d.R * d.R
		dev[1] += d.G * d.G
		dev[2] += d.B * d.B
	}
	return mean, dev
}

// Grayscale returns the neutral entries of p (equal red, green and blue).
func (p *Palette) Grayscale() (*Palette, error) {
	gray := &Palette{Name: p.Name + "/gray", cs: p.cs}
	for _, e := range p.entries {
		r, g, b := e.RGB>>16&0xff, e.RGB>>8&0xff, e.RGB&0xff
		if r == g && g == b {
			gray.entries = append(gray.entries, e)
		}
	}
	if len(gray.entries) < 2 {
		return nil, fmt.Errorf("%w: palette %q has %d neutral colors, need 2",
			ErrConfiguration, p.Name, len(gray.entries))
	}
	return gray, nil
}

// Monochrome returns the darkest and the brightest entry of p, in that
// order.
func (p *Palette) Monochrome() (*Palette, error) {
	if len(p.entries) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrConfiguration)
	}
	dark, light := p.entries[0], p.entries[0]
	for _, e := range p.entries[1:] {
		y := e.Linear.Luminance()
		if y < dark.Linear.Luminance() {
			dark = e
		}
		if y > light.Linear.Luminance() {
			light = e
		}
	}
	if dark.RGB == light.RGB {
		return nil, fmt.Errorf("%w: palette %q has no contrast for monochrome",
			ErrConfiguration, p.Name)
	}
	return &Palette{
		Name:    p.Name + "/mono",
		cs:      p.cs,
		entries: []PaletteEntry{dark, light},
	}, nil
}

// Len, IndexNear, ColorNear and ColorPalette make a Palette usable with
// the quant package's Paletted and dithering helpers.

// IndexNear returns the index of the entry closest to c in L*a*b*.
func (p *Palette) IndexNear(c color.Color) int {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	target := p.cs.Lab(p.cs.DecodeRGBA(n.R, n.G, n.B, n.A))
	best, bestDist := 0, DeltaE(target, p.cs.Lab(p.entries[0].Linear))
	for i, e := range p.entries[1:] {
		if d := DeltaE(target, p.cs.Lab(e.Linear)); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best
}

// ColorNear returns the palette color closest to c.
func (p *Palette) ColorNear(c color.Color) color.Color {
	return p.color(p.IndexNear(c))
}

// ColorPalette returns the palette as a color.Palette in entry order.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, len(p.entries))
	for i := range p.entries {
		pal[i] = p.color(i)
	}
	return pal
}

func (p *Palette) color(i int) color.RGBA {
	rgb := p.entries[i].RGB
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
}
