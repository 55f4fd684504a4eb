package img2cell

import (
	"fmt"
	"image"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// SheetColumns is the number of glyph cells per row in rendered sheets.
const SheetColumns = 16

// inkThreshold is the alpha above which a rasterized pixel counts as ink.
// A low threshold keeps thin strokes and dots that anti-aliasing spreads
// over several partially covered pixels.
const inkThreshold = 64

// blockRunes are the block elements added to the default glyph set.
var blockRunes = []rune{
	'▀', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█',
	'▌', '▍', '▎', '▏', '▐', '░', '▒', '▓',
	'▔', '▕', '▖', '▗', '▘', '▙', '▚', '▛', '▜', '▝', '▞', '▟',
}

// DefaultGlyphs returns printable ASCII followed by the block elements.
func DefaultGlyphs() []rune {
	runes := make([]rune, 0, 95+len(blockRunes))
	for r := rune(32); r <= 126; r++ {
		runes = append(runes, r)
	}
	return append(runes, blockRunes...)
}

// Face is a font face used to draw calibration sheets.
type Face struct {
	Name   string
	face   font.Face
	ttf    *truetype.Font
	ranges []basicfont.Range
}

// Has reports whether the face can draw r.
func (f *Face) Has(r rune) bool {
	if r == ' ' {
		return true
	}
	if f.ttf != nil {
		return f.ttf.Index(r) != 0
	}
	for _, rng := range f.ranges {
		if rng.Low <= r && r < rng.High && r != '\ufffd' {
			return true
		}
	}
	return false
}

// BasicFace returns the fixed 7x13 bitmap face.
func BasicFace() *Face {
	return &Face{
		Name:   "basic",
		face:   basicfont.Face7x13,
		ranges: basicfont.Face7x13.Ranges,
	}
}

// LoadFace returns a face sized to fit cellHeight pixels. An empty path
// selects Go Mono, "basic" the 7x13 bitmap face, and anything else is
// read as a TrueType file.
func LoadFace(path string, cellHeight int) (*Face, error) {
	if cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell height %d", ErrInvalidDimensions, cellHeight)
	}
	var (
		data = gomono.TTF
		name = "gomono"
	)
	switch path {
	case "", "gomono":
	case "basic":
		return BasicFace(), nil
	default:
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("%w: font %q: %v", ErrConfiguration, path, err)
		}
		name = path
	}
	ttf, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("%w: font %q: %v", ErrConfiguration, name, err)
	}
	return &Face{Name: name, face: fitFace(ttf, cellHeight), ttf: ttf}, nil
}

// fitFace scales the font so its ascent plus descent fits the cell.
func fitFace(ttf *truetype.Font, cellHeight int) font.Face {
	size := float64(cellHeight)
	face := truetype.NewFace(ttf, &truetype.Options{
		Size: size, DPI: 72, Hinting: font.HintingFull,
	})
	m := face.Metrics()
	if h := (m.Ascent + m.Descent).Ceil(); h > cellHeight {
		face.Close()
		face = truetype.NewFace(ttf, &truetype.Options{
			Size:    size * float64(cellHeight) / float64(h),
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	return face
}

// RenderGlyphSheet draws each rune the face supports into its own
// cellWidth x cellHeight cell, white ink on black, thresholding the
// anti-aliased coverage. Runes the face lacks are left out of the sheet.
func RenderGlyphSheet(f *Face, cellWidth, cellHeight int, runes []rune) (*CalibrationSheet, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell size %dx%d",
			ErrInvalidDimensions, cellWidth, cellHeight)
	}
	var drawable []rune
	for _, r := range runes {
		if f.Has(r) {
			drawable = append(drawable, r)
		}
	}
	if len(drawable) == 0 {
		return nil, fmt.Errorf("%w: face %q draws none of the glyphs",
			ErrConfiguration, f.Name)
	}

	cols := min(SheetColumns, len(drawable))
	rows := ceilDiv(len(drawable), cols)
	sheet := &CalibrationSheet{
		Bitmap:     NewBitmap(cols*cellWidth, rows*cellHeight),
		Columns:    cols,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		Glyphs:     drawable,
	}
	for i := range sheet.Bitmap.Pix {
		if i%4 == 3 {
			sheet.Bitmap.Pix[i] = 0xff
		}
	}

	// Center the line box vertically; ascent and descent are both
	// positive distances from the baseline.
	m := f.face.Metrics()
	baseline := (cellHeight + m.Ascent.Ceil() - m.Descent.Ceil()) / 2
	cell := image.NewAlpha(image.Rect(0, 0, cellWidth, cellHeight))
	d := &font.Drawer{Dst: cell, Src: image.Opaque, Face: f.face}
	for i, r := range drawable {
		clear(cell.Pix)
		adv, _ := f.face.GlyphAdvance(r)
		d.Dot = fixed.Point26_6{
			X: (fixed.I(cellWidth) - adv) / 2,
			Y: fixed.I(baseline),
		}
		d.DrawString(string(r))
		ox, oy := sheet.cellOrigin(i)
		for y := 0; y < cellHeight; y++ {
			for x := 0; x < cellWidth; x++ {
				if cell.AlphaAt(x, y).A > inkThreshold {
					sheet.Bitmap.Set(ox+x, oy+y, 0xff, 0xff, 0xff, 0xff)
				}
			}
		}
	}
	return sheet, nil
}

// glyphMask extracts the ink mask of each glyph on the sheet, keyed by
// rune.
func (s *CalibrationSheet) glyphMask() map[rune][]bool {
	masks := make(map[rune][]bool, len(s.Glyphs))
	for i, r := range s.Glyphs {
		if _, ok := masks[r]; ok {
			continue
		}
		ox, oy := s.cellOrigin(i)
		mask := make([]bool, s.CellWidth*s.CellHeight)
		for y := 0; y < s.CellHeight; y++ {
			for x := 0; x < s.CellWidth; x++ {
				mask[y*s.CellWidth+x] = s.Ink(ox+x, oy+y)
			}
		}
		masks[r] = mask
	}
	return masks
}
