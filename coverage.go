package img2cell

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"
)

// Glyph is one way of drawing a coverage level: a rune, drawn normally
// or with foreground and background swapped.
type Glyph struct {
	Rune     rune
	Coverage float64
	Invert   bool
}

// CoverageEntry groups the glyphs that share an ink count. Its glyphs
// are interchangeable; the first one is preferred.
type CoverageEntry struct {
	Ink      int
	Area     int
	Coverage float64
	Glyphs   []Glyph
}

// CoverageTable lists the distinct coverage levels available in a cell,
// strictly ascending by ink count.
type CoverageTable struct {
	CellWidth, CellHeight int
	Entries               []CoverageEntry
}

// CalibrationSheet is a rendered grid of glyph cells. Glyph i sits at
// column i%Columns, row i/Columns.
type CalibrationSheet struct {
	Bitmap                *Bitmap
	Columns               int
	CellWidth, CellHeight int
	Glyphs                []rune
	Background            [3]uint8
	Tolerance             uint8
}

// Ink reports whether the sheet pixel at (x, y) differs from the
// background by more than the tolerance on any channel.
func (s *CalibrationSheet) Ink(x, y int) bool {
	i := (y*s.Bitmap.Width + x) * 4
	px := s.Bitmap.Pix[i : i+3 : i+3]
	for c, v := range px {
		d := int(v) - int(s.Background[c])
		if d > int(s.Tolerance) || -d > int(s.Tolerance) {
			return true
		}
	}
	return false
}

// cellOrigin returns the top-left pixel of glyph i's cell.
func (s *CalibrationSheet) cellOrigin(i int) (x, y int) {
	return (i % s.Columns) * s.CellWidth, (i / s.Columns) * s.CellHeight
}

func (s *CalibrationSheet) validate() error {
	if s.CellWidth <= 0 || s.CellHeight <= 0 {
		return fmt.Errorf("%w: cell size %dx%d",
			ErrInvalidDimensions, s.CellWidth, s.CellHeight)
	}
	if len(s.Glyphs) == 0 {
		return fmt.Errorf("%w: calibration sheet lists no glyphs", ErrConfiguration)
	}
	if s.Columns <= 0 || s.Bitmap == nil {
		return fmt.Errorf("%w: calibration sheet has no cells", ErrConfiguration)
	}
	if err := s.Bitmap.validate(); err != nil {
		return err
	}
	rows := ceilDiv(len(s.Glyphs), s.Columns)
	needW := min(s.Columns, len(s.Glyphs)) * s.CellWidth
	needH := rows * s.CellHeight
	if s.Bitmap.Width < needW || s.Bitmap.Height < needH {
		return fmt.Errorf("%w: sheet is %dx%d, %d glyphs need %dx%d",
			ErrConfiguration, s.Bitmap.Width, s.Bitmap.Height,
			len(s.Glyphs), needW, needH)
	}
	return nil
}

// Calibrate measures the ink coverage of every glyph on the sheet. Each
// glyph yields a normal level c and an inverted level 1-c. Levels with
// the same ink count are merged, with normal glyphs ahead of inverted
// ones and lower codepoints first.
func Calibrate(sheet *CalibrationSheet) (*CoverageTable, error) {
	if err := sheet.validate(); err != nil {
		return nil, err
	}
	area := sheet.CellWidth * sheet.CellHeight
	byInk := make(map[int][]Glyph)
	for i, r := range sheet.Glyphs {
		ox, oy := sheet.cellOrigin(i)
		ink := 0
		for y := oy; y < oy+sheet.CellHeight; y++ {
			for x := ox; x < ox+sheet.CellWidth; x++ {
				if sheet.Ink(x, y) {
					ink++
				}
			}
		}
		byInk[ink] = append(byInk[ink],
			Glyph{Rune: r, Coverage: float64(ink) / float64(area)})
		byInk[area-ink] = append(byInk[area-ink],
			Glyph{Rune: r, Coverage: float64(area-ink) / float64(area), Invert: true})
	}

	table := &CoverageTable{CellWidth: sheet.CellWidth, CellHeight: sheet.CellHeight}
	for ink, glyphs := range byInk {
		sort.Slice(glyphs, func(i, j int) bool {
			if glyphs[i].Invert != glyphs[j].Invert {
				return !glyphs[i].Invert
			}
			return glyphs[i].Rune < glyphs[j].Rune
		})
		table.Entries = append(table.Entries, CoverageEntry{
			Ink:      ink,
			Area:     area,
			Coverage: float64(ink) / float64(area),
			Glyphs:   dedupGlyphs(glyphs),
		})
	}
	sort.Slice(table.Entries, func(i, j int) bool {
		return table.Entries[i].Ink < table.Entries[j].Ink
	})
	return table, nil
}

// dedupGlyphs drops repeated (rune, invert) pairs from a sorted list,
// which happens when a rune is listed twice on the sheet.
func dedupGlyphs(glyphs []Glyph) []Glyph {
	out := glyphs[:0]
	for i, g := range glyphs {
		if i > 0 && g.Rune == glyphs[i-1].Rune && g.Invert == glyphs[i-1].Invert {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Len returns the number of coverage levels.
func (t *CoverageTable) Len() int {
	return len(t.Entries)
}

func (t *CoverageTable) validate() error {
	if t == nil || len(t.Entries) == 0 {
		return fmt.Errorf("%w: empty coverage table", ErrConfiguration)
	}
	for i, e := range t.Entries {
		if len(e.Glyphs) == 0 {
			return fmt.Errorf("%w: coverage level %d has no glyphs",
				ErrConfiguration, i)
		}
		if i > 0 && e.Ink <= t.Entries[i-1].Ink {
			return fmt.Errorf("%w: coverage table is not strictly ascending",
				ErrConfiguration)
		}
	}
	return nil
}

// WriteTo encodes the table as gzip-compressed gob.
func (t *CoverageTable) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	gw := gzip.NewWriter(cw)
	if err := gob.NewEncoder(gw).Encode(t); err != nil {
		return cw.n, fmt.Errorf("failed to encode coverage table: %w", err)
	}
	if err := gw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to compress coverage table: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ReadCoverageTable decodes a table written by WriteTo.
func ReadCoverageTable(r io.Reader) (*CoverageTable, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	var t CoverageTable
	if err := gob.NewDecoder(gr).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode coverage table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveCoverageTable writes the table to path.
func SaveCoverageTable(path string, t *CoverageTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadCoverageTable reads a table saved by SaveCoverageTable.
func LoadCoverageTable(path string) (*CoverageTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCoverageTable(f)
}
