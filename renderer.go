package img2cell

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/img2cell/imageutil"
)

// Renderer holds the configuration for converting bitmaps into cell
// grids along with state that is worth reusing between conversions: the
// loaded palette and the glyph calibrations for each cell size. A
// Renderer may be shared between goroutines once configured.
type Renderer struct {
	// Configuration options
	Mode           Mode
	ContrastWeight float64
	Clamp          bool
	Kernel         Kernel
	MaxColumns     int
	MaxRows        int
	PaletteSize    int // colors to compute per image; 0 uses the loaded palette
	Interpolation  imageutil.Interpolation

	cs          *ColorSpace
	logger      *slog.Logger
	fontPath    string
	glyphs      []rune
	newTieBreak func() TieBreak

	mu          sync.Mutex
	palette     *Palette
	palettePath string

	cache *coverageCache

	// err records the first failing option; Convert reports it.
	err error
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer with the given options.
// Defaults: color mode, the ansi16 palette, Floyd-Steinberg diffusion
// with clamped reads, a contrast weight of 0.1, at most 100 columns,
// Go Mono glyphs and lowest-index tie-breaking.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		Mode:           ModeColor,
		ContrastWeight: DefaultContrastWeight,
		Clamp:          true,
		Kernel:         FloydSteinberg,
		MaxColumns:     DefaultMaxColumns,
		Interpolation:  imageutil.InterpolationArea,

		cs:          NewColorSpace(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		glyphs:      DefaultGlyphs(),
		newTieBreak: func() TieBreak { return LowestIndex{} },
	}
	r.cache = newCoverageCache(r.calibrate)

	// Apply options
	for _, opt := range opts {
		opt(r)
	}

	if r.palette == nil && r.err == nil {
		r.setErr(r.LoadPalette("ansi16"))
	}
	return r
}

func (r *Renderer) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// WithMode sets the render mode.
func WithMode(m Mode) RendererOption {
	return func(r *Renderer) {
		r.Mode = m
	}
}

// WithPalette loads an embedded palette by name, or a palette file.
func WithPalette(nameOrPath string) RendererOption {
	return func(r *Renderer) {
		r.setErr(r.LoadPalette(nameOrPath))
	}
}

// WithPaletteModel uses an already built palette.
func WithPaletteModel(p *Palette) RendererOption {
	return func(r *Renderer) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.palette, r.palettePath = p, ""
	}
}

// WithComputedPalette derives an n-color palette from every converted
// image by median cut instead of using a fixed palette.
func WithComputedPalette(n int) RendererOption {
	return func(r *Renderer) {
		r.PaletteSize = n
	}
}

// WithTieBreak shares tb between conversions. Use WithSeed for
// reproducible random tie-breaking.
func WithTieBreak(tb TieBreak) RendererOption {
	return func(r *Renderer) {
		r.newTieBreak = func() TieBreak { return tb }
	}
}

// WithSeed breaks ties randomly, restarting the sequence from seed on
// every conversion so identical inputs give identical grids.
func WithSeed(seed uint64) RendererOption {
	return func(r *Renderer) {
		r.newTieBreak = func() TieBreak { return NewSeededTieBreak(seed) }
	}
}

// WithKernel sets the error diffusion kernel.
func WithKernel(k Kernel) RendererOption {
	return func(r *Renderer) {
		r.Kernel = k
	}
}

// WithClamp sets whether the color handed to the matcher is limited to
// the displayable range. Accumulated residuals are stored unclamped
// either way.
func WithClamp(clamp bool) RendererOption {
	return func(r *Renderer) {
		r.Clamp = clamp
	}
}

// WithContrastWeight sets the weight of the term that compares the
// target with the foreground and background colors on their own.
func WithContrastWeight(w float64) RendererOption {
	return func(r *Renderer) {
		r.ContrastWeight = w
	}
}

// WithMaxColumns limits derived grid widths. 0 removes the limit.
func WithMaxColumns(n int) RendererOption {
	return func(r *Renderer) {
		r.MaxColumns = n
	}
}

// WithMaxRows limits derived grid heights. 0 removes the limit.
func WithMaxRows(n int) RendererOption {
	return func(r *Renderer) {
		r.MaxRows = n
	}
}

// WithInterpolation sets the filter used when an image is scaled down
// to fit the column and row limits.
func WithInterpolation(interp imageutil.Interpolation) RendererOption {
	return func(r *Renderer) {
		r.Interpolation = interp
	}
}

// WithFont sets the font glyphs are calibrated with: a TrueType file,
// "gomono" or "basic".
func WithFont(path string) RendererOption {
	return func(r *Renderer) {
		r.fontPath = path
	}
}

// WithGlyphs sets the candidate glyphs.
func WithGlyphs(runes []rune) RendererOption {
	return func(r *Renderer) {
		r.glyphs = runes
	}
}

// WithCalibrationSheet calibrates from a rendered sheet instead of the
// font. The result serves conversions at the sheet's cell size.
func WithCalibrationSheet(sheet *CalibrationSheet) RendererOption {
	return func(r *Renderer) {
		table, err := Calibrate(sheet)
		if err != nil {
			r.setErr(err)
			return
		}
		r.cache.put(calibration{sheet: sheet, table: table})
	}
}

// WithCoverageTable uses a precomputed table for conversions at its
// cell size.
func WithCoverageTable(t *CoverageTable) RendererOption {
	return func(r *Renderer) {
		if err := t.validate(); err != nil {
			r.setErr(err)
			return
		}
		r.cache.put(calibration{table: t})
	}
}

// WithLogger sets the logger used for debug timings.
func WithLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// ColorSpace returns the renderer's color space.
func (r *Renderer) ColorSpace() *ColorSpace {
	return r.cs
}

// LoadPalette loads a palette by name or path. Loading the palette that
// is already loaded is a no-op.
func (r *Renderer) LoadPalette(nameOrPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.palette != nil && r.palettePath == nameOrPath {
		return nil
	}
	p, err := LoadPalette(r.cs, nameOrPath)
	if err != nil {
		return err
	}
	r.palette, r.palettePath = p, nameOrPath
	return nil
}

// Palette returns the fixed palette, which conversions restrict to the
// render mode unless a palette is computed per image.
func (r *Renderer) Palette() *Palette {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.palette
}

// calibrate renders the glyph set at the given cell size and measures
// its coverage.
func (r *Renderer) calibrate(width, height int) (calibration, error) {
	face, err := LoadFace(r.fontPath, height)
	if err != nil {
		return calibration{}, err
	}
	sheet, err := RenderGlyphSheet(face, width, height, r.glyphs)
	if err != nil {
		return calibration{}, err
	}
	table, err := Calibrate(sheet)
	if err != nil {
		return calibration{}, err
	}
	r.logger.Debug("calibrated glyphs",
		"font", face.Name, "cell", fmt.Sprintf("%dx%d", width, height),
		"glyphs", len(sheet.Glyphs), "levels", table.Len())
	return calibration{sheet: sheet, table: table}, nil
}

// Coverage returns the coverage table for a cell size, calibrating on
// first use.
func (r *Renderer) Coverage(cellWidth, cellHeight int) (*CoverageTable, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell size %dx%d",
			ErrInvalidDimensions, cellWidth, cellHeight)
	}
	cal, hit, err := r.cache.get(cellWidth, cellHeight)
	if err != nil {
		return nil, err
	}
	if hit {
		r.logger.Debug("coverage cache hit", "cell", fmt.Sprintf("%dx%d", cellWidth, cellHeight))
	}
	return cal.table, nil
}

// Sheet returns the calibration sheet for a cell size, for previews.
// Cell sizes calibrated from a bare coverage table get a sheet rendered
// from the font.
func (r *Renderer) Sheet(cellWidth, cellHeight int) (*CalibrationSheet, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell size %dx%d",
			ErrInvalidDimensions, cellWidth, cellHeight)
	}
	cal, _, err := r.cache.get(cellWidth, cellHeight)
	if err != nil {
		return nil, err
	}
	if cal.sheet != nil {
		return cal.sheet, nil
	}
	cal, err = r.calibrate(cellWidth, cellHeight)
	if err != nil {
		return nil, err
	}
	return cal.sheet, nil
}

// fit derives the grid size and, when a derived size breaks the column
// or row limit, scales the bitmap down so that it fits. Explicit sizes
// are never changed.
func (r *Renderer) fit(bm *Bitmap, geom Geometry) (*Bitmap, Geometry) {
	derived := geom.Derive(bm.Width, bm.Height)
	maxW, maxH := 0, 0
	if geom.Columns == 0 && r.MaxColumns > 0 && derived.Columns > r.MaxColumns {
		maxW = r.MaxColumns * geom.CellWidth
	}
	if geom.Rows == 0 && r.MaxRows > 0 && derived.Rows > r.MaxRows {
		maxH = r.MaxRows * geom.CellHeight
	}
	if maxW == 0 && maxH == 0 {
		return bm, derived
	}
	scaled := imageutil.FitWithin(
		imageutil.FromImage(bm.Image()), maxW, maxH, r.Interpolation)
	r.logger.Debug("scaled source to fit",
		"from", fmt.Sprintf("%dx%d", bm.Width, bm.Height),
		"to", fmt.Sprintf("%dx%d", scaled.Width(), scaled.Height()))
	out := BitmapFromImage(scaled)
	return out, geom.Derive(out.Width, out.Height)
}

// buildPalette returns the palette for one conversion.
func (r *Renderer) buildPalette(img *Image) (*Palette, error) {
	if r.PaletteSize == 0 {
		p := r.Palette()
		if p == nil {
			return nil, fmt.Errorf("%w: no palette loaded", ErrConfiguration)
		}
		return p, nil
	}
	p, err := ComputePalette(r.cs, img, r.PaletteSize)
	if err != nil {
		return nil, err
	}
	if r.Mode != ModeColor {
		p = p.withEndpoints()
	}
	return p, nil
}

// Convert turns a bitmap into a grid. Zero Columns or Rows in geom are
// derived from the bitmap size, scaling it down first if the derived
// size exceeds MaxColumns or MaxRows.
func (r *Renderer) Convert(bm *Bitmap, geom Geometry) (*Grid, error) {
	if r.err != nil {
		return nil, r.err
	}
	if err := bm.validate(); err != nil {
		return nil, err
	}
	if err := geom.validate(); err != nil {
		return nil, err
	}
	begin := time.Now()
	bm, geom = r.fit(bm, geom)

	img, err := r.cs.Linearize(bm)
	if err != nil {
		return nil, err
	}
	if r.Mode != ModeColor {
		for i, p := range img.Pix {
			img.Pix[i] = r.Mode.prepare(p)
		}
	}

	// Palette and coverage do not depend on each other.
	var (
		palette *Palette
		table   *CoverageTable
		g       errgroup.Group
	)
	g.Go(func() error {
		start := time.Now()
		var err error
		palette, err = r.buildPalette(img)
		r.logger.Debug("palette ready", "elapsed", time.Since(start))
		return err
	})
	g.Go(func() error {
		var err error
		table, err = r.Coverage(geom.CellWidth, geom.CellHeight)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cells, err := Resample(img, geom)
	if err != nil {
		return nil, err
	}
	matcher, err := NewMatcher(r.cs, palette, table, MatcherOptions{
		Mode:           r.Mode,
		ContrastWeight: r.ContrastWeight,
		TieBreak:       r.newTieBreak(),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	grid, err := Diffuse(cells, matcher, r.Kernel, r.Clamp)
	if err != nil {
		return nil, err
	}
	grid.CellWidth, grid.CellHeight = geom.CellWidth, geom.CellHeight
	r.logger.Debug("converted",
		"grid", fmt.Sprintf("%dx%d", grid.Columns, grid.Rows),
		"mode", r.Mode, "palette", grid.Palette.Len(), "levels", table.Len(),
		"kernel", r.Kernel.Name, "diffusion", time.Since(start),
		"total", time.Since(begin))
	return grid, nil
}

// CacheStats returns coverage cache hit/miss statistics.
func (r *Renderer) CacheStats() (hits, misses int, hitRate float64) {
	hits, misses = r.cache.stats()
	total := hits + misses
	if total == 0 {
		return 0, 0, 0
	}
	return hits, misses, float64(hits) / float64(total)
}

// ResetCache drops every calibration, including ones supplied as
// options.
func (r *Renderer) ResetCache() {
	r.cache.reset()
}
