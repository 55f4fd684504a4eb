// Package cmd implements the img2cell subcommands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/wbrown/img2cell"
	"github.com/wbrown/img2cell/imageutil"
)

// Render holds the conversion flags shared by convert and show.
type Render struct {
	Palette        string  `help:"Built-in palette name or palette file" default:"ansi16" env:"IMG2CELL_PALETTE"`
	Colors         int     `help:"Compute a palette of this many colors from each image (power of two, 0 uses --palette)" default:"0" env:"IMG2CELL_COLORS"`
	Mode           string  `help:"Render mode" enum:"color,grayscale,monochrome" default:"color" env:"IMG2CELL_MODE"`
	Kernel         string  `help:"Error diffusion kernel (floyd-steinberg, atkinson, stucki, ..., none)" default:"floyd-steinberg" env:"IMG2CELL_KERNEL"`
	Strength       float64 `help:"Scale applied to the diffusion kernel" default:"1" env:"IMG2CELL_STRENGTH"`
	NoClamp        bool    `help:"Match against unclamped accumulated colors" env:"IMG2CELL_NO_CLAMP"`
	ContrastWeight float64 `help:"Weight of the foreground/background resemblance term" default:"0.1" env:"IMG2CELL_CONTRAST_WEIGHT"`
	Seed           uint64  `help:"Break ties randomly from this seed (0 keeps the first candidate)" env:"IMG2CELL_SEED"`

	Font       string `help:"TrueType font file, gomono or basic" default:"gomono" env:"IMG2CELL_FONT"`
	Coverage   string `help:"Precomputed coverage table from the calibrate command" type:"existingfile" env:"IMG2CELL_COVERAGE"`
	CellWidth  int    `help:"Cell width in pixels" default:"8" env:"IMG2CELL_CELL_WIDTH"`
	CellHeight int    `help:"Cell height in pixels" default:"16" env:"IMG2CELL_CELL_HEIGHT"`
	Glyphs     string `help:"Candidate glyphs (default: space, block elements and printable ASCII)" env:"IMG2CELL_GLYPHS"`

	Columns       int    `help:"Grid columns (0 derives from the image)" env:"IMG2CELL_COLUMNS"`
	Rows          int    `help:"Grid rows (0 derives from the image)" env:"IMG2CELL_ROWS"`
	MaxColumns    int    `help:"Limit on derived columns (0 uses the terminal width)" env:"IMG2CELL_MAX_COLUMNS"`
	MaxRows       int    `help:"Limit on derived rows (0 is unlimited)" env:"IMG2CELL_MAX_ROWS"`
	Interpolation string `help:"Filter used to shrink large images" enum:"area,linear,nearest,lanczos" default:"area" env:"IMG2CELL_INTERPOLATION"`

	Brightness float32 `help:"Brightness adjustment in percent" env:"IMG2CELL_BRIGHTNESS"`
	Contrast   float32 `help:"Contrast adjustment in percent" env:"IMG2CELL_CONTRAST"`
	Saturation float32 `help:"Saturation adjustment in percent" env:"IMG2CELL_SATURATION"`
	Gamma      float32 `help:"Gamma correction (1 is unchanged)" env:"IMG2CELL_GAMMA"`
	Sharpen    float32 `help:"Unsharp mask sigma" env:"IMG2CELL_SHARPEN"`
	Blur       float32 `help:"Gaussian blur sigma" env:"IMG2CELL_BLUR"`
}

// Filters returns the pre-filters selected by the flags.
func (r *Render) Filters() imageutil.Filters {
	return imageutil.Filters{
		Brightness: r.Brightness,
		Contrast:   r.Contrast,
		Saturation: r.Saturation,
		Gamma:      r.Gamma,
		Sharpen:    r.Sharpen,
		Blur:       r.Blur,
	}
}

// Geometry returns the requested grid geometry.
func (r *Render) Geometry() img2cell.Geometry {
	return img2cell.Geometry{
		Columns:    r.Columns,
		Rows:       r.Rows,
		CellWidth:  r.CellWidth,
		CellHeight: r.CellHeight,
	}
}

// maxColumns resolves the column limit, falling back to the width of the
// terminal on stdout and then to the library default.
func (r *Render) maxColumns() int {
	if r.MaxColumns > 0 {
		return r.MaxColumns
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return img2cell.DefaultMaxColumns
}

// Options translates the flags into renderer options.
func (r *Render) Options(logger *slog.Logger) ([]img2cell.RendererOption, error) {
	mode, err := img2cell.ParseMode(r.Mode)
	if err != nil {
		return nil, err
	}
	kernel, err := img2cell.LookupKernel(r.Kernel, r.Strength)
	if err != nil {
		return nil, err
	}
	interp, err := imageutil.ParseInterpolation(r.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", img2cell.ErrConfiguration, err)
	}
	opts := []img2cell.RendererOption{
		img2cell.WithLogger(logger),
		img2cell.WithMode(mode),
		img2cell.WithPalette(r.Palette),
		img2cell.WithComputedPalette(r.Colors),
		img2cell.WithKernel(kernel),
		img2cell.WithClamp(!r.NoClamp),
		img2cell.WithContrastWeight(r.ContrastWeight),
		img2cell.WithFont(r.Font),
		img2cell.WithMaxColumns(r.maxColumns()),
		img2cell.WithMaxRows(r.MaxRows),
		img2cell.WithInterpolation(interp),
	}
	if r.Glyphs != "" {
		opts = append(opts, img2cell.WithGlyphs([]rune(r.Glyphs)))
	}
	if r.Seed != 0 {
		opts = append(opts, img2cell.WithSeed(r.Seed))
	}
	if r.Coverage != "" {
		table, err := img2cell.LoadCoverageTable(r.Coverage)
		if err != nil {
			return nil, err
		}
		if table.CellWidth != r.CellWidth || table.CellHeight != r.CellHeight {
			logger.Warn("coverage table does not match the cell size and will not be used",
				"table", fmt.Sprintf("%dx%d", table.CellWidth, table.CellHeight),
				"cell", fmt.Sprintf("%dx%d", r.CellWidth, r.CellHeight))
		} else {
			opts = append(opts, img2cell.WithCoverageTable(table))
		}
	}
	return opts, nil
}

// convert loads path, applies the pre-filters and converts it.
func (r *Render) convert(path string, logger *slog.Logger) (*img2cell.Renderer, *img2cell.Grid, error) {
	opts, err := r.Options(logger)
	if err != nil {
		return nil, nil, err
	}
	renderer := img2cell.NewRenderer(opts...)

	src, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded image", "path", path,
		"size", fmt.Sprintf("%dx%d", src.Width(), src.Height()))
	if f := r.Filters(); !f.Empty() {
		src = imageutil.Prepare(src, f)
		logger.Debug("applied filters", "filters", fmt.Sprintf("%+v", f))
	}

	grid, err := renderer.Convert(img2cell.BitmapFromImage(src), r.Geometry())
	if err != nil {
		return nil, nil, err
	}
	return renderer, grid, nil
}
