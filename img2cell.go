// Package img2cell converts bitmaps into grids of terminal character
// cells. Every cell carries a foreground palette index, a background
// palette index and a glyph; the grid approximates the source image when
// each glyph's ink coverage blends the two colors.
//
// The pipeline works in linear light: the source is decoded through an
// sRGB table, averaged down to one pixel per cell, and then scanned in
// raster order. Each cell is matched against every (foreground,
// background, glyph) combination and the residual is diffused into the
// cells that have not been visited yet.
package img2cell

import "errors"

var (
	// ErrConfiguration reports an unusable calibration or palette setup,
	// such as an empty coverage table.
	ErrConfiguration = errors.New("img2cell: invalid configuration")

	// ErrInvalidDimensions reports a zero-sized image or a non-positive
	// cell size.
	ErrInvalidDimensions = errors.New("img2cell: invalid dimensions")

	// ErrUnsupportedPaletteSize reports a palette size that median cut
	// cannot produce.
	ErrUnsupportedPaletteSize = errors.New("img2cell: unsupported palette size")
)

const (
	// DefaultCellWidth and DefaultCellHeight are the cell size assumed
	// when the terminal does not report one.
	DefaultCellWidth  = 8
	DefaultCellHeight = 16

	// DefaultMaxColumns limits the width of derived grids.
	DefaultMaxColumns = 100

	// DefaultContrastWeight scales the secondary matching term that
	// compares the target with the foreground and background on their
	// own.
	DefaultContrastWeight = 0.1
)
