package img2cell

import "fmt"

// Image is a linear-light pixel buffer, row-major.
type Image struct {
	Width, Height int
	Pix           []Pixel
}

// NewImage allocates a black image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]Pixel, width*height)}
}

// At returns the pixel at (x, y).
func (img *Image) At(x, y int) Pixel {
	return img.Pix[y*img.Width+x]
}

// Set writes the pixel at (x, y).
func (img *Image) Set(x, y int, p Pixel) {
	img.Pix[y*img.Width+x] = p
}

// Geometry describes the target cell grid. Columns and Rows may be left
// at zero to derive them from the image size.
type Geometry struct {
	Columns, Rows         int
	CellWidth, CellHeight int
}

func (g Geometry) validate() error {
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return fmt.Errorf("%w: cell size %dx%d",
			ErrInvalidDimensions, g.CellWidth, g.CellHeight)
	}
	if g.Columns < 0 || g.Rows < 0 {
		return fmt.Errorf("%w: grid size %dx%d",
			ErrInvalidDimensions, g.Columns, g.Rows)
	}
	return nil
}

// PixelSize returns the size in pixels covered by the grid.
func (g Geometry) PixelSize() (width, height int) {
	return g.Columns * g.CellWidth, g.Rows * g.CellHeight
}

// Derive fills in zero Columns and Rows with the number of cells needed
// to cover a width x height image.
func (g Geometry) Derive(width, height int) Geometry {
	if g.Columns == 0 {
		g.Columns = ceilDiv(width, g.CellWidth)
	}
	if g.Rows == 0 {
		g.Rows = ceilDiv(height, g.CellHeight)
	}
	return g
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Expand copies img into the top-left corner of a black width x height
// canvas. Source pixels beyond the canvas are dropped.
func Expand(img *Image, width, height int) (*Image, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidDimensions)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrInvalidDimensions, width, height)
	}
	if img.Width == width && img.Height == height {
		return img, nil
	}
	out := NewImage(width, height)
	cols := min(img.Width, width)
	for y := 0; y < min(img.Height, height); y++ {
		copy(out.Pix[y*width:y*width+cols], img.Pix[y*img.Width:y*img.Width+cols])
	}
	return out, nil
}

// BlockAverage replaces every cellWidth x cellHeight block with the mean
// of its pixels. The image size must be a multiple of the block size.
func BlockAverage(img *Image, cellWidth, cellHeight int) (*Image, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell size %dx%d",
			ErrInvalidDimensions, cellWidth, cellHeight)
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidDimensions)
	}
	if img.Width%cellWidth != 0 || img.Height%cellHeight != 0 {
		return nil, fmt.Errorf("%w: %dx%d is not a multiple of %dx%d",
			ErrInvalidDimensions, img.Width, img.Height, cellWidth, cellHeight)
	}
	cols, rows := img.Width/cellWidth, img.Height/cellHeight
	out := NewImage(cols, rows)
	// Row sums are accumulated per output row so the source is read
	// sequentially.
	scale := 1 / float64(cellWidth*cellHeight)
	for cy := 0; cy < rows; cy++ {
		acc := out.Pix[cy*cols : (cy+1)*cols]
		for y := cy * cellHeight; y < (cy+1)*cellHeight; y++ {
			row := img.Pix[y*img.Width : (y+1)*img.Width]
			for x, p := range row {
				c := &acc[x/cellWidth]
				c.R += p.R
				c.G += p.G
				c.B += p.B
			}
		}
		for i := range acc {
			acc[i] = acc[i].Scale(scale)
		}
	}
	return out, nil
}

// Resample produces one linear pixel per cell of geom: the image is
// padded with black to a whole number of cells and then block averaged.
func Resample(img *Image, geom Geometry) (*Image, error) {
	if err := geom.validate(); err != nil {
		return nil, err
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidDimensions)
	}
	geom = geom.Derive(img.Width, img.Height)
	w, h := geom.PixelSize()
	expanded, err := Expand(img, w, h)
	if err != nil {
		return nil, err
	}
	return BlockAverage(expanded, geom.CellWidth, geom.CellHeight)
}
