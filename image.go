package img2cell

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Preview draws the grid the way a terminal using the sheet's font
// would: every cell is filled with its paper color and the glyph's ink
// pixels are painted with the ink color. Runes missing from the sheet
// are drawn as blank cells.
func (g *Grid) Preview(sheet *CalibrationSheet) (*image.RGBA, error) {
	if sheet == nil || sheet.CellWidth <= 0 || sheet.CellHeight <= 0 {
		return nil, fmt.Errorf("%w: preview needs a calibration sheet",
			ErrInvalidDimensions)
	}
	cw, ch := sheet.CellWidth, sheet.CellHeight
	masks := sheet.glyphMask()
	colors := g.Palette.ColorPalette()
	img := image.NewRGBA(image.Rect(0, 0, g.Columns*cw, g.Rows*ch))

	for y := 0; y < g.Rows; y++ {
		for x, c := range g.Row(y) {
			ink, paper := c.Colors()
			ox, oy := x*cw, y*ch
			draw.Draw(img, image.Rect(ox, oy, ox+cw, oy+ch),
				image.NewUniform(colors[paper]), image.Point{}, draw.Src)
			mask, ok := masks[c.Glyph]
			if !ok {
				continue
			}
			inkColor := colors[ink].(color.RGBA)
			for i, set := range mask {
				if set {
					img.SetRGBA(ox+i%cw, oy+i/cw, inkColor)
				}
			}
		}
	}
	return img, nil
}
