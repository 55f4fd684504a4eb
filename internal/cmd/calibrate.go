package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wbrown/img2cell"
	"github.com/wbrown/img2cell/imageutil"
	"github.com/wbrown/img2cell/internal/log"
)

type Calibrate struct {
	Font       string `help:"TrueType font file, gomono or basic" default:"gomono" env:"IMG2CELL_FONT"`
	CellWidth  int    `help:"Cell width in pixels" default:"8" env:"IMG2CELL_CELL_WIDTH"`
	CellHeight int    `help:"Cell height in pixels" default:"16" env:"IMG2CELL_CELL_HEIGHT"`
	Glyphs     string `help:"Candidate glyphs (default: space, block elements and printable ASCII)" env:"IMG2CELL_GLYPHS"`

	Output string `short:"o" help:"Write the coverage table here" type:"path" required:""`
	Sheet  string `help:"Also save the rendered calibration sheet as an image" type:"path"`
}

// Run is called by Kong when the calibrate command is executed.
func (c *Calibrate) Run(logger *slog.Logger) error {
	face, err := img2cell.LoadFace(c.Font, c.CellHeight)
	if err != nil {
		return err
	}
	runes := img2cell.DefaultGlyphs()
	if c.Glyphs != "" {
		runes = []rune(c.Glyphs)
	}
	sheet, err := img2cell.RenderGlyphSheet(face, c.CellWidth, c.CellHeight, runes)
	if err != nil {
		return err
	}
	if skipped := len(runes) - len(sheet.Glyphs); skipped > 0 {
		logger.Warn("font lacks some glyphs", "font", face.Name, "skipped", skipped)
	}

	table, err := img2cell.Calibrate(sheet)
	if err != nil {
		return err
	}
	for _, e := range table.Entries {
		logger.Log(context.Background(), log.LevelTrace, "coverage level",
			"ink", e.Ink, "coverage", e.Coverage, "glyphs", len(e.Glyphs),
			"glyph", string(e.Glyphs[0].Rune), "invert", e.Glyphs[0].Invert)
	}

	if err := img2cell.SaveCoverageTable(c.Output, table); err != nil {
		return err
	}
	logger.Info("calibrated", "font", face.Name,
		"cell", fmt.Sprintf("%dx%d", c.CellWidth, c.CellHeight),
		"glyphs", len(sheet.Glyphs), "levels", table.Len(), "path", c.Output)

	if c.Sheet != "" {
		if err := imageutil.SaveImage(sheet.Bitmap.Image(), c.Sheet); err != nil {
			return err
		}
		logger.Info("wrote calibration sheet", "path", c.Sheet)
	}
	return nil
}
