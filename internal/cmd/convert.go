package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/img2cell"
	"github.com/wbrown/img2cell/imageutil"
)

type Convert struct {
	Render `embed:""`

	Input     string `arg:"" help:"Image to convert (PNG, JPEG, GIF, BMP, TIFF, WebP)" type:"existingfile"`
	Output    string `short:"o" help:"Write to this file instead of stdout; .png writes a rendered preview" type:"path" env:"IMG2CELL_OUTPUT"`
	TrueColor bool   `help:"Emit every color as 24-bit" env:"IMG2CELL_TRUECOLOR"`
}

// Run is called by Kong when the convert command is executed.
func (c *Convert) Run(logger *slog.Logger) error {
	renderer, grid, err := c.convert(c.Input, logger)
	if err != nil {
		return err
	}

	if c.Output == "" {
		return grid.WriteANSI(os.Stdout, c.TrueColor)
	}
	switch strings.ToLower(filepath.Ext(c.Output)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return writePreview(renderer, grid, c.Output, logger)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	if err := grid.WriteANSI(f, c.TrueColor); err != nil {
		f.Close()
		return err
	}
	logger.Info("wrote ANSI", "path", c.Output,
		"grid", fmt.Sprintf("%dx%d", grid.Columns, grid.Rows))
	return f.Close()
}

func writePreview(renderer *img2cell.Renderer, grid *img2cell.Grid, path string, logger *slog.Logger) error {
	sheet, err := renderer.Sheet(grid.CellWidth, grid.CellHeight)
	if err != nil {
		return err
	}
	img, err := grid.Preview(sheet)
	if err != nil {
		return err
	}
	if err := imageutil.SaveImage(img, path); err != nil {
		return err
	}
	logger.Info("wrote preview", "path", path,
		"size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()))
	return nil
}
