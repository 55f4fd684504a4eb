package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml"
	"github.com/soniakeys/quant"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/img2cell"
	"github.com/wbrown/img2cell/imageutil"
)

type Palette struct {
	Name   string `arg:"" optional:"" help:"Built-in palette name or palette file; omit to list the built-in palettes"`
	From   string `help:"Compute the palette from this image instead" type:"existingfile"`
	Colors int    `help:"Colors to compute with --from (power of two)" default:"16"`
	Format string `help:"Output format" enum:"list,json,yaml,toml" default:"list"`

	Image  string `help:"Map this image onto the palette (default: the --from image)" type:"existingfile"`
	Output string `short:"o" help:"Save the mapped image here" type:"path"`
	Dither bool   `help:"Dither the mapped image"`
}

// Run is called by Kong when the palette command is executed.
func (p *Palette) Run(logger *slog.Logger) error {
	cs := img2cell.NewColorSpace()
	var palette *img2cell.Palette
	switch {
	case p.From != "":
		src, err := imageutil.LoadImage(p.From)
		if err != nil {
			return err
		}
		img, err := cs.Linearize(img2cell.BitmapFromImage(src))
		if err != nil {
			return err
		}
		if palette, err = img2cell.ComputePalette(cs, img, p.Colors); err != nil {
			return err
		}
		logger.Debug("computed palette", "path", p.From,
			"requested", p.Colors, "colors", palette.Len())
	case p.Name != "":
		var err error
		if palette, err = img2cell.LoadPalette(cs, p.Name); err != nil {
			return err
		}
	default:
		for _, name := range img2cell.BuiltinPalettes() {
			fmt.Println(name)
		}
		return nil
	}
	if err := writePalette(os.Stdout, palette, p.Format); err != nil {
		return err
	}
	if p.Output == "" {
		return nil
	}
	path := p.Image
	if path == "" {
		path = p.From
	}
	if path == "" {
		return fmt.Errorf("%w: --output needs --image or --from", img2cell.ErrConfiguration)
	}
	src, err := imageutil.LoadImage(path)
	if err != nil {
		return err
	}
	if err := imageutil.SaveImage(remap(palette, src, p.Dither), p.Output); err != nil {
		return err
	}
	logger.Info("wrote mapped image", "path", p.Output, "palette", palette.Name, "dither", p.Dither)
	return nil
}

// remap maps src onto p, nearest color per pixel or with Sierra Lite
// dithering.
func remap(p quant.Palette, src image.Image, dither bool) *image.Paletted {
	if !dither {
		return quant.Paletted(p, src)
	}
	b := src.Bounds()
	dst := image.NewPaletted(b, p.ColorPalette())
	quant.Sierra24A{}.Draw(dst, b, src, b.Min)
	return dst
}

func writePalette(w io.Writer, p *img2cell.Palette, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "json":
		data, err = json.MarshalIndent(p.File(), "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(p.File())
	case "toml":
		data, err = toml.Marshal(p.File())
	case "list":
		return listPalette(w, p)
	default:
		return fmt.Errorf("%w: unknown palette format %q",
			img2cell.ErrConfiguration, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// listPalette prints one line per entry followed by a swatch row.
func listPalette(w io.Writer, p *img2cell.Palette) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d colors\n", p.Name, p.Len())
	swatch := &img2cell.Grid{Columns: p.Len(), Rows: 1, Palette: p}
	for i, e := range p.Entries() {
		code := "-"
		if e.Code != img2cell.NoCode {
			code = fmt.Sprint(e.Code)
		}
		fmt.Fprintf(tw, "%d\t%s\t#%06x\t%s\n", i, e.Name, e.RGB, code)
		swatch.Cells = append(swatch.Cells,
			img2cell.Cell{FG: uint8(i), BG: uint8(i), Glyph: '█'})
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return swatch.WriteANSI(w, false)
}
