// Package console displays cell grids on a full screen terminal.
package console

import (
	"github.com/gdamore/tcell/v2"

	"github.com/wbrown/img2cell"
)

// Color maps a palette entry to a terminal color. Indexed entries use the
// terminal's own palette unless trueColor is set.
func Color(e img2cell.PaletteEntry, trueColor bool) tcell.Color {
	if trueColor || e.Code == img2cell.NoCode {
		return tcell.NewHexColor(int32(e.RGB))
	}
	return tcell.PaletteColor(e.Code)
}

// Blit draws grid at the top left of s, clipped to the screen size.
func Blit(s tcell.Screen, grid *img2cell.Grid, trueColor bool) {
	entries := grid.Palette.Entries()
	colors := make([]tcell.Color, len(entries))
	for i, e := range entries {
		colors[i] = Color(e, trueColor)
	}

	w, h := s.Size()
	s.Clear()
	for y := 0; y < grid.Rows && y < h; y++ {
		for x, c := range grid.Row(y) {
			if x >= w {
				break
			}
			ink, paper := c.Colors()
			style := tcell.StyleDefault.
				Foreground(colors[ink]).
				Background(colors[paper])
			s.SetContent(x, y, c.Glyph, nil, style)
		}
	}
}

// Run draws grid on s and redraws it on resize until a key is pressed
// or the screen is finalized.
func Run(s tcell.Screen, grid *img2cell.Grid, trueColor bool) {
	Blit(s, grid, trueColor)
	s.Show()
	for {
		switch s.PollEvent().(type) {
		case nil, *tcell.EventKey:
			return
		case *tcell.EventResize:
			Blit(s, grid, trueColor)
			s.Sync()
		}
	}
}

// Show takes over the terminal to display grid until a key is pressed.
func Show(grid *img2cell.Grid, trueColor bool) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	Run(s, grid, trueColor)
	return nil
}
