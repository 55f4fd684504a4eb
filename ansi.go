package img2cell

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ESC starts an ANSI escape sequence.
const ESC = "\u001b"

// fgCode returns the SGR parameters that select entry e as foreground.
func fgCode(e PaletteEntry, trueColor bool) string {
	switch {
	case trueColor || e.Code == NoCode:
		return fmt.Sprintf("38;2;%d;%d;%d", e.RGB>>16&0xff, e.RGB>>8&0xff, e.RGB&0xff)
	case e.Code < 8:
		return fmt.Sprint(30 + e.Code)
	case e.Code < 16:
		return fmt.Sprint(90 + e.Code - 8)
	}
	return fmt.Sprintf("38;5;%d", e.Code)
}

// bgCode returns the SGR parameters that select entry e as background.
func bgCode(e PaletteEntry, trueColor bool) string {
	switch {
	case trueColor || e.Code == NoCode:
		return fmt.Sprintf("48;2;%d;%d;%d", e.RGB>>16&0xff, e.RGB>>8&0xff, e.RGB&0xff)
	case e.Code < 8:
		return fmt.Sprint(40 + e.Code)
	case e.Code < 16:
		return fmt.Sprint(100 + e.Code - 8)
	}
	return fmt.Sprintf("48;5;%d", e.Code)
}

// ANSI renders the grid as text with SGR color codes, one line per row.
func (g *Grid) ANSI() string {
	var sb strings.Builder
	_ = g.WriteANSI(&sb, false)
	return sb.String()
}

// WriteANSI writes the grid as SGR-colored text. Colors are only emitted
// when they change: a space does not care about its foreground and a
// full block does not care about its background, so runs of either keep
// whatever the previous cell set. Every line ends with a reset. With
// trueColor set, all colors are written as 24-bit values.
func (g *Grid) WriteANSI(w io.Writer, trueColor bool) error {
	bw := bufio.NewWriter(w)
	fg := make([]string, g.Palette.Len())
	bg := make([]string, g.Palette.Len())
	for i, e := range g.Palette.entries {
		fg[i], bg[i] = fgCode(e, trueColor), bgCode(e, trueColor)
	}

	for y := 0; y < g.Rows; y++ {
		var curFg, curBg string
		for _, c := range g.Row(y) {
			ink, paper := c.Colors()
			wantFg, wantBg := fg[ink], bg[paper]
			switch c.Glyph {
			case ' ':
				if curFg != "" {
					wantFg = curFg
				}
			case '█':
				if curBg != "" {
					wantBg = curBg
				}
			}
			if wantFg != curFg || wantBg != curBg {
				bw.WriteString(formatSGR(curFg, curBg, wantFg, wantBg))
				curFg, curBg = wantFg, wantBg
			}
			bw.WriteRune(c.Glyph)
		}
		bw.WriteString(ESC + "[0m\n")
	}
	return bw.Flush()
}

// formatSGR emits only the parameters that changed.
func formatSGR(curFg, curBg, fg, bg string) string {
	var code strings.Builder
	code.WriteString(ESC)
	code.WriteByte('[')
	if fg != curFg {
		code.WriteString(fg)
		if bg != curBg {
			code.WriteByte(';')
		}
	}
	if bg != curBg {
		code.WriteString(bg)
	}
	code.WriteByte('m')
	return code.String()
}
