package img2cell

import (
	"fmt"
	"math"
)

// maxPrecomputed bounds the number of blended colors a Matcher converts
// to L*a*b* up front. Larger searches convert each candidate as they go.
const maxPrecomputed = 1 << 18

// Match is the best cell found for one target pixel.
type Match struct {
	FG, BG   uint8
	Level    int // index into the coverage table
	Glyph    Glyph
	Combined Pixel // linear color the cell shows
	Score    float64
}

// Cell returns the rendering decision for the match.
func (m Match) Cell() Cell {
	return Cell{FG: m.FG, BG: m.BG, Glyph: m.Glyph.Rune, Invert: m.Glyph.Invert}
}

// MatcherOptions configures a Matcher. The zero value is color mode,
// no contrast term and lowest-index tie-breaking.
type MatcherOptions struct {
	Mode           Mode
	ContrastWeight float64
	TieBreak       TieBreak
}

// Matcher finds, for a target color, the foreground, background and
// coverage level whose blend is perceptually closest.
type Matcher struct {
	cs       *ColorSpace
	palette  *Palette
	table    *CoverageTable
	mode     Mode
	weight   float64
	tie      TieBreak
	lab      []Lab
	combined []Lab // [fg][bg][level], nil when searched on the fly
}

// NewMatcher restricts palette to the mode and prepares the search. The
// returned matcher's Palette is the one its indices refer to.
func NewMatcher(cs *ColorSpace, palette *Palette, table *CoverageTable, opts MatcherOptions) (*Matcher, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	if palette == nil {
		return nil, fmt.Errorf("%w: no palette", ErrConfiguration)
	}
	restricted, err := opts.Mode.restrict(palette)
	if err != nil {
		return nil, err
	}
	if opts.ContrastWeight < 0 {
		return nil, fmt.Errorf("%w: negative contrast weight %g",
			ErrConfiguration, opts.ContrastWeight)
	}
	m := &Matcher{
		cs:      cs,
		palette: restricted,
		table:   table,
		mode:    opts.Mode,
		weight:  opts.ContrastWeight,
		tie:     opts.TieBreak,
		lab:     make([]Lab, restricted.Len()),
	}
	if m.tie == nil {
		m.tie = LowestIndex{}
	}
	for i, e := range restricted.entries {
		m.lab[i] = cs.Lab(e.Linear)
	}
	n, g := restricted.Len(), table.Len()
	if m.mode != ModeMonochrome && n*n*g <= maxPrecomputed {
		m.combined = make([]Lab, 0, n*n*g)
		for fg := 0; fg < n; fg++ {
			for bg := 0; bg < n; bg++ {
				for lv := 0; lv < g; lv++ {
					m.combined = append(m.combined, cs.Lab(m.blend(fg, bg, lv)))
				}
			}
		}
	}
	return m, nil
}

// Palette returns the mode-restricted palette the matcher indexes.
func (m *Matcher) Palette() *Palette {
	return m.palette
}

// blend is the color shown by a cell: the background plus the coverage
// fraction of the way to the foreground.
func (m *Matcher) blend(fg, bg, level int) Pixel {
	e := m.palette.entries
	return e[bg].Linear.Lerp(e[fg].Linear, m.table.Entries[level].Coverage)
}

func (m *Matcher) distance(a, b Lab) float64 {
	if m.mode == ModeGrayscale {
		return DeltaL(a, b)
	}
	return DeltaE(a, b)
}

// Match returns the lowest scoring cell for target. Candidates are
// visited foreground first, then background, then ascending coverage;
// exactly equal scores are settled by the tie-break.
func (m *Matcher) Match(target Pixel) Match {
	if m.mode == ModeMonochrome {
		return m.matchMonochrome(target)
	}
	t := m.cs.Lab(m.mode.prepare(target))
	n, g := len(m.lab), m.table.Len()

	best := Match{Score: math.Inf(1)}
	ties := 0
	for fg := 0; fg < n; fg++ {
		dfg := m.distance(t, m.lab[fg])
		for bg := 0; bg < n; bg++ {
			base := m.weight * (dfg + m.distance(t, m.lab[bg]))
			if base > best.Score {
				continue
			}
			for lv := 0; lv < g; lv++ {
				var c Lab
				if m.combined != nil {
					c = m.combined[(fg*n+bg)*g+lv]
				} else {
					c = m.cs.Lab(m.blend(fg, bg, lv))
				}
				s := m.distance(t, c) + base
				switch {
				case s < best.Score:
					ties = 1
				case s == best.Score:
					ties++
					if m.tie.Choose(ties) != ties-1 {
						continue
					}
				default:
					continue
				}
				best = Match{FG: uint8(fg), BG: uint8(bg), Level: lv, Score: s}
			}
		}
	}
	return m.finish(best)
}

// matchMonochrome keeps paper (entry 0) as background and ink (entry 1)
// as foreground, and picks the level whose luminance is nearest the
// target's. Inverted levels swap the two on screen.
func (m *Matcher) matchMonochrome(target Pixel) Match {
	y := target.Luminance()
	best := Match{FG: 1, BG: 0, Score: math.Inf(1)}
	ties := 0
	for lv := range m.table.Entries {
		s := math.Abs(m.blend(1, 0, lv).Luminance() - y)
		switch {
		case s < best.Score:
			ties = 1
		case s == best.Score:
			ties++
			if m.tie.Choose(ties) != ties-1 {
				continue
			}
		default:
			continue
		}
		best.Level, best.Score = lv, s
	}
	return m.finish(best)
}

func (m *Matcher) finish(best Match) Match {
	glyphs := m.table.Entries[best.Level].Glyphs
	best.Glyph = glyphs[m.tie.Choose(len(glyphs))]
	best.Combined = m.blend(int(best.FG), int(best.BG), best.Level)
	return best
}
