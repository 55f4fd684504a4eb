package img2cell

import (
	"errors"
	"math"
	"testing"

	"github.com/makeworld-the-better-one/dither/v2"
)

func TestFloydSteinbergSpread(t *testing.T) {
	t.Parallel()
	type point struct{ x, y int }
	cases := []struct {
		name string
		at   point
		want map[point]float64 // in-image pixels; the rest must stay zero
	}{
		{"center", point{1, 1}, map[point]float64{{2, 1}: 7, {0, 2}: 3, {1, 2}: 5, {2, 2}: 1}},
		{"left edge", point{0, 0}, map[point]float64{{1, 0}: 7, {0, 1}: 5, {1, 1}: 1}},
		{"right edge", point{2, 0}, map[point]float64{{1, 1}: 3, {2, 1}: 5}},
		{"last row", point{1, 2}, map[point]float64{{2, 2}: 7}},
		{"last pixel", point{2, 2}, map[point]float64{}},
	}
	for _, tc := range cases {
		buf := newDiffusionBuffer(NewImage(3, 3), FloydSteinberg)
		if buf.stride != 4 || len(buf.pix) != 16 {
			t.Fatalf("stride %d, %d pixels; want 4, 16", buf.stride, len(buf.pix))
		}
		buf.spread(tc.at.y*buf.stride+tc.at.x, Pixel{R: 16})

		var total, inside float64
		for _, p := range buf.pix {
			total += p.R
		}
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				got := buf.pix[y*buf.stride+x].R
				inside += got
				if want := tc.want[point{x, y}]; got != want {
					t.Errorf("%s: (%d,%d) got %v, want %v", tc.name, x, y, got, want)
				}
			}
		}
		if total != 16 {
			t.Errorf("%s: buffer holds %v of the residual, want all 16", tc.name, total)
		}
		var wantInside float64
		for _, v := range tc.want {
			wantInside += v
		}
		if inside != wantInside {
			t.Errorf("%s: %v landed on pixels, want %v", tc.name, inside, wantInside)
		}
	}
}

func TestFloydSteinberg(t *testing.T) {
	t.Parallel()
	if sum := FloydSteinberg.Sum(); sum != 1 {
		t.Errorf("sum = %v, want 1", sum)
	}
	if l, r, d := FloydSteinberg.Reach(); l != 1 || r != 1 || d != 1 {
		t.Errorf("reach = %d, %d, %d; want 1, 1, 1", l, r, d)
	}
	if err := FloydSteinberg.validate(); err != nil {
		t.Error(err)
	}
}

func TestLookupKernel(t *testing.T) {
	t.Parallel()
	for _, name := range KernelNames() {
		k, err := LookupKernel(name, 1)
		if err != nil {
			t.Errorf("LookupKernel(%q): %v", name, err)
			continue
		}
		if err := k.validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if name != NoDiffusion.Name && (k.Sum() <= 0 || k.Sum() > 1+1e-6) {
			t.Errorf("%s sums to %v", name, k.Sum())
		}
	}

	if k, _ := LookupKernel("", 1); k.Name != FloydSteinberg.Name {
		t.Errorf("default kernel = %q", k.Name)
	}
	if k, _ := LookupKernel("None", 3); len(k.Taps) != 0 {
		t.Errorf("none has taps %+v", k.Taps)
	}
	if k, _ := LookupKernel("floyd-steinberg", 0.5); k.Sum() != 0.5 {
		t.Errorf("half strength sum = %v", k.Sum())
	}
	if _, err := LookupKernel("bayer", 1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown kernel err = %v", err)
	}
	if _, err := LookupKernel("atkinson", -1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative strength err = %v", err)
	}
}

func TestKernelFromMatrix(t *testing.T) {
	t.Parallel()
	k, err := LookupKernel("atkinson", 1)
	if err != nil {
		t.Fatal(err)
	}
	if l, r, d := k.Reach(); l != 1 || r != 2 || d != 2 {
		t.Errorf("atkinson reach = %d, %d, %d; want 1, 2, 2", l, r, d)
	}
	if sum := k.Sum(); sum != 0.75 {
		t.Errorf("atkinson sum = %v, want 0.75", sum)
	}
	want := []Tap{
		{1, 0, 0.125}, {2, 0, 0.125},
		{-1, 1, 0.125}, {0, 1, 0.125}, {1, 1, 0.125},
		{0, 2, 0.125},
	}
	if len(k.Taps) != len(want) {
		t.Fatalf("taps = %+v", k.Taps)
	}
	for i := range want {
		if k.Taps[i] != want[i] {
			t.Errorf("tap %d = %+v, want %+v", i, k.Taps[i], want[i])
		}
	}

	half, err := LookupKernel("atkinson", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if sum := half.Sum(); sum != 0.375 {
		t.Errorf("half strength atkinson sum = %v", sum)
	}

	fs, err := KernelFromMatrix("fs", dither.FloydSteinberg)
	if err != nil {
		t.Fatal(err)
	}
	for i, tap := range fs.Taps {
		ref := FloydSteinberg.Taps[i]
		if tap.DX != ref.DX || tap.DY != ref.DY || math.Abs(tap.Factor-ref.Factor) > 1e-7 {
			t.Errorf("tap %d = %+v, want %+v", i, tap, ref)
		}
	}

	if _, err := KernelFromMatrix("empty", nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("empty matrix err = %v", err)
	}
	if _, err := KernelFromMatrix("flat", dither.ErrorDiffusionMatrix{{0, 0}, {1, 0}}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("matrix without a current pixel err = %v", err)
	}
}

// bwMatcher renders with black and white solid cells only.
func bwMatcher(t *testing.T, cs *ColorSpace) *Matcher {
	t.Helper()
	table, err := Calibrate(testSheet(1, 1, []rune{' '}, nil))
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMatcher(cs, mustPalette(t, cs, "#000000", "#ffffff"), table,
		MatcherOptions{ContrastWeight: DefaultContrastWeight})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func uniform(w, h int, p Pixel) *Image {
	img := NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = p
	}
	return img
}

// brightness returns the mean linear value shown by a black and white grid.
func brightness(g *Grid) float64 {
	var lit int
	for _, c := range g.Cells {
		if ink, paper := c.Colors(); (c.Glyph == ' ' && paper == 1) || (c.Glyph != ' ' && ink == 1) {
			lit++
		}
	}
	return float64(lit) / float64(len(g.Cells))
}

func TestDiffuseSpreadsError(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	m := bwMatcher(t, cs)
	img := uniform(16, 16, Gray(0.5))

	flat, err := Diffuse(img, m, NoDiffusion, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := brightness(flat); got != 1 {
		t.Errorf("without diffusion mid gray should round to white, got %v", got)
	}

	dithered, err := Diffuse(img, m, FloydSteinberg, true)
	if err != nil {
		t.Fatal(err)
	}
	if dithered.Columns != 16 || dithered.Rows != 16 || len(dithered.Cells) != 256 {
		t.Fatalf("grid is %dx%d with %d cells", dithered.Columns, dithered.Rows, len(dithered.Cells))
	}
	if got := brightness(dithered); math.Abs(got-0.5) > 0.1 {
		t.Errorf("dithered brightness = %v, want about 0.5", got)
	}
	for _, p := range img.Pix {
		if p != Gray(0.5) {
			t.Fatal("Diffuse modified its input")
		}
	}
}

func TestDiffuseResidual(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	m := bwMatcher(t, cs)

	// The first pixel rounds up to white; 7/16 of its -0.7 residual
	// pushes the second below black.
	img := uniform(2, 1, Gray(0.3))
	g, err := Diffuse(img, m, FloydSteinberg, true)
	if err != nil {
		t.Fatal(err)
	}
	if a, b := g.Cells[0], g.Cells[1]; a.BG != 1 || b.BG != 0 {
		t.Errorf("cells = %+v, want white then black", g.Cells)
	}
}

func TestDiffuseClampedResidual(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	m := bwMatcher(t, cs)
	img := NewImage(2, 1)
	img.Pix[0], img.Pix[1] = Gray(4), Gray(0.1)

	// Clamped, the overbright pixel matches white exactly and passes
	// nothing on.
	g, err := Diffuse(img, m, FloydSteinberg, true)
	if err != nil {
		t.Fatal(err)
	}
	if a, b := g.Cells[0], g.Cells[1]; a.BG != 1 || b.BG != 0 {
		t.Errorf("clamped cells = %+v, want white then black", g.Cells)
	}

	// Unclamped, its excess light carries over to the dark pixel.
	g, err = Diffuse(img, m, FloydSteinberg, false)
	if err != nil {
		t.Fatal(err)
	}
	if a, b := g.Cells[0], g.Cells[1]; a.BG != 1 || b.BG != 1 {
		t.Errorf("unclamped cells = %+v, want white twice", g.Cells)
	}
}

func TestDiffuseEveryKernelStaysInBounds(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	m := bwMatcher(t, cs)
	sizes := [][2]int{{1, 1}, {2, 3}, {5, 1}, {1, 4}, {7, 7}}
	for _, name := range KernelNames() {
		k, err := LookupKernel(name, 1)
		if err != nil {
			t.Fatal(err)
		}
		for _, size := range sizes {
			img := uniform(size[0], size[1], Gray(0.7))
			for _, clamp := range []bool{true, false} {
				g, err := Diffuse(img, m, k, clamp)
				if err != nil {
					t.Fatalf("%s %v: %v", name, size, err)
				}
				if len(g.Cells) != size[0]*size[1] {
					t.Errorf("%s %v: %d cells", name, size, len(g.Cells))
				}
			}
		}
	}
}

func TestDiffuseErrors(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	m := bwMatcher(t, cs)
	if _, err := Diffuse(&Image{}, m, FloydSteinberg, true); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("empty image err = %v", err)
	}
	backwards := Kernel{Name: "back", Taps: []Tap{{DX: -1, DY: 0, Factor: 1}}}
	if _, err := Diffuse(uniform(2, 2, Gray(0)), m, backwards, true); !errors.Is(err, ErrConfiguration) {
		t.Errorf("backwards kernel err = %v", err)
	}
}
