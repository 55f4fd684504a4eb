package img2cell

import (
	"fmt"
	"sort"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
)

// Tap sends Factor of a pixel's residual to the pixel DX columns right
// and DY rows below it.
type Tap struct {
	DX, DY int
	Factor float64
}

// Kernel is an error diffusion kernel. Taps only point forward in raster
// order: DY > 0, or DY == 0 and DX > 0.
type Kernel struct {
	Name string
	Taps []Tap
}

// FloydSteinberg is the default kernel.
var FloydSteinberg = Kernel{
	Name: "floyd-steinberg",
	Taps: []Tap{
		{DX: 1, DY: 0, Factor: 7.0 / 16},
		{DX: -1, DY: 1, Factor: 3.0 / 16},
		{DX: 0, DY: 1, Factor: 5.0 / 16},
		{DX: 1, DY: 1, Factor: 1.0 / 16},
	},
}

// NoDiffusion drops every residual.
var NoDiffusion = Kernel{Name: "none"}

var ditherMatrices = map[string]dither.ErrorDiffusionMatrix{
	"simple2d":              dither.Simple2D,
	"false-floyd-steinberg": dither.FalseFloydSteinberg,
	"jarvis-judice-ninke":   dither.JarvisJudiceNinke,
	"atkinson":              dither.Atkinson,
	"stucki":                dither.Stucki,
	"burkes":                dither.Burkes,
	"sierra":                dither.Sierra,
	"two-row-sierra":        dither.TwoRowSierra,
	"sierra-lite":           dither.SierraLite,
	"steven-pigeon":         dither.StevenPigeon,
}

// KernelNames lists the names LookupKernel accepts.
func KernelNames() []string {
	names := []string{FloydSteinberg.Name, NoDiffusion.Name}
	for name := range ditherMatrices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupKernel returns a kernel by name with its factors scaled by
// strength. A strength of 1 keeps the kernel as published.
func LookupKernel(name string, strength float64) (Kernel, error) {
	if strength < 0 {
		return Kernel{}, fmt.Errorf("%w: negative diffusion strength %g",
			ErrConfiguration, strength)
	}
	name = strings.ToLower(name)
	switch name {
	case "", FloydSteinberg.Name:
		if strength == 1 {
			return FloydSteinberg, nil
		}
		return FloydSteinberg.Scale(strength), nil
	case NoDiffusion.Name:
		return NoDiffusion, nil
	}
	m, ok := ditherMatrices[name]
	if !ok {
		return Kernel{}, fmt.Errorf("%w: unknown diffusion kernel %q",
			ErrConfiguration, name)
	}
	if strength != 1 {
		m = dither.ErrorDiffusionStrength(m, float32(strength))
	}
	return KernelFromMatrix(name, m)
}

// KernelFromMatrix converts a dither matrix into taps. The current pixel
// is the one just before the first non-zero entry of the top row.
func KernelFromMatrix(name string, m dither.ErrorDiffusionMatrix) (Kernel, error) {
	if len(m) == 0 {
		return Kernel{}, fmt.Errorf("%w: empty diffusion matrix %q",
			ErrConfiguration, name)
	}
	cur := -1
	for i, v := range m[0] {
		if v != 0 {
			cur = i - 1
			break
		}
	}
	if cur < 0 {
		return Kernel{}, fmt.Errorf("%w: diffusion matrix %q has no current pixel",
			ErrConfiguration, name)
	}
	k := Kernel{Name: name}
	for dy, row := range m {
		for x, v := range row {
			if v == 0 {
				continue
			}
			k.Taps = append(k.Taps, Tap{DX: x - cur, DY: dy, Factor: float64(v)})
		}
	}
	return k, nil
}

// Scale returns a copy of k with every factor multiplied by s.
func (k Kernel) Scale(s float64) Kernel {
	out := Kernel{Name: k.Name, Taps: make([]Tap, len(k.Taps))}
	for i, t := range k.Taps {
		t.Factor *= s
		out.Taps[i] = t
	}
	return out
}

// Sum returns the total of the factors.
func (k Kernel) Sum() float64 {
	var sum float64
	for _, t := range k.Taps {
		sum += t.Factor
	}
	return sum
}

// Reach returns how far the kernel writes to the left, right and below
// the current pixel.
func (k Kernel) Reach() (left, right, down int) {
	for _, t := range k.Taps {
		left = max(left, -t.DX)
		right = max(right, t.DX)
		down = max(down, t.DY)
	}
	return left, right, down
}

func (k Kernel) validate() error {
	for _, t := range k.Taps {
		if t.DY < 0 || (t.DY == 0 && t.DX <= 0) {
			return fmt.Errorf("%w: kernel %q writes behind the cursor at (%d, %d)",
				ErrConfiguration, k.Name, t.DX, t.DY)
		}
	}
	return nil
}

// diffusionBuffer holds the working pixels with sentinel padding: every
// row carries extra columns and extra rows follow the image, so kernel
// writes that fall off the right or bottom edge need no checks. Writes
// off the left edge land in the previous row's padding.
type diffusionBuffer struct {
	width, height int
	stride        int
	pix           []Pixel
	offsets       []int // per tap, relative to the current index
	factors       []float64
}

func newDiffusionBuffer(img *Image, k Kernel) *diffusionBuffer {
	left, right, down := k.Reach()
	b := &diffusionBuffer{
		width:  img.Width,
		height: img.Height,
		stride: img.Width + max(left, right),
	}
	b.pix = make([]Pixel, b.stride*(img.Height+down))
	for y := 0; y < img.Height; y++ {
		copy(b.pix[y*b.stride:], img.Pix[y*img.Width:(y+1)*img.Width])
	}
	for _, t := range k.Taps {
		b.offsets = append(b.offsets, t.DY*b.stride+t.DX)
		b.factors = append(b.factors, t.Factor)
	}
	return b
}

// spread adds residual to the kernel's neighbours of index i.
func (b *diffusionBuffer) spread(i int, residual Pixel) {
	for j, off := range b.offsets {
		p := &b.pix[i+off]
		f := b.factors[j]
		p.R += residual.R * f
		p.G += residual.G * f
		p.B += residual.B * f
	}
}

// Diffuse scans img in raster order, matching each pixel and pushing the
// residual onto the pixels not yet visited. When clamp is set the value
// handed to the matcher is limited to [0, 1]; stored values never are.
// The residual is the clamped value minus the matched color, not the
// stored value minus it, so error beyond the displayable range is
// dropped instead of accumulating. img is left untouched.
func Diffuse(img *Image, matcher *Matcher, k Kernel, clamp bool) (*Grid, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidDimensions)
	}
	if err := k.validate(); err != nil {
		return nil, err
	}
	buf := newDiffusionBuffer(img, k)
	grid := &Grid{
		Columns: img.Width,
		Rows:    img.Height,
		Cells:   make([]Cell, 0, img.Width*img.Height),
		Palette: matcher.Palette(),
	}
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			i := y*buf.stride + x
			read := buf.pix[i]
			if clamp {
				read = read.Clamp()
			}
			m := matcher.Match(read)
			grid.Cells = append(grid.Cells, m.Cell())
			if len(buf.offsets) > 0 {
				buf.spread(i, matcher.mode.prepare(read).Sub(m.Combined))
			}
		}
	}
	return grid, nil
}
