package img2cell

import "math"

// Rec. 709 luminance weights for linear-light RGB.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Pixel is a color in linear light. Channels are nominally in [0, 1] but
// are never clamped implicitly, so diffused residuals may push them
// outside that range.
type Pixel struct {
	R, G, B float64
}

// Gray returns a neutral pixel with all channels set to v.
func Gray(v float64) Pixel {
	return Pixel{v, v, v}
}

// Add returns the componentwise sum of p and o.
func (p Pixel) Add(o Pixel) Pixel {
	return Pixel{p.R + o.R, p.G + o.G, p.B + o.B}
}

// Sub returns the componentwise difference p - o.
func (p Pixel) Sub(o Pixel) Pixel {
	return Pixel{p.R - o.R, p.G - o.G, p.B - o.B}
}

// Scale multiplies every channel by f.
func (p Pixel) Scale(f float64) Pixel {
	return Pixel{p.R * f, p.G * f, p.B * f}
}

// Lerp blends from p (at t=0) towards o (at t=1). The result is exactly
// p when t is 0 or when p and o are equal.
func (p Pixel) Lerp(o Pixel, t float64) Pixel {
	return Pixel{
		p.R + (o.R-p.R)*t,
		p.G + (o.G-p.G)*t,
		p.B + (o.B-p.B)*t,
	}
}

// SqDiff returns the squared Euclidean distance between p and o.
func (p Pixel) SqDiff(o Pixel) float64 {
	dr := p.R - o.R
	dg := p.G - o.G
	db := p.B - o.B
	return dr*dr + dg*dg + db*db
}

// Luminance returns the relative luminance Y of p.
func (p Pixel) Luminance() float64 {
	return lumaR*p.R + lumaG*p.G + lumaB*p.B
}

// Clamp limits every channel to [0, 1].
func (p Pixel) Clamp() Pixel {
	return Pixel{clamp01(p.R), clamp01(p.G), clamp01(p.B)}
}

// channel returns channel i (0=R, 1=G, 2=B).
func (p Pixel) channel(i int) float64 {
	switch i {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
