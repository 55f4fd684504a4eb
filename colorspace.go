package img2cell

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a color in CIE L*a*b* (D65 white point).
type Lab struct {
	L, A, B float64
}

// ColorSpace holds the sRGB decoding table and the conversions from
// linear light to L*a*b*. A ColorSpace is immutable once built and is
// shared by reference between every component of a conversion.
type ColorSpace struct {
	decode [256]float64
}

// NewColorSpace builds the 256-entry sRGB to linear table.
func NewColorSpace() *ColorSpace {
	cs := &ColorSpace{}
	for i := range cs.decode {
		cs.decode[i] = srgbToLinear(float64(i) / 255)
	}
	return cs
}

func srgbToLinear(x float64) float64 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// Decode converts an sRGB-encoded byte to linear light.
func (cs *ColorSpace) Decode(b uint8) float64 {
	return cs.decode[b]
}

// Encode converts a linear value back to an sRGB byte, clamping values
// outside [0, 1].
func (cs *ColorSpace) Encode(v float64) uint8 {
	s := linearToSRGB(clamp01(v))
	return uint8(math.Round(s * 255))
}

// DecodeRGB converts an opaque sRGB triple to a linear pixel.
func (cs *ColorSpace) DecodeRGB(r, g, b uint8) Pixel {
	return Pixel{cs.decode[r], cs.decode[g], cs.decode[b]}
}

// DecodeRGBA converts a straight-alpha sRGB color to linear light,
// composited over black: each channel is multiplied by the decoded alpha.
func (cs *ColorSpace) DecodeRGBA(r, g, b, a uint8) Pixel {
	alpha := cs.decode[a]
	return Pixel{
		cs.decode[r] * alpha,
		cs.decode[g] * alpha,
		cs.decode[b] * alpha,
	}
}

// EncodeRGB converts a linear pixel to a packed 0xRRGGBB value.
func (cs *ColorSpace) EncodeRGB(p Pixel) uint32 {
	return uint32(cs.Encode(p.R))<<16 |
		uint32(cs.Encode(p.G))<<8 |
		uint32(cs.Encode(p.B))
}

// Lab converts a linear pixel to CIE L*a*b*, with L* in [0, 100].
func (cs *ColorSpace) Lab(p Pixel) Lab {
	x, y, z := colorful.LinearRgbToXyz(p.R, p.G, p.B)
	// colorful works on a 0..1 lightness scale.
	l, a, b := colorful.XyzToLab(x, y, z)
	return Lab{100 * l, 100 * a, 100 * b}
}

// DeltaE is the CIE76 color difference: the Euclidean distance in
// L*a*b*. It is the single distance used for matching.
func DeltaE(a, b Lab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// DeltaL is the lightness-only difference used in grayscale mode.
func DeltaL(a, b Lab) float64 {
	return math.Abs(a.L - b.L)
}
