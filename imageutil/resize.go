package imageutil

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom, which holds up well when
	// shrinking photographs.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest, and keeps pixel art crisp.
	InterpolationNearest

	// InterpolationLanczos uses a Lanczos3 filter.
	InterpolationLanczos
)

var interpolationNames = []string{"area", "linear", "nearest", "lanczos"}

func (i Interpolation) String() string {
	if i >= 0 && int(i) < len(interpolationNames) {
		return interpolationNames[i]
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation accepts the names returned by Interpolation.String.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, name := range interpolationNames {
		if strings.EqualFold(s, name) {
			return Interpolation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

// Resize resizes an image to the specified dimensions using the given
// interpolation method.
func Resize(img *Image, width, height int, interp Interpolation) *Image {
	if interp == InterpolationLanczos {
		return FromImage(resize.Resize(uint(width), uint(height), img.NRGBA, resize.Lanczos3))
	}

	dst := NewImage(width, height)
	dstRect := image.Rect(0, 0, width, height)

	var scaler draw.Scaler
	switch interp {
	case InterpolationLinear:
		scaler = draw.BiLinear
	case InterpolationNearest:
		scaler = draw.NearestNeighbor
	default:
		scaler = draw.CatmullRom
	}

	scaler.Scale(dst.NRGBA, dstRect, img.NRGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// FitWithin scales img down, preserving its aspect ratio, until it is no
// larger than maxWidth x maxHeight. A zero bound is ignored. Images that
// already fit are returned unchanged.
func FitWithin(img *Image, maxWidth, maxHeight int, interp Interpolation) *Image {
	w, h := img.Width(), img.Height()
	scale := 1.0
	if maxWidth > 0 && w > maxWidth {
		scale = float64(maxWidth) / float64(w)
	}
	if maxHeight > 0 && h > maxHeight {
		scale = min(scale, float64(maxHeight)/float64(h))
	}
	if scale == 1 {
		return img
	}
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return Resize(img, nw, nh, interp)
}
