package imageutil

import "github.com/disintegration/gift"

// Filters are optional adjustments applied before conversion. Zero
// values leave the image alone.
type Filters struct {
	// Brightness and Contrast are percentages in [-100, 100].
	Brightness float32
	Contrast   float32
	// Saturation is a percentage in [-100, 500].
	Saturation float32
	// Gamma brightens midtones above 1 and darkens them below. 0 and 1
	// are both no-ops.
	Gamma float32
	// Sharpen is the sigma of an unsharp mask.
	Sharpen float32
	// Blur is the sigma of a Gaussian blur.
	Blur float32
}

// filters builds the gift pipeline for f.
func (f Filters) filters() []gift.Filter {
	var fs []gift.Filter
	if f.Blur > 0 {
		fs = append(fs, gift.GaussianBlur(f.Blur))
	}
	if f.Brightness != 0 {
		fs = append(fs, gift.Brightness(f.Brightness))
	}
	if f.Contrast != 0 {
		fs = append(fs, gift.Contrast(f.Contrast))
	}
	if f.Saturation != 0 {
		fs = append(fs, gift.Saturation(f.Saturation))
	}
	if f.Gamma > 0 && f.Gamma != 1 {
		fs = append(fs, gift.Gamma(f.Gamma))
	}
	if f.Sharpen > 0 {
		fs = append(fs, gift.UnsharpMask(f.Sharpen, 1, 0))
	}
	return fs
}

// Empty reports whether f changes nothing.
func (f Filters) Empty() bool {
	return len(f.filters()) == 0
}

// Prepare applies the filters to img, returning img itself when there is
// nothing to do.
func Prepare(img *Image, f Filters) *Image {
	fs := f.filters()
	if len(fs) == 0 {
		return img
	}
	g := gift.New(fs...)
	b := g.Bounds(img.Bounds())
	dst := NewImage(b.Dx(), b.Dy())
	g.Draw(dst.NRGBA, img.NRGBA)
	return dst
}
