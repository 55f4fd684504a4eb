// Package imageutil provides the image handling around a conversion:
// decoding and encoding files, scaling and pre-filtering. Images are kept
// as straight-alpha NRGBA, which is what the converter consumes.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to an opaque color.NRGBA.
func (rgb RGB) ToColor() color.NRGBA {
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// Image wraps image.NRGBA with convenience methods for pixel access.
// The wrapped image always starts at the origin.
type Image struct {
	*image.NRGBA
}

// NewImage creates a new transparent Image with the specified dimensions.
func NewImage(width, height int) *Image {
	return &Image{NRGBA: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage converts any image.Image to an Image at the origin. An
// *image.NRGBA already at the origin is wrapped without copying.
func FromImage(img image.Image) *Image {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return &Image{NRGBA: n}
	}
	bounds := img.Bounds()
	dst := NewImage(bounds.Dx(), bounds.Dy())
	draw.Draw(dst.NRGBA, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Width returns the image width.
func (img *Image) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *Image) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the color channels at (x, y), ignoring alpha.
func (img *Image) GetRGB(x, y int) RGB {
	c := img.NRGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets an opaque color at (x, y).
func (img *Image) SetRGB(x, y int, c RGB) {
	img.SetNRGBA(x, y, c.ToColor())
}
