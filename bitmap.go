package img2cell

import (
	"fmt"
	"image"
	"image/draw"
)

// Bitmap is a decoded image as produced by an image codec: sRGB-encoded
// RGBA bytes with straight (non-premultiplied) alpha, row-major with no
// padding between rows.
type Bitmap struct {
	Width, Height int
	Pix           []byte
}

// NewBitmap allocates a fully transparent bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// BitmapFromImage copies any image.Image into a Bitmap.
func BitmapFromImage(img image.Image) *Bitmap {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	pix := make([]byte, len(nrgba.Pix))
	copy(pix, nrgba.Pix)
	return &Bitmap{Width: b.Dx(), Height: b.Dy(), Pix: pix}
}

// Image returns the bitmap as an *image.NRGBA sharing its pixels.
func (bm *Bitmap) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    bm.Pix,
		Stride: bm.Width * 4,
		Rect:   image.Rect(0, 0, bm.Width, bm.Height),
	}
}

// validate checks that the bitmap is non-empty and its buffer matches
// its dimensions.
func (bm *Bitmap) validate() error {
	if bm == nil || bm.Width <= 0 || bm.Height <= 0 {
		return fmt.Errorf("%w: empty bitmap", ErrInvalidDimensions)
	}
	if len(bm.Pix) != bm.Width*bm.Height*4 {
		return fmt.Errorf("%w: bitmap buffer holds %d bytes, want %d",
			ErrInvalidDimensions, len(bm.Pix), bm.Width*bm.Height*4)
	}
	return nil
}

// Set writes an sRGB color at (x, y).
func (bm *Bitmap) Set(x, y int, r, g, b, a uint8) {
	i := (y*bm.Width + x) * 4
	bm.Pix[i], bm.Pix[i+1], bm.Pix[i+2], bm.Pix[i+3] = r, g, b, a
}

// Linearize decodes a bitmap into a linear-light Image, compositing
// transparent pixels over black.
func (cs *ColorSpace) Linearize(bm *Bitmap) (*Image, error) {
	if err := bm.validate(); err != nil {
		return nil, err
	}
	img := NewImage(bm.Width, bm.Height)
	for i := range img.Pix {
		p := bm.Pix[i*4 : i*4+4 : i*4+4]
		img.Pix[i] = cs.DecodeRGBA(p[0], p[1], p[2], p[3])
	}
	return img, nil
}
