package img2cell

import (
	"errors"
	"math"
	"testing"
)

func TestGeometryDerive(t *testing.T) {
	t.Parallel()
	tests := []struct {
		geom          Geometry
		width, height int
		want          Geometry
	}{
		{Geometry{CellWidth: 8, CellHeight: 16}, 80, 48, Geometry{10, 3, 8, 16}},
		{Geometry{CellWidth: 8, CellHeight: 16}, 81, 49, Geometry{11, 4, 8, 16}},
		{Geometry{Columns: 5, CellWidth: 8, CellHeight: 16}, 80, 48, Geometry{5, 3, 8, 16}},
		{Geometry{Columns: 2, Rows: 2, CellWidth: 1, CellHeight: 1}, 80, 48, Geometry{2, 2, 1, 1}},
	}
	for _, tc := range tests {
		if got := tc.geom.Derive(tc.width, tc.height); got != tc.want {
			t.Errorf("%+v.Derive(%d, %d) = %+v, want %+v",
				tc.geom, tc.width, tc.height, got, tc.want)
		}
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()
	img := NewImage(2, 2)
	for i := range img.Pix {
		img.Pix[i] = Gray(1)
	}

	out, err := Expand(img, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := Pixel{}
			if x < 2 && y < 2 {
				want = Gray(1)
			}
			if got := out.At(x, y); got != want {
				t.Errorf("(%d, %d) = %+v, want %+v", x, y, got, want)
			}
		}
	}

	same, err := Expand(img, 2, 2)
	if err != nil || same != img {
		t.Errorf("Expand to the same size should return the input")
	}

	cropped, err := Expand(img, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if cropped.At(0, 1) != Gray(1) || cropped.At(0, 2) != (Pixel{}) {
		t.Errorf("cropped column = %+v", cropped.Pix)
	}
}

func TestBlockAverage(t *testing.T) {
	t.Parallel()
	img := NewImage(4, 2)
	img.Set(0, 0, Pixel{R: 1})
	img.Set(1, 1, Pixel{R: 1})
	img.Set(2, 0, Pixel{B: 0.4})
	img.Set(3, 0, Pixel{B: 0.4})
	img.Set(2, 1, Pixel{B: 0.4})
	img.Set(3, 1, Pixel{B: 0.4})

	out, err := BlockAverage(img, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 2 || out.Height != 1 {
		t.Fatalf("output is %dx%d, want 2x1", out.Width, out.Height)
	}
	if got := out.At(0, 0); math.Abs(got.R-0.5) > 1e-12 || got.B != 0 {
		t.Errorf("left cell = %+v, want R=0.5", got)
	}
	if got := out.At(1, 0); math.Abs(got.B-0.4) > 1e-12 {
		t.Errorf("right cell = %+v, want B=0.4", got)
	}
}

func TestBlockAverageErrors(t *testing.T) {
	t.Parallel()
	img := NewImage(4, 4)
	for _, size := range [][2]int{{0, 2}, {2, 0}, {-1, 1}} {
		if _, err := BlockAverage(img, size[0], size[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("cell %v err = %v", size, err)
		}
	}
	if _, err := BlockAverage(img, 3, 2); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("non-multiple err = %v", err)
	}
	if _, err := BlockAverage(&Image{}, 1, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("empty image err = %v", err)
	}
	if _, err := Expand(img, 0, 4); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero canvas err = %v", err)
	}
	if _, err := Resample(img, Geometry{CellWidth: 0, CellHeight: 1}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero cell err = %v", err)
	}
	if _, err := Resample(img, Geometry{Columns: -1, CellWidth: 1, CellHeight: 1}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative columns err = %v", err)
	}
}

func TestResamplePadsWithBlack(t *testing.T) {
	t.Parallel()
	img := NewImage(3, 1)
	for i := range img.Pix {
		img.Pix[i] = Gray(1)
	}
	out, err := Resample(img, Geometry{CellWidth: 2, CellHeight: 2})
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 2 || out.Height != 1 {
		t.Fatalf("output is %dx%d, want 2x1", out.Width, out.Height)
	}
	if got := out.At(0, 0).R; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("left cell = %v, want 0.5", got)
	}
	if got := out.At(1, 0).R; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("right cell = %v, want 0.25", got)
	}
}

func TestLinearize(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	bm := NewBitmap(2, 1)
	bm.Set(0, 0, 255, 0, 0, 255)
	bm.Set(1, 0, 255, 255, 255, 0)
	img, err := cs.Linearize(bm)
	if err != nil {
		t.Fatal(err)
	}
	if img.At(0, 0).SqDiff(Pixel{R: 1}) > 1e-20 {
		t.Errorf("opaque red = %+v", img.At(0, 0))
	}
	if img.At(1, 0) != (Pixel{}) {
		t.Errorf("transparent white = %+v, want black", img.At(1, 0))
	}
	if _, err := cs.Linearize(&Bitmap{Width: 2, Height: 2, Pix: make([]byte, 4)}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("short buffer err = %v", err)
	}
}
