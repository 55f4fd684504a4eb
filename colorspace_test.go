package img2cell

import (
	"math"
	"testing"
)

func TestDecodeTable(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()

	if got := cs.Decode(0); got != 0 {
		t.Errorf("Decode(0) = %v, want 0", got)
	}
	if got := cs.Decode(255); math.Abs(got-1) > 1e-12 {
		t.Errorf("Decode(255) = %v, want 1", got)
	}
	// 10/255 is below the linear segment threshold.
	if got, want := cs.Decode(10), 10.0/255/12.92; math.Abs(got-want) > 1e-12 {
		t.Errorf("Decode(10) = %v, want %v", got, want)
	}
	// Middle gray is about 21.6% linear.
	if got := cs.Decode(128); math.Abs(got-0.2158605) > 1e-6 {
		t.Errorf("Decode(128) = %v, want 0.2158605", got)
	}
	for i := 1; i < 256; i++ {
		if cs.Decode(uint8(i)) <= cs.Decode(uint8(i-1)) {
			t.Fatalf("decode table not increasing at %d", i)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	for i := 0; i < 256; i++ {
		if got := cs.Encode(cs.Decode(uint8(i))); got != uint8(i) {
			t.Errorf("Encode(Decode(%d)) = %d", i, got)
		}
	}
	if got := cs.Encode(-0.5); got != 0 {
		t.Errorf("Encode(-0.5) = %d, want 0", got)
	}
	if got := cs.Encode(3); got != 255 {
		t.Errorf("Encode(3) = %d, want 255", got)
	}
}

func TestDecodeRGBAComposite(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()

	if got := cs.DecodeRGBA(255, 128, 0, 255); got != cs.DecodeRGB(255, 128, 0) {
		t.Errorf("opaque pixel = %+v, want %+v", got, cs.DecodeRGB(255, 128, 0))
	}
	if got := cs.DecodeRGBA(255, 255, 255, 0); got != (Pixel{}) {
		t.Errorf("transparent pixel = %+v, want black", got)
	}
	half := cs.DecodeRGBA(255, 255, 255, 128)
	if want := cs.Decode(128); math.Abs(half.R-want) > 1e-12 {
		t.Errorf("half transparent white R = %v, want %v", half.R, want)
	}
}

func TestLab(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()

	black := cs.Lab(Pixel{})
	if math.Abs(black.L) > 1e-9 {
		t.Errorf("black L* = %v, want 0", black.L)
	}
	white := cs.Lab(Gray(1))
	if math.Abs(white.L-100) > 0.01 || math.Abs(white.A) > 0.01 || math.Abs(white.B) > 0.01 {
		t.Errorf("white = %+v, want L*=100 a*=b*=0", white)
	}
	if mid := cs.Lab(Gray(0.18)); math.Abs(mid.L-49.5) > 0.1 {
		t.Errorf("18%% gray L* = %v, want about 49.5", mid.L)
	}
	red := cs.Lab(Pixel{R: 1})
	if red.A <= 0 {
		t.Errorf("red a* = %v, want positive", red.A)
	}
}

func TestDeltaE(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	p, err := LoadPalette(cs, "ansi16")
	if err != nil {
		t.Fatal(err)
	}
	entries := p.Entries()
	for i, a := range entries {
		la := cs.Lab(a.Linear)
		if d := DeltaE(la, la); d != 0 {
			t.Errorf("DeltaE(%s, %s) = %v, want 0", a.Name, a.Name, d)
		}
		for _, b := range entries[i+1:] {
			lb := cs.Lab(b.Linear)
			if DeltaE(la, lb) != DeltaE(lb, la) {
				t.Errorf("DeltaE(%s, %s) not symmetric", a.Name, b.Name)
			}
			if DeltaE(la, lb) <= 0 {
				t.Errorf("DeltaE(%s, %s) = %v, want positive", a.Name, b.Name, DeltaE(la, lb))
			}
			if DeltaL(la, lb) > DeltaE(la, lb)+1e-9 {
				t.Errorf("DeltaL(%s, %s) exceeds DeltaE", a.Name, b.Name)
			}
		}
	}
}

func TestPixelOps(t *testing.T) {
	t.Parallel()
	a := Pixel{0.2, 0.4, 0.6}
	b := Pixel{1, 0, -0.5}

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %+v, want %+v", got, a)
	}
	if got := a.Lerp(a, 0.37); got != a {
		t.Errorf("Lerp of equal pixels = %+v, want %+v", got, a)
	}
	if got := b.Clamp(); got != (Pixel{1, 0, 0}) {
		t.Errorf("Clamp = %+v", got)
	}
	if got := Gray(1).Luminance(); math.Abs(got-1) > 1e-12 {
		t.Errorf("white luminance = %v, want 1", got)
	}
	if got := a.Add(b).Sub(b); got.SqDiff(a) > 1e-24 {
		t.Errorf("Add then Sub = %+v, want %+v", got, a)
	}
}
