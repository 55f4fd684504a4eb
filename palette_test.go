package img2cell

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/soniakeys/quant"
)

func TestBuiltinPalettes(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()

	want := map[string]int{"ansi16": 16, "ansi8": 8, "cga16": 16, "gray4": 4}
	names := BuiltinPalettes()
	if len(names) != len(want) {
		t.Fatalf("BuiltinPalettes() = %v", names)
	}
	for _, name := range names {
		p, err := LoadPalette(cs, name)
		if err != nil {
			t.Fatalf("LoadPalette(%q): %v", name, err)
		}
		if p.Len() != want[name] {
			t.Errorf("%s has %d colors, want %d", name, p.Len(), want[name])
		}
		if p.Name != name {
			t.Errorf("palette name = %q, want %q", p.Name, name)
		}
	}
}

func TestANSI16Entries(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	p, err := LoadPalette(cs, "ansi16")
	if err != nil {
		t.Fatal(err)
	}
	red, ok := p.Entry(9)
	if !ok {
		t.Fatal("no entry 9")
	}
	if red.RGB != 0xff0000 || red.Code != 9 {
		t.Errorf("entry 9 = %+v, want pure red with code 9", red)
	}
	if red.Linear.SqDiff(Pixel{R: 1}) > 1e-20 {
		t.Errorf("red linear = %+v", red.Linear)
	}
	if _, ok := p.Entry(16); ok {
		t.Error("Entry(16) reported ok")
	}
	if _, ok := p.Entry(-1); ok {
		t.Error("Entry(-1) reported ok")
	}
}

func TestParsePaletteFormats(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	tests := []struct {
		format string
		data   string
	}{
		{"json", `{"name": "duo", "colors": [{"hex": "#102030"}, {"code": 15, "hex": "FFFFFF"}]}`},
		{".yaml", "name: duo\ncolors:\n  - hex: \"#102030\"\n  - code: 15\n    hex: FFFFFF\n"},
		{"toml", "name = \"duo\"\n[[colors]]\nhex = \"#102030\"\n[[colors]]\ncode = 15\nhex = \"FFFFFF\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			p, err := ParsePalette(cs, []byte(tc.data), tc.format)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name != "duo" || p.Len() != 2 {
				t.Fatalf("got %q with %d colors", p.Name, p.Len())
			}
			first, _ := p.Entry(0)
			second, _ := p.Entry(1)
			if first.RGB != 0x102030 || first.Code != NoCode {
				t.Errorf("first = %+v", first)
			}
			if second.RGB != 0xffffff || second.Code != 15 {
				t.Errorf("second = %+v", second)
			}
		})
	}
}

func TestParsePaletteErrors(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	tests := map[string]struct {
		data, format string
	}{
		"empty":       {`{"name": "none", "colors": []}`, "json"},
		"bad hex":     {`{"colors": [{"hex": "#gg0000"}]}`, "json"},
		"bad code":    {`{"colors": [{"code": 300, "hex": "#000000"}]}`, "json"},
		"bad syntax":  {`{"colors": [`, "json"},
		"bad format":  {`name = "x"`, "ini"},
		"negative":    {`{"colors": [{"code": -2, "hex": "#000000"}]}`, "json"},
		"yaml syntax": {"colors: [", "yaml"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePalette(cs, []byte(tc.data), tc.format); !errors.Is(err, ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestLoadPaletteFile(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	path := filepath.Join(t.TempDir(), "mine.yml")
	data := "name: mine\ncolors:\n  - {name: ink, hex: \"#000000\"}\n  - {name: paper, hex: \"#f0f0e0\"}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPalette(cs, path)
	if err != nil {
		t.Fatal(err)
	}
	if e, _ := p.Entry(1); e.Name != "paper" || e.RGB != 0xf0f0e0 {
		t.Errorf("entry 1 = %+v", e)
	}

	if _, err := LoadPalette(cs, filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrConfiguration) {
		t.Errorf("missing file err = %v, want ErrConfiguration", err)
	}
}

func TestPaletteFileRoundTrip(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	p, err := LoadPalette(cs, "gray4")
	if err != nil {
		t.Fatal(err)
	}
	q, err := NewPalette(cs, p.Name, p.File().Colors)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range p.Entries() {
		if got, _ := q.Entry(i); got != e {
			t.Errorf("entry %d = %+v, want %+v", i, got, e)
		}
	}
}

func TestComputePalette(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()

	// Two clusters split cleanly on the red channel.
	img := NewImage(4, 1)
	img.Pix[0] = cs.DecodeRGB(250, 0, 0)
	img.Pix[1] = cs.DecodeRGB(0, 0, 200)
	img.Pix[2] = cs.DecodeRGB(250, 0, 0)
	img.Pix[3] = cs.DecodeRGB(0, 0, 200)

	p, err := ComputePalette(cs, img, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("got %d colors, want 2", p.Len())
	}
	low, _ := p.Entry(0)
	high, _ := p.Entry(1)
	if low.RGB != 0x0000c8 || high.RGB != 0xfa0000 {
		t.Errorf("palette = #%06x, #%06x; want #0000c8, #fa0000", low.RGB, high.RGB)
	}
	if low.Code != NoCode {
		t.Errorf("computed entries should have no code, got %d", low.Code)
	}
}

func TestComputePaletteMergesDuplicates(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	img := NewImage(3, 3)
	for i := range img.Pix {
		img.Pix[i] = cs.DecodeRGB(10, 20, 30)
	}
	p, err := ComputePalette(cs, img, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 {
		t.Fatalf("uniform image gave %d colors, want 1", p.Len())
	}
	if e, _ := p.Entry(0); e.RGB != 0x0a141e {
		t.Errorf("color = #%06x, want #0a141e", e.RGB)
	}
}

func TestComputePaletteSizes(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	img := NewImage(1, 1)
	for _, n := range []int{0, 1, 3, 12, 512, -4} {
		if _, err := ComputePalette(cs, img, n); !errors.Is(err, ErrUnsupportedPaletteSize) {
			t.Errorf("ComputePalette(%d) err = %v, want ErrUnsupportedPaletteSize", n, err)
		}
	}
	for _, n := range []int{2, 4, 256} {
		if _, err := ComputePalette(cs, img, n); err != nil {
			t.Errorf("ComputePalette(%d): %v", n, err)
		}
	}
	if _, err := ComputePalette(cs, &Image{}, 4); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("empty image err = %v, want ErrInvalidDimensions", err)
	}
}

func TestRestrictedPalettes(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	p, err := LoadPalette(cs, "ansi16")
	if err != nil {
		t.Fatal(err)
	}

	gray, err := p.Grayscale()
	if err != nil {
		t.Fatal(err)
	}
	var codes []int
	for _, e := range gray.Entries() {
		codes = append(codes, e.Code)
	}
	if want := []int{0, 7, 8, 15}; !equalInts(codes, want) {
		t.Errorf("grayscale codes = %v, want %v", codes, want)
	}

	mono, err := p.Monochrome()
	if err != nil {
		t.Fatal(err)
	}
	dark, _ := mono.Entry(0)
	light, _ := mono.Entry(1)
	if dark.RGB != 0x000000 || light.RGB != 0xffffff {
		t.Errorf("monochrome = #%06x, #%06x", dark.RGB, light.RGB)
	}

	single, err := NewPalette(cs, "one", []PaletteColor{{Hex: "#ff0000"}, {Hex: "#00ff00"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := single.Grayscale(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Grayscale without neutrals err = %v", err)
	}
	flat, _ := NewPalette(cs, "flat", []PaletteColor{{Hex: "#808080"}, {Hex: "#808080"}})
	if _, err := flat.Monochrome(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Monochrome without contrast err = %v", err)
	}
}

func TestPaletteQuantizer(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	p, err := LoadPalette(cs, "ansi16")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.IndexNear(color.RGBA{250, 10, 10, 255}); got != 9 {
		t.Errorf("IndexNear(near red) = %d, want 9", got)
	}
	if got := p.ColorNear(color.White); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("ColorNear(white) = %v", got)
	}
	if pal := p.ColorPalette(); len(pal) != 16 || pal[12] != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("ColorPalette()[12] = %v", pal[12])
	}

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{250, 10, 10, 255})
	img.Set(1, 0, color.NRGBA{10, 10, 240, 255})
	pi := quant.Paletted(p, img)
	if pi.ColorIndexAt(0, 0) != 9 || pi.ColorIndexAt(1, 0) != 12 {
		t.Errorf("Paletted indices = %d, %d; want 9, 12", pi.ColorIndexAt(0, 0), pi.ColorIndexAt(1, 0))
	}
}

func TestPaletteWithEndpoints(t *testing.T) {
	t.Parallel()
	cs := NewColorSpace()
	img := NewImage(4, 4)
	for i := range img.Pix {
		img.Pix[i] = cs.DecodeRGB(128, 128, 128)
	}
	p, err := ComputePalette(cs, img, 16)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 {
		t.Fatalf("uniform image gave %d colors, want 1", p.Len())
	}
	padded := p.withEndpoints()
	var got []uint32
	for _, e := range padded.Entries() {
		got = append(got, e.RGB)
	}
	if len(got) != 3 || got[0] != 0x808080 || got[1] != 0x000000 || got[2] != 0xffffff {
		t.Errorf("padded palette = %06x, want [808080 000000 ffffff]", got)
	}
	if p.Len() != 1 {
		t.Error("withEndpoints modified its receiver")
	}
	if again := padded.withEndpoints(); again.Len() != 3 {
		t.Errorf("padding twice gave %d colors", again.Len())
	}
	if _, err := padded.Grayscale(); err != nil {
		t.Errorf("Grayscale: %v", err)
	}
	if _, err := padded.Monochrome(); err != nil {
		t.Errorf("Monochrome: %v", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
