package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/sim"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func testRun(t *testing.T, steps int) []sim.Snapshot {
	t.Helper()
	pair, err := dynamo.NewPair([2]float64{1.2, 0.4}, [2]float64{1, 1}, [2]float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	s, err := sim.New(pair, 9.81, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), sim.RunConfig{Steps: steps, RecordEvery: 1})
	if err != nil {
		t.Fatal(err)
	}
	return res.Snapshots
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"png", PNG, false},
		{".PNG", PNG, false},
		{"", PNG, false},
		{"bmp", BMP, false},
		{"tif", TIFF, false},
		{".tiff", TIFF, false},
		{"jpeg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := testImage(8, 6)
	for _, f := range []Format{PNG, BMP, TIFF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, f); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, got, err := Decode(&buf)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != f {
				t.Errorf("format = %q, want %q", got, f)
			}
			if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
				t.Fatalf("bounds = %v", img.Bounds())
			}
			b := img.Bounds()
			for y := 0; y < 6; y++ {
				for x := 0; x < 8; x++ {
					r1, g1, b1, a1 := src.At(x, y).RGBA()
					r2, g2, b2, a2 := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
						t.Fatalf("pixel (%d,%d) differs", x, y)
					}
				}
			}
		})
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, testImage(1, 1), Format("gif")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSaveByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.bmp")
	if err := Save(path, testImage(4, 4)); err != nil {
		t.Fatalf("save: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, got, err := Decode(f); err != nil || got != BMP {
		t.Errorf("decoded %q, err %v", got, err)
	}

	if err := Save(filepath.Join(dir, "field.jpg"), testImage(1, 1)); err == nil {
		t.Error("expected error for .jpg")
	}
}

func TestDrawPendulumHanging(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := 3; i < len(bg.Pix); i += 4 {
		bg.Pix[i] = 255
	}
	pair, _ := dynamo.NewPair([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{1, 1})

	out, err := DrawPendulum(bg, pair, DefaultOverlay())
	if err != nil {
		t.Fatalf("draw: %v", err)
	}

	// Hanging straight down: the inner arm runs below the centre.
	if r := out.RGBAAt(32, 40).R; r < 100 {
		t.Errorf("arm pixel R = %d, want bright", r)
	}
	if c := out.RGBAAt(5, 5); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("corner pixel = %v, want black", c)
	}
	if bg.RGBAAt(32, 40).R != 0 {
		t.Error("source image was modified")
	}
}

func TestMarkAnglesOutsideView(t *testing.T) {
	img := testImage(16, 16)
	view := field.DefaultViewport(16, 16)
	out, err := MarkAngles(img, view, [2]float64{100, 100})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pix, img.Pix) {
		t.Error("marker outside the view changed the image")
	}
}

func TestPendulumAnimation(t *testing.T) {
	snaps := testRun(t, 20)
	anim, err := PendulumAnimation(snaps, 32, 5, DefaultOverlay())
	if err != nil {
		t.Fatal(err)
	}
	if anim.Len() != 5 {
		t.Fatalf("frames = %d, want 5", anim.Len())
	}
	var buf bytes.Buffer
	if err := anim.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 5 {
		t.Errorf("decoded frames = %d, want 5", len(g.Image))
	}

	if err := NewAnimation(0).Encode(&buf); err != ErrNoFrames {
		t.Errorf("empty animation err = %v, want ErrNoFrames", err)
	}
}

func TestTrajectoryPlot(t *testing.T) {
	if _, err := TrajectoryPlot(nil); err == nil {
		t.Error("expected error for empty trajectory")
	}

	snaps := testRun(t, 50)
	p, err := TrajectoryPlot(snaps)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "angles.png")
	if err := SavePlot(p, path); err != nil {
		t.Fatalf("save plot: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("plot file missing or empty: %v", err)
	}
}

func TestPhasePlotLink(t *testing.T) {
	snaps := testRun(t, 10)
	if _, err := PhasePlot(snaps, 2); err == nil {
		t.Error("expected error for link 2")
	}
	if _, err := PhasePlot(snaps, 1); err != nil {
		t.Errorf("link 1: %v", err)
	}
}

func TestTipPathSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := TipPathSVG(&buf, testRun(t, 30), 200, "#00ff88"); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	if !strings.HasPrefix(svg, "<?xml") || !strings.Contains(svg, `stroke="#00ff88"`) {
		t.Errorf("unexpected svg header: %.80s", svg)
	}
	if got := strings.Count(svg, " L"); got != 30 {
		t.Errorf("path segments = %d, want 30", got)
	}
}
