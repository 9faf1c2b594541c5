package field

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Saturation of every field color.
const Saturation = 0.9

// Opaque black, used for unreached or degenerate samples.
var Black = color.RGBA{A: 255}

// Hue returns the hue in turns for an angle difference: the direction of
// divergence plus half a turn, wrapped into [0, 1). A zero difference has
// hue 0.
func Hue(diff [2]float64) float64 {
	if diff[0] == 0 && diff[1] == 0 {
		return 0
	}
	h := math.Atan2(diff[1], diff[0]) + 0.5
	return h - math.Floor(h)
}

// Value returns the brightness for an angle difference, clamped to [0, 1].
func Value(diff [2]float64) float64 {
	v := (diff[0] + diff[1]) / (4 * math.Pi)
	return math.Max(0, math.Min(1, v))
}

// Color maps the per-link angle difference of two trajectories to a pixel.
// Non-finite differences map to Black.
func Color(diff [2]float64) color.RGBA {
	for _, d := range diff {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return Black
		}
	}
	r, g, b := colorful.Hsv(Hue(diff)*360, Saturation, Value(diff)).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
