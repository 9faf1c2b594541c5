package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/integrators"
)

// Point is one sample of a 2D projection of the state.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot.
// XIndex and YIndex index the flat state [angle1, momentum1, angle2, momentum2].
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// GeneratePhasePortrait integrates start for duration and records the
// chosen pair of state components after every step.
func GeneratePhasePortrait(rk integrators.RK4, start dynamo.Pair, xIdx, yIdx int, duration float64) *PhasePortrait2D {
	if xIdx < 0 || yIdx < 0 || xIdx >= dynamo.StateDim || yIdx >= dynamo.StateDim {
		return nil
	}

	steps := int(duration / rk.Dt)
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, max(steps, 0)),
	}

	p := start
	for i := 0; i < steps; i++ {
		rk.Step(&p)
		x := p.State()
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}

	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}
	return plotASCII(portrait.Points, width, height)
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []Point
}

// GeneratePoincareSection records the chosen components each time state
// component crossIdx crosses threshold going upward. Angles are compared
// after wrapping into [-π, π) so every revolution can cross.
func GeneratePoincareSection(
	rk integrators.RK4,
	start dynamo.Pair,
	crossIdx int,
	threshold float64,
	recordX, recordY int,
	duration float64,
) *PoincareSection {
	for _, idx := range []int{crossIdx, recordX, recordY} {
		if idx < 0 || idx >= dynamo.StateDim {
			return nil
		}
	}

	section := &PoincareSection{
		Points: make([]Point, 0),
	}

	value := func(s dynamo.State) float64 {
		v := s[crossIdx]
		if crossIdx%2 == 0 {
			v = wrapAngle(v)
		}
		return v
	}

	p := start
	steps := int(duration / rk.Dt)
	prevVal := value(p.State())

	for i := 0; i < steps; i++ {
		rk.Step(&p)
		x := p.State()
		currVal := value(x)

		// a jump of more than π is a wrap, not a crossing
		if prevVal < threshold && currVal >= threshold && currVal-prevVal < math.Pi {
			section.Points = append(section.Points, Point{X: x[recordX], Y: x[recordY]})
		}

		prevVal = currVal
	}

	return section
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return plotASCII(section.Points, width, height)
}

func wrapAngle(a float64) float64 {
	return a - 2*math.Pi*math.Floor((a+math.Pi)/(2*math.Pi))
}

func plotASCII(points []Point, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
