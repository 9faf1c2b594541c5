package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/physics"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.hasTex {
		rl.DrawTexture(a.tex, int32(a.drag.X), int32(a.drag.Y), rl.White)
	}
	if a.driver != nil {
		a.drawPendulum()
	}
	a.DrawHUD()
	if len(a.history) > 1 {
		a.DrawTelemetry()
	}
	if a.showHelp {
		a.drawHelp()
	}

	rl.EndDrawing()
}

// pendulumPoints maps the pivot and both bobs to screen space. The pivot
// sits at the window centre and the full reach spans 45% of the short side.
func (a *App) pendulumPoints(pair dynamo.Pair) (pivot, inner, outer rl.Vector2) {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	scale := 0.45 * math.Min(float64(w), float64(h)) / physics.Reach(pair)
	x1, y1, x2, y2 := physics.TipPositions(pair)

	pivot = rl.NewVector2(w/2, h/2)
	inner = rl.NewVector2(pivot.X+float32(x1*scale), pivot.Y+float32(y1*scale))
	outer = rl.NewVector2(pivot.X+float32(x2*scale), pivot.Y+float32(y2*scale))
	return pivot, inner, outer
}

func (a *App) drawPendulum() {
	pair := a.driver.Simulator().State().Pair
	if !pair.IsValid() {
		return
	}
	pivot, inner, outer := a.pendulumPoints(pair)

	for i := 1; i < len(a.trail); i++ {
		alpha := uint8(40 + 160*i/len(a.trail))
		rl.DrawLineEx(a.trail[i-1], a.trail[i], 1.5, rl.NewColor(255, 255, 255, alpha))
	}

	rl.DrawLineEx(pivot, inner, 3, ColSelect)
	rl.DrawLineEx(inner, outer, 3, ColSelect)
	rl.DrawCircleV(pivot, 4, ColAccent)
	rl.DrawCircleV(inner, 8, ColSelect)
	rl.DrawCircleV(outer, 8, ColSelect)
	rl.DrawCircleLines(int32(inner.X), int32(inner.Y), 8, ColBg)
	rl.DrawCircleLines(int32(outer.X), int32(outer.Y), 8, ColBg)
}

func (a *App) DrawHUD() {
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, sw, 28, ColShade)
	center := a.view.Center
	drawText(fmt.Sprintf("center (%.3f, %.3f)  size %.4f", center[0], center[1], a.view.Size), 10, 7, 14, ColText)

	status := "DROP A PENDULUM"
	statusCol := ColTextDim
	if a.driver != nil {
		status = "RUNNING"
		statusCol = ColSelect
		if a.driver.Paused() {
			status = "PAUSED"
			statusCol = ColAccent
		}
	}
	drawText(status, sw-int32(rl.MeasureText(status, 14))-10, 7, 14, statusCol)

	render := fmt.Sprintf("%s  %s", a.backend.Name(), a.took.Round(1e6))
	if a.pending {
		render = a.backend.Name() + "  rendering..."
	}
	drawText(render, 10, 34, 12, ColTextDim)

	if a.driver != nil {
		s := a.driver.Simulator()
		angles := s.State().Pair.Angles()
		drawText(fmt.Sprintf("t %.2fs", s.Time()), 10, 50, 12, ColText)
		drawText(fmt.Sprintf("start (%.3f, %.3f)", a.start[0], a.start[1]), 10, 66, 12, ColTextDim)
		drawText(fmt.Sprintf("angles (%.3f, %.3f)", angles[0], angles[1]), 10, 82, 12, ColTextDim)
	}
	if a.err != nil {
		drawText(a.err.Error(), 10, 98, 12, rl.NewColor(230, 90, 90, 255))
	}

	hints := "LMB drop  RMB pan  WHEEL zoom  SPACE pause  R restart  0 reset  H help  Q quit"
	rl.DrawRectangle(0, sh-24, sw, 24, ColShade)
	drawText(hints, 10, sh-18, 12, ColTextDim)
	drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), sw-60, sh-18, 12, ColTextDim)
}

// DrawTelemetry plots the recent wrapped angles in the bottom-right corner.
func (a *App) DrawTelemetry() {
	const w, h = 240, 90
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	x0, y0 := sw-w-10, sh-24-h-10

	rl.DrawRectangle(x0, y0, w, h, ColShade)
	rl.DrawRectangleLines(x0, y0, w, h, ColTextDim)
	mid := float32(y0) + h/2
	rl.DrawLine(x0, int32(mid), x0+w, int32(mid), rl.NewColor(60, 60, 60, 255))

	cols := [2]rl.Color{rl.NewColor(90, 200, 230, 255), rl.NewColor(240, 160, 70, 255)}
	points := make([]rl.Vector2, len(a.history))
	for link := 0; link < 2; link++ {
		for i, angles := range a.history {
			points[i] = rl.NewVector2(
				float32(x0)+float32(i)*float32(w)/float32(telemetryLength),
				mid-float32(angles[link]/math.Pi)*(h/2-4),
			)
		}
		rl.DrawLineStrip(points, cols[link])
	}
	drawText("angle 1", x0+6, y0+4, 10, cols[0])
	drawText("angle 2", x0+60, y0+4, 10, cols[1])
}

func (a *App) drawHelp() {
	lines := []string{
		"left click    drop a pendulum at those starting angles",
		"right drag    pan the field",
		"wheel         zoom at the cursor",
		"space         pause or resume",
		"r             restart from the last drop",
		"0             reset the view",
		"q / esc       quit",
	}
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	bw, bh := int32(420), int32(24+18*len(lines))
	x, y := (sw-bw)/2, (sh-bh)/2
	rl.DrawRectangle(x, y, bw, bh, rl.NewColor(0, 0, 0, 210))
	rl.DrawRectangleLines(x, y, bw, bh, ColAccent)
	for i, l := range lines {
		drawText(l, x+14, y+12+int32(i)*18, 12, ColText)
	}
}

func drawText(text string, x, y, size int32, col rl.Color) {
	rl.DrawText(text, x, y, size, col)
}

// wrapAngle maps an angle into [-π, π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
