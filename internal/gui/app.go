// Package gui is the window explorer for the divergence field.
//
// The field fills the window as a texture. Left click drops a pendulum at
// the clicked starting angles, right drag pans, the wheel zooms and space
// pauses. With audio enabled the dropped pendulum is also played as sound.
package gui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/chaosfield/internal/audio"
	"github.com/san-kum/chaosfield/internal/compute"
	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/sim"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(220, 220, 220, 255)
	ColTextDim = rl.NewColor(120, 120, 120, 255)
	ColShade   = rl.NewColor(0, 0, 0, 150)
)

const (
	trailLength     = 300
	telemetryLength = 240
)

type Options struct {
	Settings   field.Settings
	View       field.Viewport
	Backend    string
	Workers    int
	SimDt      float64
	MaxCatchUp int
	Start      *[2]float64

	// Audio enables sound; AudioConfig sets the stream.
	Audio       bool
	AudioConfig audio.Config
}

type renderResult struct {
	gen  int
	img  *image.RGBA
	took time.Duration
	err  error
}

type App struct {
	opts    Options
	eval    *field.Evaluator
	backend compute.Backend
	async   bool

	view     field.Viewport
	home     field.Viewport
	tex      rl.Texture2D
	hasTex   bool
	gen      int
	pending  bool
	results  chan renderResult
	cancel   context.CancelFunc
	took     time.Duration
	dragging bool
	drag     rl.Vector2

	driver  *sim.Driver
	start   [2]float64
	trail   []rl.Vector2
	history [][2]float64

	sonifier *audio.Sonifier
	player   *audio.Player

	showHelp bool
	err      error
}

func initWindow(v field.Viewport) {
	rl.InitWindow(int32(v.Width), int32(v.Height), "chaosfield")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	if err := opts.View.Validate(); err != nil {
		return err
	}
	initWindow(opts.View)
	defer rl.CloseWindow()

	app, err := NewApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()
	app.RunLoop()
	return nil
}

// NewApp needs an open window: the OpenGL backend binds to its context.
func NewApp(opts Options) (*App, error) {
	eval, err := field.NewEvaluator(opts.Settings)
	if err != nil {
		return nil, err
	}
	if !(opts.SimDt > 0) {
		return nil, fmt.Errorf("%w: simulator dt=%g", dynamo.ErrParameterBounds, opts.SimDt)
	}

	log := dynamo.Logger()
	if opts.Backend == "opengl" || opts.Backend == "auto" {
		if err := compute.SharedOpenGL().Init(); err != nil {
			log.Warn("opengl compute unavailable", "err", err)
		}
	}
	backend, err := compute.Select(opts.Backend, opts.Workers)
	if err != nil {
		return nil, err
	}
	compute.SetBackend(backend)

	a := &App{
		opts:    opts,
		eval:    eval,
		backend: backend,
		async:   !strings.HasPrefix(backend.Name(), "opengl"),
		view:    opts.View,
		home:    opts.View,
		results: make(chan renderResult, 1),
	}
	log.Info("gui started", "backend", backend.Name(), "width", opts.View.Width, "height", opts.View.Height)

	if opts.Audio {
		if err := a.startAudio(); err != nil {
			log.Warn("audio disabled", "err", err)
		}
	}
	if opts.Start != nil {
		if err := a.drop(*opts.Start); err != nil {
			return nil, err
		}
	}
	a.rerender()
	return a, nil
}

func (a *App) startAudio() error {
	angles := [2]float64{}
	if a.opts.Start != nil {
		angles = *a.opts.Start
	}
	s, err := sim.FromParams(a.eval.Settings().Params, angles, a.opts.AudioConfig.Dt)
	if err != nil {
		return err
	}
	son := audio.NewSonifier(s)
	son.SetPaused(a.opts.Start == nil)
	player, err := audio.NewPlayer(son, a.opts.AudioConfig)
	if err != nil {
		return err
	}
	if err := player.Start(); err != nil {
		return err
	}
	a.sonifier, a.player = son, player
	return nil
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.player != nil {
		if err := a.player.Stop(); err != nil {
			dynamo.Logger().Warn("audio stop failed", "err", err)
		}
	}
	if a.hasTex {
		rl.UnloadTexture(a.tex)
	}
	a.backend.Cleanup()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and advances the pendulum. It returns false when
// the user quits.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return false
	}
	a.collect()

	mouse := rl.GetMousePosition()
	mx, my := float64(mouse.X), float64(mouse.Y)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		a.err = a.drop(a.view.Angles(mx, float64(a.view.Height)-my))
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		a.drag.X += d.X
		a.drag.Y += d.Y
		a.dragging = true
	} else if a.dragging {
		a.view = a.view.Pan(float64(a.drag.X), float64(a.drag.Y))
		a.drag = rl.Vector2{}
		a.dragging = false
		a.rerender()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.view = a.view.Zoom(math.Pow(0.8, float64(wheel)), mx, my)
		a.rerender()
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.togglePause()
	case rl.IsKeyPressed(rl.KeyR):
		if a.driver != nil {
			a.err = a.drop(a.start)
		}
	case rl.IsKeyPressed(rl.KeyZero):
		a.view = a.home
		a.rerender()
	case rl.IsKeyPressed(rl.KeyH):
		a.showHelp = !a.showHelp
	}

	if a.driver != nil && a.driver.Tick(time.Now()) > 0 {
		a.pushTrail()
	}
	return true
}

func (a *App) togglePause() {
	if a.driver == nil {
		return
	}
	paused := !a.driver.Paused()
	a.driver.SetPaused(paused)
	if a.sonifier != nil {
		a.sonifier.SetPaused(paused)
	}
}

func (a *App) drop(angles [2]float64) error {
	params := a.eval.Settings().Params
	s, err := sim.FromParams(params, angles, a.opts.SimDt)
	if err != nil {
		return err
	}
	if a.driver == nil {
		a.driver = sim.NewDriver(s, a.opts.MaxCatchUp)
		a.driver.Start(time.Now())
	} else {
		a.driver.Replace(s, time.Now())
	}
	a.start = angles
	a.trail = a.trail[:0]
	a.history = a.history[:0]

	if a.sonifier != nil {
		if err := a.sonifier.Restart(params.Pair(angles)); err != nil {
			return err
		}
		a.sonifier.SetPaused(a.driver.Paused())
	}
	dynamo.Logger().Debug("pendulum dropped", "angle1", angles[0], "angle2", angles[1])
	return nil
}

func (a *App) pushTrail() {
	pair := a.driver.Simulator().State().Pair
	_, _, outer := a.pendulumPoints(pair)
	a.trail = append(a.trail, outer)
	if len(a.trail) > trailLength {
		a.trail = a.trail[1:]
	}
	angles := pair.Angles()
	a.history = append(a.history, [2]float64{wrapAngle(angles[0]), wrapAngle(angles[1])})
	if len(a.history) > telemetryLength {
		a.history = a.history[1:]
	}
}

// rerender starts a render of the current view. CPU renders run in the
// background; OpenGL renders run here, on the thread that owns the context.
func (a *App) rerender() {
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.pending = true
	gen, job, backend := a.gen, compute.Job{Evaluator: a.eval, View: a.view}, a.backend

	run := func() renderResult {
		start := time.Now()
		img, err := backend.Render(ctx, job)
		return renderResult{gen: gen, img: img, took: time.Since(start), err: err}
	}
	if !a.async {
		a.accept(run())
		return
	}
	go func() {
		r := run()
		if errors.Is(r.err, dynamo.ErrContextCanceled) {
			return
		}
		// Drop an unread older result so the channel never blocks.
		select {
		case <-a.results:
		default:
		}
		a.results <- r
	}()
}

func (a *App) collect() {
	select {
	case r := <-a.results:
		a.accept(r)
	default:
	}
}

func (a *App) accept(r renderResult) {
	if r.gen != a.gen {
		return
	}
	a.pending = false
	if r.err != nil {
		a.err = r.err
		return
	}
	a.took = r.took
	if a.hasTex {
		rl.UnloadTexture(a.tex)
	}
	im := rl.NewImageFromImage(r.img)
	a.tex = rl.LoadTextureFromImage(im)
	rl.UnloadImage(im)
	a.hasTex = true
	a.err = nil
}
