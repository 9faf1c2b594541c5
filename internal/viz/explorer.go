package viz

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaosfield/internal/compute"
	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/sim"
)

const (
	panelWidth      = 36
	canvasCols      = 32
	canvasRows      = 10
	historyCapacity = 300
	frameRate       = 30
)

// Options configure an Explorer.
type Options struct {
	Settings   field.Settings
	View       field.Viewport
	Backend    compute.Backend
	SimDt      float64
	MaxCatchUp int
	Start      *[2]float64
	Theme      string
}

type tickMsg time.Time

type renderedMsg struct {
	gen  int
	img  *image.RGBA
	took time.Duration
	err  error
}

// Explorer is the Bubble Tea model of the terminal explorer.
type Explorer struct {
	eval    *field.Evaluator
	backend compute.Backend
	simDt   float64
	catchUp int

	view   field.Viewport
	home   field.Viewport
	img    *image.RGBA
	blocks string
	gen    int
	cancel context.CancelFunc
	took   time.Duration

	cursor     image.Point
	cols, rows int

	driver  *sim.Driver
	start   [2]float64
	pend    *PendulumView
	angles  [2][]float64
	momenta []float64

	theme    Theme
	styles   styles
	showHelp bool
	err      error
}

func NewExplorer(opts Options) (Explorer, error) {
	eval, err := field.NewEvaluator(opts.Settings)
	if err != nil {
		return Explorer{}, err
	}
	if opts.Backend == nil {
		opts.Backend = compute.GetBackend()
	}
	if !(opts.SimDt > 0) {
		return Explorer{}, fmt.Errorf("%w: simulator dt=%g", dynamo.ErrParameterBounds, opts.SimDt)
	}
	theme := GetTheme(opts.Theme)
	m := Explorer{
		eval:    eval,
		backend: opts.Backend,
		simDt:   opts.SimDt,
		catchUp: opts.MaxCatchUp,
		view:    opts.View,
		home:    opts.View,
		pend:    NewPendulumView(canvasCols, canvasRows),
		theme:   theme,
		styles:  stylesFor(theme),
	}
	m.resize(80, 24)
	if opts.Start != nil {
		if err := m.drop(*opts.Start, time.Now()); err != nil {
			return Explorer{}, err
		}
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Explorer) Init() tea.Cmd {
	return tick()
}

// Viewport returns the current view.
func (m Explorer) Viewport() field.Viewport { return m.view }

// Pendulum returns the live pendulum, if one was dropped.
func (m Explorer) Pendulum() (sim.Snapshot, bool) {
	if m.driver == nil {
		return sim.Snapshot{}, false
	}
	return m.driver.Simulator().State(), true
}

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		cmd := m.rerender()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case renderedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.err = msg.err
		if msg.err == nil {
			m.img, m.took = msg.img, msg.took
			m.blocks = Blocks(m.img, m.cursor)
		}
		return m, nil

	case tickMsg:
		m.advance(time.Time(msg))
		if m.img == nil && m.cancel == nil {
			render := m.rerender()
			return m, tea.Batch(tick(), render)
		}
		return m, tick()
	}
	return m, nil
}

func (m Explorer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panStep := float64(max(m.view.Width/8, 1))
	switch msg.String() {
	case "q", "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "left":
		m.view = m.view.Pan(panStep, 0)
	case "right":
		m.view = m.view.Pan(-panStep, 0)
	case "up":
		m.view = m.view.Pan(0, panStep)
	case "down":
		m.view = m.view.Pan(0, -panStep)
	case "+", "=":
		x, y := m.cursorPixel()
		m.view = m.view.Zoom(0.5, x, y)
	case "-", "_":
		x, y := m.cursorPixel()
		m.view = m.view.Zoom(2, x, y)
	case "0":
		m.view = m.home.Resize(m.view.Width, m.view.Height)
	case "h":
		m.moveCursor(-1, 0)
		return m, nil
	case "l":
		m.moveCursor(1, 0)
		return m, nil
	case "k":
		m.moveCursor(0, -1)
		return m, nil
	case "j":
		m.moveCursor(0, 1)
		return m, nil
	case "enter":
		m.err = m.drop(m.cursorAngles(), time.Now())
		return m, nil
	case " ":
		if m.driver != nil {
			m.driver.SetPaused(!m.driver.Paused())
		}
		return m, nil
	case "s":
		m.stepOrPause()
		return m, nil
	case "r":
		if m.driver != nil {
			m.err = m.drop(m.start, time.Now())
		}
		return m, nil
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = stylesFor(m.theme)
		return m, nil
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	default:
		return m, nil
	}
	cmd := m.rerender()
	return m, cmd
}

func (m Explorer) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.X < 0 || msg.X >= m.cols || msg.Y < 0 || msg.Y >= m.rows {
		return m, nil
	}
	m.cursor = image.Pt(msg.X, msg.Y)
	if m.img != nil {
		m.blocks = Blocks(m.img, m.cursor)
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		m.err = m.drop(m.cursorAngles(), time.Now())
	case tea.MouseButtonWheelUp:
		x, y := m.cursorPixel()
		m.view = m.view.Zoom(0.8, x, y)
		cmd := m.rerender()
		return m, cmd
	case tea.MouseButtonWheelDown:
		x, y := m.cursorPixel()
		m.view = m.view.Zoom(1.25, x, y)
		cmd := m.rerender()
		return m, cmd
	}
	return m, nil
}

// resize fits the field to a terminal of w x h cells, leaving room for the
// panel and the status line.
func (m *Explorer) resize(w, h int) {
	m.cols = max(w-panelWidth-1, 8)
	m.rows = max(h-1, 4)
	m.view = m.view.Resize(m.cols, 2*m.rows)
	m.cursor.X = min(m.cursor.X, m.cols-1)
	m.cursor.Y = min(m.cursor.Y, m.rows-1)
	if m.cursor == (image.Point{}) {
		m.cursor = image.Pt(m.cols/2, m.rows/2)
	}
}

func (m *Explorer) moveCursor(dx, dy int) {
	m.cursor.X = min(max(m.cursor.X+dx, 0), m.cols-1)
	m.cursor.Y = min(max(m.cursor.Y+dy, 0), m.rows-1)
	if m.img != nil {
		m.blocks = Blocks(m.img, m.cursor)
	}
}

// cursorPixel returns the image position at the centre of the cursor cell.
func (m Explorer) cursorPixel() (float64, float64) {
	return float64(m.cursor.X) + 0.5, float64(2*m.cursor.Y + 1)
}

func (m Explorer) cursorAngles() [2]float64 {
	x, y := m.cursorPixel()
	return m.view.Angles(x, float64(m.view.Height)-y)
}

// rerender starts an asynchronous render of the current view and cancels
// the previous one.
func (m *Explorer) rerender() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	gen, backend := m.gen, m.backend
	job := compute.Job{Evaluator: m.eval, View: m.view}
	return func() tea.Msg {
		start := time.Now()
		img, err := backend.Render(ctx, job)
		if errors.Is(err, dynamo.ErrContextCanceled) {
			return nil
		}
		return renderedMsg{gen: gen, img: img, took: time.Since(start), err: err}
	}
}

func (m *Explorer) drop(angles [2]float64, now time.Time) error {
	params := m.eval.Settings().Params
	s, err := sim.FromParams(params, angles, m.simDt)
	if err != nil {
		return err
	}
	if m.driver == nil {
		m.driver = sim.NewDriver(s, m.catchUp)
		m.driver.Start(now)
	} else {
		m.driver.Replace(s, now)
	}
	m.start = angles
	m.pend.ResetTrail()
	m.angles = [2][]float64{}
	m.momenta = nil
	m.record()
	dynamo.Logger().Debug("pendulum dropped", "angle1", angles[0], "angle2", angles[1])
	return nil
}

func (m *Explorer) stepOrPause() {
	if m.driver == nil {
		return
	}
	if !m.driver.Paused() {
		m.driver.SetPaused(true)
		return
	}
	m.driver.Simulator().Step()
	m.record()
}

func (m *Explorer) advance(now time.Time) {
	if m.driver == nil {
		return
	}
	if m.driver.Tick(now) > 0 {
		m.record()
	}
}

func (m *Explorer) record() {
	snap := m.driver.Simulator().State()
	m.pend.Draw(snap.Pair)
	for i := range m.angles {
		m.angles[i] = appendCapped(m.angles[i], wrap(snap.Pair[i].Angle))
	}
	m.momenta = appendCapped(m.momenta, snap.Pair[1].Momentum)
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m Explorer) View() string {
	left := m.blocks
	if left == "" {
		left = lipgloss.Place(m.cols, m.rows, lipgloss.Center, lipgloss.Center, m.styles.hint.Render("rendering..."))
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.panel())
	return main + "\n" + m.status()
}

func (m Explorer) panel() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.title.Render("CHAOSFIELD") + "\n\n")

	if m.showHelp {
		b.WriteString(s.hint.Render(strings.Join([]string{
			"arrows   pan",
			"+ -      zoom at cursor",
			"h j k l  move cursor",
			"enter    drop pendulum",
			"click    drop pendulum",
			"space    pause/resume",
			"s        pause / step",
			"r        restart",
			"0        reset view",
			"t        theme",
			"q        quit",
		}, "\n")))
		return s.panel.Width(panelWidth - 2).Render(b.String())
	}

	a := m.cursorAngles()
	div := m.eval.Divergence(a)
	b.WriteString(s.row("cursor", fmt.Sprintf("%+.3f %+.3f", a[0], a[1])) + "\n")
	b.WriteString(s.row("diverge", fmt.Sprintf("%.2e %.2e", div[0], div[1])) + "\n")
	b.WriteString(s.row("center", fmt.Sprintf("%+.3f %+.3f", m.view.Center[0], m.view.Center[1])) + "\n")
	b.WriteString(s.row("size", fmt.Sprintf("%.3g x %.3g", m.view.Size[0], m.view.Size[1])) + "\n")
	b.WriteString(s.row("backend", fmt.Sprintf("%s %s", m.backend.Name(), m.took.Round(time.Millisecond))) + "\n\n")

	if m.driver == nil {
		b.WriteString(s.hint.Render("press enter or click\nto drop a pendulum"))
		return s.panel.Width(panelWidth - 2).Render(b.String())
	}

	snap := m.driver.Simulator().State()
	if m.driver.Paused() {
		b.WriteString(s.paused.Render("PAUSED"))
	} else {
		b.WriteString(s.running.Render("RUNNING"))
	}
	b.WriteString(fmt.Sprintf("  t=%.2fs\n", snap.Time))
	b.WriteString(m.pend.String() + "\n")
	if len(m.angles[0]) > 1 {
		graph := asciigraph.PlotMany(m.angles[:],
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-12),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Orange),
			asciigraph.Caption("angles"))
		b.WriteString(graph + "\n")
		b.WriteString(s.label.Render("p2") + SparklineChart(m.momenta, panelWidth-14))
	}
	return s.panel.Width(panelWidth - 2).Render(b.String())
}

func (m Explorer) status() string {
	s := m.styles
	if m.err != nil {
		return s.err.Render("error: " + m.err.Error())
	}
	return s.hint.Render("arrows pan  +/- zoom  enter drop  space pause  ? help  q quit")
}

// wrap maps an angle into [-π, π).
func wrap(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Run starts the explorer on the terminal.
func Run(opts Options) error {
	m, err := NewExplorer(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
