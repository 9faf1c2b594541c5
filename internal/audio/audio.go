package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

// Config controls the output stream.
type Config struct {
	SampleRate float64 `yaml:"sample_rate"`
	BufferSize int     `yaml:"buffer_size"`
	Dt         float64 `yaml:"dt"`
	Volume     float64 `yaml:"volume"`
	// Cutoff of the smoothing low-pass filter in Hz. Zero disables it.
	Cutoff float64 `yaml:"cutoff"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate: SampleRate,
		BufferSize: BufferSize,
		Dt:         DefaultDt,
		Volume:     0.25,
		Cutoff:     4000,
	}
}

func (c Config) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%w: sample_rate=%g", dynamo.ErrParameterBounds, c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer_size=%d", dynamo.ErrParameterBounds, c.BufferSize)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: audio dt=%g", dynamo.ErrParameterBounds, c.Dt)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume=%g", dynamo.ErrParameterBounds, c.Volume)
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("%w: cutoff=%g", dynamo.ErrParameterBounds, c.Cutoff)
	}
	return nil
}

// Player streams a Sonifier to the default output device.
type Player struct {
	Stream *portaudio.Stream

	cfg         Config
	son         *Sonifier
	filterState [2]float64
	left, right []float32

	mu     sync.Mutex
	Active bool
}

func NewPlayer(son *Sonifier, cfg Config) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Player{
		cfg:   cfg,
		son:   son,
		left:  make([]float32, cfg.BufferSize),
		right: make([]float32, cfg.BufferSize),
	}, nil
}

func (a *Player) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}

	// Output only: duplex streams often fail when input and output devices differ.
	stream, err := portaudio.OpenDefaultStream(0, 2, a.cfg.SampleRate, a.cfg.BufferSize, a.Process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio open: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio start: %w", err)
	}

	dynamo.Logger().Info("audio started", "rate", a.cfg.SampleRate, "buffer", a.cfg.BufferSize)

	a.mu.Lock()
	a.Stream = stream
	a.Active = true
	a.mu.Unlock()
	return nil
}

func (a *Player) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.Active {
		return nil
	}
	var errs []error
	if err := a.Stream.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Stream.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	a.Active = false
	if len(errs) > 0 {
		return fmt.Errorf("audio stop: %v", errs)
	}
	return nil
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Process is the stream callback: one simulator step per frame, filtered
// and scaled.
func (a *Player) Process(out [][]float32) {
	n := len(out[0])
	if len(a.left) < n {
		a.left = make([]float32, n)
		a.right = make([]float32, n)
	}
	l, r := a.left[:n], a.right[:n]
	a.son.Fill(l, r)

	dt := 1.0 / a.cfg.SampleRate
	vol := a.cfg.Volume
	for i := 0; i < n; i++ {
		sl, sr := float64(l[i]), float64(r[i])
		if a.cfg.Cutoff > 0 {
			a.filterState[0] = lpf(sl, a.cfg.Cutoff, dt, a.filterState[0])
			a.filterState[1] = lpf(sr, a.cfg.Cutoff, dt, a.filterState[1])
			sl, sr = a.filterState[0], a.filterState[1]
		}
		out[0][i] = float32(sl * vol)
		out[1][i] = float32(sr * vol)
	}
}
