// Package config loads and saves the chaosfield configuration.
//
// A configuration carries every parameter needed to reproduce a render
// or a simulation: physics, field, view, simulator, audio and output.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
)

const (
	DefaultGravity   = 9.81
	DefaultStepCount = 100
	DefaultSimDt     = 0.002
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultAudioDt   = 0.01
	DefaultDataDir   = ".chaosfield"
)

type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Field     FieldConfig     `yaml:"field"`
	View      ViewConfig      `yaml:"view"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Audio     AudioConfig     `yaml:"audio"`
	Output    OutputConfig    `yaml:"output"`
}

type PhysicsConfig struct {
	Gravity float64    `yaml:"gravity"`
	Lengths [2]float64 `yaml:"lengths"`
	Masses  [2]float64 `yaml:"masses"`
}

type FieldConfig struct {
	StepCount int     `yaml:"step_count"`
	Dt        float64 `yaml:"dt"`
	Epsilon   float64 `yaml:"epsilon"`
	Workers   int     `yaml:"workers"`
	Backend   string  `yaml:"backend"`
}

type ViewConfig struct {
	Center [2]float64 `yaml:"center"`
	Size   [2]float64 `yaml:"size"`
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
}

type SimulatorConfig struct {
	Dt            float64     `yaml:"dt"`
	ClickedAngles *[2]float64 `yaml:"clicked_angles,omitempty"`
	MaxCatchUp    int         `yaml:"max_catch_up"`
}

type AudioConfig struct {
	SampleRate float64 `yaml:"sample_rate"`
	BufferSize int     `yaml:"buffer_size"`
	Dt         float64 `yaml:"dt"`
	Volume     float64 `yaml:"volume"`
	Cutoff     float64 `yaml:"cutoff"`
}

type OutputConfig struct {
	Format  string `yaml:"format"`
	Overlay bool   `yaml:"overlay"`
	DataDir string `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			Gravity: DefaultGravity,
			Lengths: [2]float64{1, 1},
			Masses:  [2]float64{1, 1},
		},
		Field: FieldConfig{
			StepCount: DefaultStepCount,
			Dt:        field.DefaultDt,
			Epsilon:   field.DefaultEpsilon,
			Backend:   "cpu",
		},
		View: ViewConfig{
			Size:   [2]float64{2 * math.Pi, 2 * math.Pi},
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Simulator: SimulatorConfig{
			Dt:         DefaultSimDt,
			MaxCatchUp: 2000,
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			BufferSize: 1024,
			Dt:         DefaultAudioDt,
			Volume:     0.25,
			Cutoff:     4000,
		},
		Output: OutputConfig{
			Format:  "png",
			Overlay: true,
			DataDir: DefaultDataDir,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Simulator.ClickedAngles != nil {
		a := *c.Simulator.ClickedAngles
		out.Simulator.ClickedAngles = &a
	}
	return &out
}

// Params returns the simulation parameters shared by the field and the
// simulator.
func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Gravity:   c.Physics.Gravity,
		Lengths:   c.Physics.Lengths,
		Masses:    c.Physics.Masses,
		StepCount: c.Field.StepCount,
	}
}

func (c *Config) FieldSettings() field.Settings {
	return field.Settings{
		Params:  c.Params(),
		Dt:      c.Field.Dt,
		Epsilon: c.Field.Epsilon,
	}
}

func (c *Config) Viewport() field.Viewport {
	return field.Viewport{
		Center: c.View.Center,
		Size:   c.View.Size,
		Width:  c.View.Width,
		Height: c.View.Height,
	}
}

// SetViewport stores a panned or zoomed view back into the configuration.
func (c *Config) SetViewport(v field.Viewport) {
	c.View = ViewConfig{Center: v.Center, Size: v.Size, Width: v.Width, Height: v.Height}
}

// Validate rejects parameters the dynamics cannot run with. Lengths,
// masses and gravity must be positive, as must every step and count.
func (c *Config) Validate() error {
	if !(c.Physics.Gravity > 0) || math.IsInf(c.Physics.Gravity, 0) {
		return fmt.Errorf("%w: gravity=%g", dynamo.ErrParameterBounds, c.Physics.Gravity)
	}
	if err := c.FieldSettings().Validate(); err != nil {
		return err
	}
	if c.Field.StepCount <= 0 {
		return fmt.Errorf("%w: step_count=%d", dynamo.ErrParameterBounds, c.Field.StepCount)
	}
	if c.Field.Workers < 0 {
		return fmt.Errorf("%w: workers=%d", dynamo.ErrParameterBounds, c.Field.Workers)
	}
	if err := c.Viewport().Validate(); err != nil {
		return err
	}
	if !(c.Simulator.Dt > 0) || math.IsInf(c.Simulator.Dt, 0) {
		return fmt.Errorf("%w: simulator dt=%g", dynamo.ErrParameterBounds, c.Simulator.Dt)
	}
	if c.Simulator.MaxCatchUp < 0 {
		return fmt.Errorf("%w: max_catch_up=%d", dynamo.ErrParameterBounds, c.Simulator.MaxCatchUp)
	}
	if a := c.Simulator.ClickedAngles; a != nil {
		if math.IsNaN(a[0]) || math.IsNaN(a[1]) || math.IsInf(a[0], 0) || math.IsInf(a[1], 0) {
			return fmt.Errorf("%w: clicked_angles=%v", dynamo.ErrParameterBounds, *a)
		}
	}
	if !(c.Audio.Dt > 0) {
		return fmt.Errorf("%w: audio dt=%g", dynamo.ErrParameterBounds, c.Audio.Dt)
	}
	switch c.Output.Format {
	case "png", "bmp", "tiff":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output.Format)
	}
	return nil
}
