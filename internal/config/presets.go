package config

import (
	"math"
	"sort"
)

func preset(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"heavy-lower": preset(func(c *Config) {
		c.Physics.Masses = [2]float64{1, 3}
	}),
	"long-arm": preset(func(c *Config) {
		c.Physics.Lengths = [2]float64{1, 2}
		c.Field.StepCount = 150
	}),
	"deep-zoom": preset(func(c *Config) {
		c.View.Center = [2]float64{2.2, 1.1}
		c.View.Size = [2]float64{0.25, 0.25}
		c.Field.StepCount = 200
	}),
	"moon": preset(func(c *Config) {
		c.Physics.Gravity = 1.62
		c.Field.StepCount = 250
		c.Simulator.ClickedAngles = &[2]float64{math.Pi / 2, math.Pi / 2}
	}),
	"golden": preset(func(c *Config) {
		c.Physics.Masses = [2]float64{3, 3}
		c.Simulator.Dt = 0.001
		c.Simulator.ClickedAngles = &[2]float64{math.Pi / 2, math.Pi / 2}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
