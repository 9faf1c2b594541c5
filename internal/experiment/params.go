package experiment

import (
	"fmt"
	"sort"
)

var setters = map[string]func(c *Config, v float64){
	"gravity": func(c *Config, v float64) { c.Params.Gravity = v },
	"angle1":  func(c *Config, v float64) { c.Angles[0] = v },
	"angle2":  func(c *Config, v float64) { c.Angles[1] = v },
	"length1": func(c *Config, v float64) { c.Params.Lengths[0] = v },
	"length2": func(c *Config, v float64) { c.Params.Lengths[1] = v },
	"mass1":   func(c *Config, v float64) { c.Params.Masses[0] = v },
	"mass2":   func(c *Config, v float64) { c.Params.Masses[1] = v },
	"dt":      func(c *Config, v float64) { c.Dt = v },
}

// Set assigns a named parameter.
func (c *Config) Set(name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s (available: %v)", name, ParamNames())
	}
	set(c, v)
	return nil
}

// Apply assigns every parameter in params.
func (c *Config) Apply(params map[string]float64) error {
	for name, v := range params {
		if err := c.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
