// Package automation runs batches of pendulum experiments: scripted
// scenarios, parameter sweeps and Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chaosfield/internal/config"
	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/experiment"
	"github.com/san-kum/chaosfield/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Zero fields keep the
// base configuration's value.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	Angles   *[2]float64        `yaml:"angles"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Params   map[string]float64 `yaml:"params"`
	Save     bool               `yaml:"save"`
}

// StepResult pairs a step with the configuration it ran and its result.
type StepResult struct {
	Step   ScenarioStep
	Config experiment.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

func (st ScenarioStep) config(base experiment.Config) (experiment.Config, error) {
	cfg := base
	if st.Preset != "" {
		p := config.GetPreset(st.Preset)
		if p == nil {
			return cfg, fmt.Errorf("unknown preset: %s", st.Preset)
		}
		cfg.Params = p.Params()
		cfg.Dt = p.Simulator.Dt
		if p.Simulator.ClickedAngles != nil {
			cfg.Angles = *p.Simulator.ClickedAngles
		}
	}
	if st.Angles != nil {
		cfg.Angles = *st.Angles
	}
	if st.Duration > 0 {
		cfg.Duration = st.Duration
	}
	if st.Dt > 0 {
		cfg.Dt = st.Dt
	}
	return cfg, cfg.Apply(st.Params)
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, base experiment.Config) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := dynamo.Logger()

	for i, step := range scenario.Steps {
		log.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := step.config(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue  float64
	FinalAngles [2]float64
	Metrics     map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, base experiment.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 steps, got %d", dynamo.ErrParameterBounds, sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	log := dynamo.Logger()

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base
		if err := cfg.Set(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			FinalAngles: result.Final().Pair.Angles(),
			Metrics:     result.Metrics,
		})

		log.Debug("sweep point", "index", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one perturbed trial.
type MonteCarloResult struct {
	TrialID     int
	Angles      [2]float64
	FinalAngles [2]float64
	// Flipped reports whether the outer link went over the top.
	Flipped    bool
	TimeToFlip float64
}

// RunMonteCarlo executes multiple trials with starting angles drawn
// uniformly within Perturbation of base.Angles.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, base experiment.Config) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, mc.NumTrials)

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := base
		for i := range cfg.Angles {
			cfg.Angles[i] = base.Angles[i] + (rng.Float64()-0.5)*2*mc.Perturbation
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		ttf := result.Metrics["time_to_flip"]
		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Angles:      cfg.Angles,
			FinalAngles: result.Final().Pair.Angles(),
			Flipped:     ttf >= 0,
			TimeToFlip:  ttf,
		})

		if (trial+1)%10 == 0 {
			dynamo.Logger().Info("monte carlo progress", "trials", trial+1, "of", mc.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts flipped trials and averages their flip times.
func MonteCarloStats(results []MonteCarloResult) (flipped, steady int, meanFlip float64) {
	sum := 0.0
	for _, r := range results {
		if r.Flipped {
			flipped++
			sum += r.TimeToFlip
		} else {
			steady++
		}
	}
	if flipped > 0 {
		meanFlip = sum / float64(flipped)
	}
	return
}
