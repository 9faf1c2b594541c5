// Package optim searches parameter grids for the starting conditions that
// push a run metric furthest.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaosfield/internal/experiment"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Maximize selects the largest metric value instead of the smallest.
	Maximize bool
	Workers  int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs one experiment per grid point and returns the parameters
// with the best value of metricName. Points whose experiment cannot be
// built or run are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid has %d names but %d ranges", len(g.paramNames), len(g.ranges))
	}

	points := make([]map[string]float64, 0, g.Size())
	g.collect(0, make(map[string]float64), &points)

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var (
		mu         sync.Mutex
		bestParams map[string]float64
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, params := range points {
		eg.Go(func() error {
			exp, err := buildExperiment(params)
			if err != nil {
				return nil
			}
			result, err := exp.Run(ctx)
			if err != nil {
				return ctx.Err()
			}
			val, ok := result.Metrics[metricName]
			if !ok {
				return fmt.Errorf("unknown metric: %s", metricName)
			}

			mu.Lock()
			defer mu.Unlock()
			if g.better(val, best) {
				best, bestParams = val, params
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no grid point produced a result")
	}
	return bestParams, best, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if math.IsNaN(val) {
		return false
	}
	if g.Maximize {
		return val > best
	}
	return val < best
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.collect(depth+1, current, out)
	}
	delete(current, paramName)
}
