package sim

import (
	"context"
	"math"
	"sync"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

// Ensemble runs several copies of a starting pair, each nudged by
// Spread·i radians in both angles, to show how quickly nearby
// trajectories separate.
type Ensemble struct {
	base    dynamo.Pair
	gravity float64
	dt      float64
	numRuns int
	spread  float64
}

func NewEnsemble(base dynamo.Pair, gravity, dt float64, numRuns int, spread float64) *Ensemble {
	return &Ensemble{base: base, gravity: gravity, dt: dt, numRuns: numRuns, spread: spread}
}

func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			pair := e.base
			off := e.spread * float64(idx)
			pair[0].Angle += off
			pair[1].Angle += off

			s, err := New(pair, e.gravity, e.dt)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Spread returns the largest angle distance of any member's final
// state from the first member's final state.
func Spread(results []*Result) float64 {
	if len(results) == 0 {
		return 0
	}
	ref := results[0].Final().Pair.Angles()
	worst := 0.0
	for _, r := range results[1:] {
		a := r.Final().Pair.Angles()
		d := math.Abs(a[0]-ref[0]) + math.Abs(a[1]-ref[1])
		if d > worst {
			worst = d
		}
	}
	return worst
}
