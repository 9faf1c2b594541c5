package compute

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

type CPUBackend struct {
	workers int
}

// NewCPUBackend renders with up to workers goroutines.
// Zero or less means one per CPU.
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) Render(ctx context.Context, job Job) (*image.RGBA, error) {
	if err := job.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	v := job.View
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))

	if c.workers == 1 {
		if err := c.renderSerial(ctx, job, img); err != nil {
			return nil, err
		}
	} else if err := c.renderParallel(ctx, job, img); err != nil {
		return nil, err
	}

	dynamo.Logger().Debug("field rendered",
		"backend", c.Name(), "workers", c.workers,
		"width", v.Width, "height", v.Height, "elapsed", time.Since(start))
	return img, nil
}

func (c *CPUBackend) renderSerial(ctx context.Context, job Job, img *image.RGBA) error {
	for y := 0; y < job.View.Height; y++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
		}
		job.Evaluator.RenderRows(img, job.View, y, y+1)
	}
	return nil
}

// renderParallel hands out one row per task. Rows write disjoint parts of
// img, so no locking is needed.
func (c *CPUBackend) renderParallel(ctx context.Context, job Job, img *image.RGBA) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for y := 0; y < job.View.Height; y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			job.Evaluator.RenderRows(img, job.View, y, y+1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}
	return nil
}
