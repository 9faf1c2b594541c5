package compute

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/field"
)

// ErrUnavailable is returned by a backend that cannot render right now.
var ErrUnavailable = errors.New("compute: backend unavailable")

// Job is one field render request.
type Job struct {
	Evaluator *field.Evaluator
	View      field.Viewport
}

func (j Job) validate() error {
	if j.Evaluator == nil {
		return fmt.Errorf("compute: job has no evaluator")
	}
	return j.View.Validate()
}

type Backend interface {
	Name() string
	Available() bool
	Render(ctx context.Context, job Job) (*image.RGBA, error)
	Cleanup()
}

var (
	mu            sync.Mutex
	activeBackend Backend
)

func init() {
	activeBackend = NewCPUBackend(0)
}

func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if activeBackend != nil && activeBackend != b {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	mu.Lock()
	defer mu.Unlock()
	return activeBackend
}

// Select returns the backend for name: "cpu", "opengl" or "auto".
// "opengl" and "auto" fall back to the CPU when the GPU path is not
// initialized.
func Select(name string, workers int) (Backend, error) {
	cpu := NewCPUBackend(workers)
	switch name {
	case "", "cpu":
		return cpu, nil
	case "opengl", "auto":
		gl := SharedOpenGL()
		if gl.Available() {
			return &Fallback{Primary: gl, Secondary: cpu}, nil
		}
		dynamo.Logger().Warn("opengl backend not initialized, using cpu", "requested", name)
		return cpu, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
}

// Fallback renders with Primary and retries with Secondary when Primary fails.
type Fallback struct {
	Primary   Backend
	Secondary Backend
}

func (f *Fallback) Name() string    { return f.Primary.Name() + "+" + f.Secondary.Name() }
func (f *Fallback) Available() bool { return f.Primary.Available() || f.Secondary.Available() }

func (f *Fallback) Render(ctx context.Context, job Job) (*image.RGBA, error) {
	if f.Primary.Available() {
		img, err := f.Primary.Render(ctx, job)
		if err == nil {
			return img, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		dynamo.Logger().Warn("render failed, falling back", "backend", f.Primary.Name(), "err", err)
	}
	return f.Secondary.Render(ctx, job)
}

func (f *Fallback) Cleanup() {
	f.Primary.Cleanup()
	f.Secondary.Cleanup()
}
