//go:build headless

package compute

import (
	"context"
	"image"
)

type OpenGLBackend struct{}

var sharedGL = &OpenGLBackend{}

func SharedOpenGL() *OpenGLBackend { return sharedGL }

func (c *OpenGLBackend) Name() string    { return "opengl (not available)" }
func (c *OpenGLBackend) Available() bool { return false }
func (c *OpenGLBackend) Init() error     { return ErrUnavailable }
func (c *OpenGLBackend) Cleanup()        {}

func (c *OpenGLBackend) Render(context.Context, Job) (*image.RGBA, error) {
	return nil, ErrUnavailable
}
