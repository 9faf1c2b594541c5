//go:build !headless

package compute

import (
	"context"
	_ "embed"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/san-kum/chaosfield/internal/dynamo"
)

//go:embed shaders/field.comp
var fieldShader string

// OpenGLBackend renders on the GPU with a compute shader. Init and Render
// must be called on the goroutine that owns the current GL context.
type OpenGLBackend struct {
	Program     uint32
	SSBO        uint32
	capacity    int
	Initialized bool
}

var sharedGL = &OpenGLBackend{}

// SharedOpenGL returns the process-wide OpenGL backend.
func SharedOpenGL() *OpenGLBackend { return sharedGL }

func (c *OpenGLBackend) Name() string    { return "opengl" }
func (c *OpenGLBackend) Available() bool { return c.Initialized }

// Init loads GL function pointers and compiles the field shader.
func (c *OpenGLBackend) Init() error {
	if c.Initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to init opengl: %w", err)
	}

	program, err := createComputeProgram(fieldShader)
	if err != nil {
		return err
	}
	c.Program = program
	gl.GenBuffers(1, &c.SSBO)
	c.Initialized = true

	var maxGroups [3]int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &maxGroups[0])
	dynamo.Logger().Info("opengl compute initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)), "max_groups", maxGroups[0])
	return nil
}

func (c *OpenGLBackend) Render(ctx context.Context, job Job) (*image.RGBA, error) {
	if !c.Initialized {
		return nil, ErrUnavailable
	}
	if err := job.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}

	start := time.Now()
	v := job.View
	s := job.Evaluator.Settings()
	n := v.Width * v.Height * 4

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, c.SSBO)
	if n > c.capacity {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, n, nil, gl.DYNAMIC_READ)
		c.capacity = n
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, c.SSBO)

	gl.UseProgram(c.Program)
	gl.Uniform2i(c.uniform("resolution"), int32(v.Width), int32(v.Height))
	gl.Uniform2f(c.uniform("center"), float32(v.Center[0]), float32(v.Center[1]))
	gl.Uniform2f(c.uniform("size"), float32(v.Size[0]), float32(v.Size[1]))
	gl.Uniform1f(c.uniform("gravity"), float32(s.Params.Gravity))
	gl.Uniform2f(c.uniform("lengths"), float32(s.Params.Lengths[0]), float32(s.Params.Lengths[1]))
	gl.Uniform2f(c.uniform("masses"), float32(s.Params.Masses[0]), float32(s.Params.Masses[1]))
	gl.Uniform1f(c.uniform("dt"), float32(s.Dt))
	gl.Uniform1f(c.uniform("epsilon"), float32(s.Epsilon))
	gl.Uniform1i(c.uniform("stepCount"), int32(s.Params.StepCount))

	gl.DispatchCompute(uint32((v.Width+15)/16), uint32((v.Height+15)/16), 1)
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)

	// packUnorm4x8 stores red in the lowest byte, which is RGBA byte order
	// on little-endian hosts.
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n, gl.Ptr(&img.Pix[0]))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("opengl render failed: error 0x%x", code)
	}

	dynamo.Logger().Debug("field rendered", "backend", c.Name(),
		"width", v.Width, "height", v.Height, "elapsed", time.Since(start))
	return img, nil
}

func (c *OpenGLBackend) uniform(name string) int32 {
	return gl.GetUniformLocation(c.Program, gl.Str(name+"\x00"))
}

func (c *OpenGLBackend) Cleanup() {
	if !c.Initialized {
		return
	}
	gl.DeleteBuffers(1, &c.SSBO)
	gl.DeleteProgram(c.Program)
	c.capacity = 0
	c.Initialized = false
}

func createComputeProgram(source string) (uint32, error) {
	content := source + "\x00"

	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(content)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to compile compute shader: %v", log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return 0, fmt.Errorf("failed to link program")
	}

	gl.DeleteShader(shader)
	return program, nil
}
