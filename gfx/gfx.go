// Package gfx defines the graphics driver boundary used by the demos.
//
// The interface mirrors the subset of the OpenGL 3.3+ core API the cube pipeline needs.
// Calls must be issued in dependency order: a handle is only valid after the call that
// produced it, and all calls must happen on the thread that owns the driver.
//
// Two drivers implement it: gfx/gldriver (go-gl, needs cgo and a current context) and
// gfx/soft (pure Go rasterizer used for the ebiten window, headless runs and tests).
package gfx

// Shader is an opaque shader object handle. Zero is never a valid shader.
type Shader uint32

// Program is an opaque program object handle. Zero is never a valid program.
type Program uint32

// Buffer is an opaque buffer object handle. Zero means "unbind".
type Buffer uint32

// VertexArray is an opaque vertex array object handle. Zero means "unbind".
type VertexArray uint32

// Uniform is a resolved uniform location. NoUniform marks an unknown name.
type Uniform int32

const NoUniform Uniform = -1

// Valid reports whether the location refers to an active uniform.
func (u Uniform) Valid() bool { return u >= 0 }

type ShaderType uint8

const (
	VertexShader ShaderType = iota + 1
	FragmentShader
)

func (t ShaderType) String() string {
	switch t {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota + 1
	ElementArrayBuffer
)

// Usage is the buffer usage hint.
type Usage uint8

const (
	StaticDraw Usage = iota + 1
	DynamicDraw
)

type Capability uint8

const (
	DepthTest Capability = iota + 1
)

// ClearMask selects the buffers cleared by Driver.Clear.
type ClearMask uint8

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

type Primitive uint8

const (
	Triangles Primitive = iota + 1
)

// DataType describes vertex attribute components and index element types.
type DataType uint8

const (
	Float DataType = iota + 1
	UnsignedInt
)

// Size returns the size in bytes of one element.
func (t DataType) Size() int {
	switch t {
	case Float, UnsignedInt:
		return 4
	default:
		return 0
	}
}

// Driver is the ordered graphics API surface.
type Driver interface {
	CreateShader(typ ShaderType) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	BindAttribLocation(p Program, index uint32, name string)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	UseProgram(p Program)
	DeleteProgram(p Program)
	UniformLocation(p Program, name string) Uniform
	UniformMatrix4(u Uniform, transpose bool, m [16]float32)

	GenBuffer() Buffer
	BindBuffer(target BufferTarget, b Buffer)
	BufferData(target BufferTarget, data []byte, usage Usage)
	DeleteBuffer(b Buffer)

	GenVertexArray() VertexArray
	BindVertexArray(va VertexArray)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ DataType, normalized bool, stride int32, offset int)
	DeleteVertexArray(va VertexArray)

	Enable(c Capability)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int32)
	DrawElements(mode Primitive, count int32, typ DataType, offset int)
}
