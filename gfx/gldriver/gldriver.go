//go:build cgo

// Package gldriver implements gfx.Driver on top of OpenGL 4.1 core through go-gl.
//
// A GL context must be current on the calling thread before New is called, and every
// method must be called from that same thread.
package gldriver

import (
	"fmt"
	"strings"

	"spincube/gfx"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type driver struct{}

// New loads the GL function pointers for the current context.
func New() (gfx.Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	return driver{}, nil
}

// Version returns the GL_VERSION string of the current context.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (driver) CreateShader(typ gfx.ShaderType) gfx.Shader {
	return gfx.Shader(gl.CreateShader(shaderType(typ)))
}

func (driver) ShaderSource(s gfx.Shader, src string) {
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (driver) CompileShader(s gfx.Shader) { gl.CompileShader(uint32(s)) }

func (driver) ShaderCompiled(s gfx.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (driver) ShaderInfoLog(s gfx.Shader) string {
	var n int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(uint32(s), n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (driver) DeleteShader(s gfx.Shader) { gl.DeleteShader(uint32(s)) }

func (driver) CreateProgram() gfx.Program { return gfx.Program(gl.CreateProgram()) }

func (driver) AttachShader(p gfx.Program, s gfx.Shader) { gl.AttachShader(uint32(p), uint32(s)) }

func (driver) BindAttribLocation(p gfx.Program, index uint32, name string) {
	gl.BindAttribLocation(uint32(p), index, gl.Str(name+"\x00"))
}

func (driver) LinkProgram(p gfx.Program) { gl.LinkProgram(uint32(p)) }

func (driver) ProgramLinked(p gfx.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (driver) ProgramInfoLog(p gfx.Program) string {
	var n int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(uint32(p), n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (driver) UseProgram(p gfx.Program)    { gl.UseProgram(uint32(p)) }
func (driver) DeleteProgram(p gfx.Program) { gl.DeleteProgram(uint32(p)) }

func (driver) UniformLocation(p gfx.Program, name string) gfx.Uniform {
	return gfx.Uniform(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (driver) UniformMatrix4(u gfx.Uniform, transpose bool, m [16]float32) {
	gl.UniformMatrix4fv(int32(u), 1, transpose, &m[0])
}

func (driver) GenBuffer() gfx.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gfx.Buffer(b)
}

func (driver) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	gl.BindBuffer(bufferTarget(target), uint32(b))
}

func (driver) BufferData(target gfx.BufferTarget, data []byte, usage gfx.Usage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), len(data), gl.Ptr(data), bufferUsage(usage))
}

func (driver) DeleteBuffer(b gfx.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (driver) GenVertexArray() gfx.VertexArray {
	var va uint32
	gl.GenVertexArrays(1, &va)
	return gfx.VertexArray(va)
}

func (driver) BindVertexArray(va gfx.VertexArray) { gl.BindVertexArray(uint32(va)) }

func (driver) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (driver) VertexAttribPointer(index uint32, size int32, typ gfx.DataType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, dataType(typ), normalized, stride, gl.PtrOffset(offset))
}

func (driver) DeleteVertexArray(va gfx.VertexArray) {
	id := uint32(va)
	gl.DeleteVertexArrays(1, &id)
}

func (driver) Enable(c gfx.Capability) {
	if c == gfx.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	}
}

func (driver) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (driver) Clear(mask gfx.ClearMask) {
	var bits uint32
	if mask&gfx.ColorBufferBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gfx.DepthBufferBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (driver) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (driver) DrawElements(mode gfx.Primitive, count int32, typ gfx.DataType, offset int) {
	gl.DrawElements(primitive(mode), count, dataType(typ), gl.PtrOffset(offset))
}

func shaderType(t gfx.ShaderType) uint32 {
	if t == gfx.FragmentShader {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func bufferTarget(t gfx.BufferTarget) uint32 {
	if t == gfx.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u gfx.Usage) uint32 {
	if u == gfx.DynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func dataType(t gfx.DataType) uint32 {
	if t == gfx.UnsignedInt {
		return gl.UNSIGNED_INT
	}
	return gl.FLOAT
}

func primitive(gfx.Primitive) uint32 { return gl.TRIANGLES }
