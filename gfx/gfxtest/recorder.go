// Package gfxtest provides a gfx.Driver wrapper that records every call.
package gfxtest

import (
	"fmt"
	"strings"

	"spincube/gfx"
)

// Call is one recorded driver call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Recorder forwards to Driver and appends each call to Calls.
type Recorder struct {
	Driver gfx.Driver
	Calls  []Call
}

var _ gfx.Driver = (*Recorder)(nil)

func New(d gfx.Driver) *Recorder { return &Recorder{Driver: d} }

func (r *Recorder) rec(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

// Names returns the recorded call names in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Name
	}
	return out
}

// Count returns how many times name was called.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Find returns the recorded calls named name.
func (r *Recorder) Find(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of the first call named name, or -1.
func (r *Recorder) Index(name string) int {
	for i, c := range r.Calls {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

func (r *Recorder) CreateShader(typ gfx.ShaderType) gfx.Shader {
	s := r.Driver.CreateShader(typ)
	r.rec("CreateShader", typ)
	return s
}

func (r *Recorder) ShaderSource(s gfx.Shader, src string) {
	r.rec("ShaderSource", s, len(src))
	r.Driver.ShaderSource(s, src)
}

func (r *Recorder) CompileShader(s gfx.Shader) {
	r.rec("CompileShader", s)
	r.Driver.CompileShader(s)
}

func (r *Recorder) ShaderCompiled(s gfx.Shader) bool {
	r.rec("ShaderCompiled", s)
	return r.Driver.ShaderCompiled(s)
}

func (r *Recorder) ShaderInfoLog(s gfx.Shader) string {
	r.rec("ShaderInfoLog", s)
	return r.Driver.ShaderInfoLog(s)
}

func (r *Recorder) DeleteShader(s gfx.Shader) {
	r.rec("DeleteShader", s)
	r.Driver.DeleteShader(s)
}

func (r *Recorder) CreateProgram() gfx.Program {
	p := r.Driver.CreateProgram()
	r.rec("CreateProgram")
	return p
}

func (r *Recorder) AttachShader(p gfx.Program, s gfx.Shader) {
	r.rec("AttachShader", p, s)
	r.Driver.AttachShader(p, s)
}

func (r *Recorder) BindAttribLocation(p gfx.Program, index uint32, name string) {
	r.rec("BindAttribLocation", p, index, name)
	r.Driver.BindAttribLocation(p, index, name)
}

func (r *Recorder) LinkProgram(p gfx.Program) {
	r.rec("LinkProgram", p)
	r.Driver.LinkProgram(p)
}

func (r *Recorder) ProgramLinked(p gfx.Program) bool {
	r.rec("ProgramLinked", p)
	return r.Driver.ProgramLinked(p)
}

func (r *Recorder) ProgramInfoLog(p gfx.Program) string {
	r.rec("ProgramInfoLog", p)
	return r.Driver.ProgramInfoLog(p)
}

func (r *Recorder) UseProgram(p gfx.Program) {
	r.rec("UseProgram", p)
	r.Driver.UseProgram(p)
}

func (r *Recorder) DeleteProgram(p gfx.Program) {
	r.rec("DeleteProgram", p)
	r.Driver.DeleteProgram(p)
}

func (r *Recorder) UniformLocation(p gfx.Program, name string) gfx.Uniform {
	u := r.Driver.UniformLocation(p, name)
	r.rec("UniformLocation", p, name)
	return u
}

func (r *Recorder) UniformMatrix4(u gfx.Uniform, transpose bool, m [16]float32) {
	r.rec("UniformMatrix4", u, transpose, m)
	r.Driver.UniformMatrix4(u, transpose, m)
}

func (r *Recorder) GenBuffer() gfx.Buffer {
	b := r.Driver.GenBuffer()
	r.rec("GenBuffer")
	return b
}

func (r *Recorder) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	r.rec("BindBuffer", target, b)
	r.Driver.BindBuffer(target, b)
}

func (r *Recorder) BufferData(target gfx.BufferTarget, data []byte, usage gfx.Usage) {
	r.rec("BufferData", target, len(data), usage)
	r.Driver.BufferData(target, data, usage)
}

func (r *Recorder) DeleteBuffer(b gfx.Buffer) {
	r.rec("DeleteBuffer", b)
	r.Driver.DeleteBuffer(b)
}

func (r *Recorder) GenVertexArray() gfx.VertexArray {
	va := r.Driver.GenVertexArray()
	r.rec("GenVertexArray")
	return va
}

func (r *Recorder) BindVertexArray(va gfx.VertexArray) {
	r.rec("BindVertexArray", va)
	r.Driver.BindVertexArray(va)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.rec("EnableVertexAttribArray", index)
	r.Driver.EnableVertexAttribArray(index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32, typ gfx.DataType, normalized bool, stride int32, offset int) {
	r.rec("VertexAttribPointer", index, size, typ, normalized, stride, offset)
	r.Driver.VertexAttribPointer(index, size, typ, normalized, stride, offset)
}

func (r *Recorder) DeleteVertexArray(va gfx.VertexArray) {
	r.rec("DeleteVertexArray", va)
	r.Driver.DeleteVertexArray(va)
}

func (r *Recorder) Enable(c gfx.Capability) {
	r.rec("Enable", c)
	r.Driver.Enable(c)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.rec("ClearColor", red, green, blue, alpha)
	r.Driver.ClearColor(red, green, blue, alpha)
}

func (r *Recorder) Clear(mask gfx.ClearMask) {
	r.rec("Clear", mask)
	r.Driver.Clear(mask)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.rec("Viewport", x, y, width, height)
	r.Driver.Viewport(x, y, width, height)
}

func (r *Recorder) DrawElements(mode gfx.Primitive, count int32, typ gfx.DataType, offset int) {
	r.rec("DrawElements", mode, count, typ, offset)
	r.Driver.DrawElements(mode, count, typ, offset)
}
