// Package soft implements gfx.Driver as a single-threaded software rasterizer.
//
// Object semantics follow OpenGL: the vertex array owns the element buffer binding and
// the attribute layout, VertexAttribPointer captures the current array buffer, and
// uniform uploads target the program in use. GLSL is not executed; see glsl.go for
// the subset that is emulated.
//
// Errors never panic. The first error since the last Err call is kept, like glGetError.
package soft

import (
	"errors"
	"fmt"
	"log/slog"

	"spincube/gfx"
	"spincube/internal/logging"
)

var (
	ErrInvalidEnum      = errors.New("invalid enum")
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidOperation = errors.New("invalid operation")
)

const maxAttribs = 16

type shader struct {
	typ      gfx.ShaderType
	src      string
	compiled bool
	log      string
	info     *shaderInfo
}

type program struct {
	shaders  []gfx.Shader
	bindings map[string]uint32

	linked   bool
	log      string
	uniforms []string
	values   [][16]float32

	// Emulated vertex stage.
	posLoc   uint32
	posMats  []gfx.Uniform
	posW     float32
	hasColor bool
	color    Color
}

type attrib struct {
	enabled bool
	set     bool
	buffer  gfx.Buffer
	size    int32
	typ     gfx.DataType
	stride  int32
	offset  int
}

type vertexArray struct {
	attribs  [maxAttribs]attrib
	elements gfx.Buffer
}

type buffer struct {
	data  []byte
	usage gfx.Usage
}

// Light is a minimal ambient plus directional light, evaluated in eye space.
type Light struct {
	Ambient   float32 // 0..1
	Dir       [3]float32
	DirAmount float32 // 0..1
}

var DefaultLight = Light{
	Ambient:   0.35,
	Dir:       [3]float32{-0.4, -0.7, -1},
	DirAmount: 0.65,
}

// Stats counts work done since the driver was created or ResetStats was called.
type Stats struct {
	Clears    int
	DrawCalls int
	Indices   int
	Triangles int
	Fragments int
}

// Driver is the software gfx.Driver.
type Driver struct {
	target Target
	log    *slog.Logger
	Light  Light

	nextObject uint32 // shaders and programs share one namespace
	nextBuffer uint32
	nextVAO    uint32

	shaders  map[gfx.Shader]*shader
	programs map[gfx.Program]*program
	buffers  map[gfx.Buffer]*buffer
	vaos     map[gfx.VertexArray]*vertexArray

	arrayBuffer gfx.Buffer
	vao         gfx.VertexArray
	current     gfx.Program

	depthTest  bool
	clearColor Color
	viewport   [4]int32
	depth      []float32

	stats Stats
	err   error
}

var _ gfx.Driver = (*Driver)(nil)

// New creates a driver that draws into t. The viewport starts at the target size.
func New(t Target, log *slog.Logger) *Driver {
	w, h := 0, 0
	if t != nil {
		w, h = t.Size()
	}
	return &Driver{
		target:   t,
		log:      logging.OrDiscard(log),
		Light:    DefaultLight,
		shaders:  make(map[gfx.Shader]*shader),
		programs: make(map[gfx.Program]*program),
		buffers:  make(map[gfx.Buffer]*buffer),
		vaos:     map[gfx.VertexArray]*vertexArray{0: {}},
		viewport: [4]int32{0, 0, int32(w), int32(h)},
	}
}

// Err returns and clears the first error recorded since the previous call.
func (d *Driver) Err() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Driver) Stats() Stats { return d.stats }
func (d *Driver) ResetStats()  { d.stats = Stats{} }

// Target returns the pixel target the driver renders into.
func (d *Driver) Target() Target { return d.target }

func (d *Driver) fail(op string, kind error, format string, args ...any) {
	err := fmt.Errorf("%s: %w: %s", op, kind, fmt.Sprintf(format, args...))
	d.log.Debug("soft driver error", "err", err)
	if d.err == nil {
		d.err = err
	}
}

func (d *Driver) CreateShader(typ gfx.ShaderType) gfx.Shader {
	if typ != gfx.VertexShader && typ != gfx.FragmentShader {
		d.fail("CreateShader", ErrInvalidEnum, "shader type %d", typ)
		return 0
	}
	d.nextObject++
	s := gfx.Shader(d.nextObject)
	d.shaders[s] = &shader{typ: typ}
	return s
}

func (d *Driver) ShaderSource(s gfx.Shader, src string) {
	sh, ok := d.shaders[s]
	if !ok {
		d.fail("ShaderSource", ErrInvalidValue, "no shader %d", s)
		return
	}
	sh.src = src
}

func (d *Driver) CompileShader(s gfx.Shader) {
	sh, ok := d.shaders[s]
	if !ok {
		d.fail("CompileShader", ErrInvalidValue, "no shader %d", s)
		return
	}
	info, diags := parseGLSL(sh.typ, sh.src)
	sh.info = info
	sh.compiled = len(diags) == 0
	sh.log = formatDiags(diags)
}

func (d *Driver) ShaderCompiled(s gfx.Shader) bool {
	sh, ok := d.shaders[s]
	return ok && sh.compiled
}

func (d *Driver) ShaderInfoLog(s gfx.Shader) string {
	if sh, ok := d.shaders[s]; ok {
		return sh.log
	}
	return ""
}

func (d *Driver) DeleteShader(s gfx.Shader) {
	if s == 0 {
		return
	}
	delete(d.shaders, s)
}

func (d *Driver) CreateProgram() gfx.Program {
	d.nextObject++
	p := gfx.Program(d.nextObject)
	d.programs[p] = &program{bindings: make(map[string]uint32)}
	return p
}

func (d *Driver) AttachShader(p gfx.Program, s gfx.Shader) {
	prog, ok := d.programs[p]
	if !ok {
		d.fail("AttachShader", ErrInvalidValue, "no program %d", p)
		return
	}
	if _, ok := d.shaders[s]; !ok {
		d.fail("AttachShader", ErrInvalidValue, "no shader %d", s)
		return
	}
	for _, have := range prog.shaders {
		if have == s {
			d.fail("AttachShader", ErrInvalidOperation, "shader %d already attached", s)
			return
		}
	}
	prog.shaders = append(prog.shaders, s)
}

func (d *Driver) BindAttribLocation(p gfx.Program, index uint32, name string) {
	prog, ok := d.programs[p]
	if !ok {
		d.fail("BindAttribLocation", ErrInvalidValue, "no program %d", p)
		return
	}
	if index >= maxAttribs {
		d.fail("BindAttribLocation", ErrInvalidValue, "index %d", index)
		return
	}
	prog.bindings[name] = index
}

func (d *Driver) LinkProgram(p gfx.Program) {
	prog, ok := d.programs[p]
	if !ok {
		d.fail("LinkProgram", ErrInvalidValue, "no program %d", p)
		return
	}
	prog.linked = false
	prog.uniforms = nil
	prog.values = nil

	var vs, fs *shader
	var errs []string
	for _, s := range prog.shaders {
		sh, ok := d.shaders[s]
		if !ok {
			errs = append(errs, fmt.Sprintf("shader %d was deleted before linking", s))
			continue
		}
		if !sh.compiled {
			errs = append(errs, fmt.Sprintf("%s shader %d is not compiled", sh.typ, s))
			continue
		}
		switch sh.typ {
		case gfx.VertexShader:
			vs = sh
		case gfx.FragmentShader:
			fs = sh
		}
	}
	if vs == nil {
		errs = append(errs, "no compiled vertex shader attached")
	} else if !vs.info.hasMain {
		errs = append(errs, "vertex shader lacks `main'")
	}
	if fs == nil {
		errs = append(errs, "no compiled fragment shader attached")
	} else if !fs.info.hasMain {
		errs = append(errs, "fragment shader lacks `main'")
	}
	if len(errs) > 0 {
		prog.log = linkLog(errs)
		return
	}

	for _, si := range []*shaderInfo{vs.info, fs.info} {
		for _, dcl := range si.decls {
			if dcl.kind != declUniform || prog.uniform(dcl.name).Valid() {
				continue
			}
			prog.uniforms = append(prog.uniforms, dcl.name)
		}
	}
	prog.values = make([][16]float32, len(prog.uniforms))

	if err := prog.linkVertexStage(vs.info); err != "" {
		prog.log = linkLog([]string{err})
		prog.uniforms, prog.values = nil, nil
		return
	}
	if fs.info.hasColor {
		c := fs.info.color
		prog.color = ColorF(c[0], c[1], c[2], c[3])
		prog.hasColor = true
	}
	prog.linked = true
	prog.log = ""
}

func linkLog(errs []string) string {
	out := ""
	for _, e := range errs {
		out += "error: " + e + "\n"
	}
	return out
}

func (p *program) uniform(name string) gfx.Uniform {
	for i, n := range p.uniforms {
		if n == name {
			return gfx.Uniform(i)
		}
	}
	return gfx.NoUniform
}

func (p *program) linkVertexStage(si *shaderInfo) string {
	p.posMats = p.posMats[:0]
	p.posW = 1
	if si.positionAttr == "" {
		return "vertex shader never writes gl_Position"
	}
	for _, name := range si.position {
		dcl, ok := si.find(declUniform, name)
		if !ok || dcl.typ != "mat4" {
			return fmt.Sprintf("gl_Position uses %q, which is not a mat4 uniform", name)
		}
		p.posMats = append(p.posMats, p.uniform(name))
	}
	dcl, ok := si.find(declIn, si.positionAttr)
	if !ok {
		return fmt.Sprintf("gl_Position uses %q, which is not a vertex input", si.positionAttr)
	}
	p.posW = si.positionW

	switch loc, bound := p.bindings[dcl.name]; {
	case bound:
		p.posLoc = loc
	case dcl.location >= 0:
		p.posLoc = uint32(dcl.location)
	default:
		// Unbound inputs get the first free location in declaration order.
		next := uint32(0)
		for _, in := range si.decls {
			if in.kind != declIn {
				continue
			}
			if in.name == dcl.name {
				break
			}
			next++
		}
		p.posLoc = next
	}
	return ""
}

func (d *Driver) ProgramLinked(p gfx.Program) bool {
	prog, ok := d.programs[p]
	return ok && prog.linked
}

func (d *Driver) ProgramInfoLog(p gfx.Program) string {
	if prog, ok := d.programs[p]; ok {
		return prog.log
	}
	return ""
}

func (d *Driver) UseProgram(p gfx.Program) {
	if p == 0 {
		d.current = 0
		return
	}
	prog, ok := d.programs[p]
	if !ok {
		d.fail("UseProgram", ErrInvalidValue, "no program %d", p)
		return
	}
	if !prog.linked {
		d.fail("UseProgram", ErrInvalidOperation, "program %d is not linked", p)
		return
	}
	d.current = p
}

func (d *Driver) DeleteProgram(p gfx.Program) {
	if p == 0 {
		return
	}
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Driver) UniformLocation(p gfx.Program, name string) gfx.Uniform {
	prog, ok := d.programs[p]
	if !ok {
		d.fail("UniformLocation", ErrInvalidValue, "no program %d", p)
		return gfx.NoUniform
	}
	if !prog.linked {
		d.fail("UniformLocation", ErrInvalidOperation, "program %d is not linked", p)
		return gfx.NoUniform
	}
	return prog.uniform(name)
}

func (d *Driver) UniformMatrix4(u gfx.Uniform, transpose bool, m [16]float32) {
	if u == gfx.NoUniform {
		// Silently ignored, as in GL.
		return
	}
	prog, ok := d.programs[d.current]
	if !ok {
		d.fail("UniformMatrix4", ErrInvalidOperation, "no program in use")
		return
	}
	if int(u) >= len(prog.values) || u < 0 {
		d.fail("UniformMatrix4", ErrInvalidOperation, "location %d", u)
		return
	}
	if transpose {
		var t [16]float32
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				t[c*4+r] = m[r*4+c]
			}
		}
		m = t
	}
	prog.values[u] = m
}

// UniformValue returns the current value of a mat4 uniform of p.
func (d *Driver) UniformValue(p gfx.Program, u gfx.Uniform) ([16]float32, bool) {
	prog, ok := d.programs[p]
	if !ok || u < 0 || int(u) >= len(prog.values) {
		return [16]float32{}, false
	}
	return prog.values[u], true
}

func (d *Driver) GenBuffer() gfx.Buffer {
	d.nextBuffer++
	b := gfx.Buffer(d.nextBuffer)
	d.buffers[b] = &buffer{}
	return b
}

func (d *Driver) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	if b != 0 {
		if _, ok := d.buffers[b]; !ok {
			d.fail("BindBuffer", ErrInvalidValue, "no buffer %d", b)
			return
		}
	}
	switch target {
	case gfx.ArrayBuffer:
		d.arrayBuffer = b
	case gfx.ElementArrayBuffer:
		d.vaos[d.vao].elements = b
	default:
		d.fail("BindBuffer", ErrInvalidEnum, "target %d", target)
	}
}

func (d *Driver) bound(target gfx.BufferTarget) gfx.Buffer {
	if target == gfx.ElementArrayBuffer {
		return d.vaos[d.vao].elements
	}
	return d.arrayBuffer
}

func (d *Driver) BufferData(target gfx.BufferTarget, data []byte, usage gfx.Usage) {
	if target != gfx.ArrayBuffer && target != gfx.ElementArrayBuffer {
		d.fail("BufferData", ErrInvalidEnum, "target %d", target)
		return
	}
	b := d.bound(target)
	if b == 0 {
		d.fail("BufferData", ErrInvalidOperation, "no buffer bound to target %d", target)
		return
	}
	buf := d.buffers[b]
	buf.data = append(buf.data[:0], data...)
	buf.usage = usage
}

// BufferContents returns a copy of the data store of b.
func (d *Driver) BufferContents(b gfx.Buffer) ([]byte, gfx.Usage, bool) {
	buf, ok := d.buffers[b]
	if !ok {
		return nil, 0, false
	}
	return append([]byte(nil), buf.data...), buf.usage, true
}

func (d *Driver) DeleteBuffer(b gfx.Buffer) {
	if b == 0 {
		return
	}
	delete(d.buffers, b)
	if d.arrayBuffer == b {
		d.arrayBuffer = 0
	}
	for _, va := range d.vaos {
		if va.elements == b {
			va.elements = 0
		}
	}
}

func (d *Driver) GenVertexArray() gfx.VertexArray {
	d.nextVAO++
	va := gfx.VertexArray(d.nextVAO)
	d.vaos[va] = &vertexArray{}
	return va
}

func (d *Driver) BindVertexArray(va gfx.VertexArray) {
	if _, ok := d.vaos[va]; !ok {
		d.fail("BindVertexArray", ErrInvalidOperation, "no vertex array %d", va)
		return
	}
	d.vao = va
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	if index >= maxAttribs {
		d.fail("EnableVertexAttribArray", ErrInvalidValue, "index %d", index)
		return
	}
	d.vaos[d.vao].attribs[index].enabled = true
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, typ gfx.DataType, normalized bool, stride int32, offset int) {
	switch {
	case index >= maxAttribs:
		d.fail("VertexAttribPointer", ErrInvalidValue, "index %d", index)
		return
	case size < 1 || size > 4 || stride < 0 || offset < 0:
		d.fail("VertexAttribPointer", ErrInvalidValue, "size %d stride %d offset %d", size, stride, offset)
		return
	case typ != gfx.Float:
		d.fail("VertexAttribPointer", ErrInvalidEnum, "type %d", typ)
		return
	case d.arrayBuffer == 0:
		d.fail("VertexAttribPointer", ErrInvalidOperation, "no array buffer bound")
		return
	}
	a := &d.vaos[d.vao].attribs[index]
	// normalized has no effect on float components.
	a.set = true
	a.buffer = d.arrayBuffer
	a.size = size
	a.typ = typ
	a.stride = stride
	a.offset = offset
}

func (d *Driver) DeleteVertexArray(va gfx.VertexArray) {
	if va == 0 {
		return
	}
	delete(d.vaos, va)
	if d.vao == va {
		d.vao = 0
	}
}

func (d *Driver) Enable(c gfx.Capability) {
	if c != gfx.DepthTest {
		d.fail("Enable", ErrInvalidEnum, "capability %d", c)
		return
	}
	d.depthTest = true
}

func (d *Driver) ClearColor(r, g, b, a float32) { d.clearColor = ColorF(r, g, b, a) }

func (d *Driver) Clear(mask gfx.ClearMask) {
	d.stats.Clears++
	if mask&gfx.ColorBufferBit != 0 && d.target != nil {
		d.target.Clear(d.clearColor)
	}
	if mask&gfx.DepthBufferBit != 0 {
		d.ensureDepth()
		for i := range d.depth {
			d.depth[i] = 1
		}
	}
}

func (d *Driver) Viewport(x, y, width, height int32) {
	if width < 0 || height < 0 {
		d.fail("Viewport", ErrInvalidValue, "size %dx%d", width, height)
		return
	}
	d.viewport = [4]int32{x, y, width, height}
}

// ViewportRect returns the current viewport rectangle as x, y, width, height.
func (d *Driver) ViewportRect() [4]int32 { return d.viewport }

func (d *Driver) ensureDepth() {
	if d.target == nil {
		d.depth = nil
		return
	}
	w, h := d.target.Size()
	if w <= 0 || h <= 0 {
		d.depth = nil
		return
	}
	if cap(d.depth) < w*h {
		d.depth = make([]float32, w*h)
		for i := range d.depth {
			d.depth[i] = 1
		}
		return
	}
	d.depth = d.depth[:w*h]
}
