package soft

import (
	"testing"

	"spincube/gfx"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertex = `#version 330 core

uniform mat4 projection_matrix;
uniform mat4 modelview_matrix;

in vec3 in_position;

void main(void)
{
	gl_Position = projection_matrix * modelview_matrix * vec4(in_position, 1.0);
}
`

const testFragment = `#version 330 core

out vec4 out_frag_color;

void main(void)
{
	out_frag_color = vec4(1.0, 0.0, 0.0, 1.0);
}
`

func compile(t *testing.T, d *Driver, typ gfx.ShaderType, src string) gfx.Shader {
	t.Helper()
	s := d.CreateShader(typ)
	d.ShaderSource(s, src)
	d.CompileShader(s)
	return s
}

func link(t *testing.T, d *Driver, vs, fs string) gfx.Program {
	t.Helper()
	p := d.CreateProgram()
	d.AttachShader(p, compile(t, d, gfx.VertexShader, vs))
	d.AttachShader(p, compile(t, d, gfx.FragmentShader, fs))
	d.BindAttribLocation(p, 0, "in_position")
	d.LinkProgram(p)
	return p
}

func TestCompileCollectsDeclarations(t *testing.T) {
	d := New(nil, nil)
	s := compile(t, d, gfx.VertexShader, testVertex)
	require.True(t, d.ShaderCompiled(s), d.ShaderInfoLog(s))
	assert.Empty(t, d.ShaderInfoLog(s))

	si := d.shaders[s].info
	assert.True(t, si.hasMain)
	_, ok := si.find(declIn, "in_position")
	assert.True(t, ok)
	_, ok = si.find(declUniform, "modelview_matrix")
	assert.True(t, ok)
	assert.Equal(t, []string{"projection_matrix", "modelview_matrix"}, si.position)
	assert.Equal(t, "in_position", si.positionAttr)
	assert.Equal(t, float32(1), si.positionW)
}

func TestCompileDiagnostics(t *testing.T) {
	d := New(nil, nil)
	for name, src := range map[string]string{
		"empty":          "",
		"unclosed body":  "void main() {\n gl_Position = vec4(p, 1.0);\n",
		"extra brace":    "void main() {\n}\n}\n",
		"missing semi":   "void main() {\n gl_Position = vec4(p, 1.0)\n}\n",
		"bad decl":       "uniform mat4;\nvoid main() {}\n",
		"bad expression": "in vec3 p;\nvoid main() {\n gl_Position = 2 * vec4(p, 1.0);\n}\n",
	} {
		s := compile(t, d, gfx.VertexShader, src)
		assert.False(t, d.ShaderCompiled(s), name)
		assert.Contains(t, d.ShaderInfoLog(s), "error:", name)
	}

	s := compile(t, d, gfx.VertexShader, "void main() {\n}\n}\n")
	assert.Contains(t, d.ShaderInfoLog(s), "0:3(1): error: syntax error, unexpected '}'")
}

func TestLinkResolvesUniforms(t *testing.T) {
	d := New(nil, nil)
	p := link(t, d, testVertex, testFragment)
	require.True(t, d.ProgramLinked(p), d.ProgramInfoLog(p))

	assert.Equal(t, gfx.Uniform(0), d.UniformLocation(p, "projection_matrix"))
	assert.Equal(t, gfx.Uniform(1), d.UniformLocation(p, "modelview_matrix"))
	assert.Equal(t, gfx.NoUniform, d.UniformLocation(p, "missing"))
	assert.Equal(t, RGB(0xFF, 0, 0), d.programs[p].color)
	assert.NoError(t, d.Err())
}

func TestLinkFailures(t *testing.T) {
	d := New(nil, nil)

	p := link(t, d, "in vec3 p;\nvoid other() {}\n", testFragment)
	assert.False(t, d.ProgramLinked(p))
	assert.Contains(t, d.ProgramInfoLog(p), "vertex shader lacks `main'")

	p = link(t, d, "void main() {\n}\n}\n", testFragment)
	assert.False(t, d.ProgramLinked(p))
	assert.Contains(t, d.ProgramInfoLog(p), "is not compiled")

	p = link(t, d, "uniform vec3 m;\nin vec3 p;\nvoid main() {\n gl_Position = m * vec4(p, 1);\n}\n", testFragment)
	assert.False(t, d.ProgramLinked(p))
	assert.Contains(t, d.ProgramInfoLog(p), "not a mat4 uniform")

	d.UseProgram(p)
	assert.ErrorIs(t, d.Err(), ErrInvalidOperation)
	assert.Equal(t, gfx.NoUniform, d.UniformLocation(p, "m"))
}

func TestUniformTranspose(t *testing.T) {
	d := New(nil, nil)
	p := link(t, d, testVertex, testFragment)
	d.UseProgram(p)

	m := mgl32.Translate3D(1, 2, 3)
	d.UniformMatrix4(0, true, m.Transpose())
	got, ok := d.UniformValue(p, 0)
	require.True(t, ok)
	assert.Equal(t, [16]float32(m), got)

	d.UniformMatrix4(gfx.NoUniform, false, m)
	assert.NoError(t, d.Err())
}

func TestElementBindingLivesInVertexArray(t *testing.T) {
	d := New(nil, nil)
	ebo := d.GenBuffer()
	va := d.GenVertexArray()

	d.BindVertexArray(va)
	d.BindBuffer(gfx.ElementArrayBuffer, ebo)
	d.BindVertexArray(0)
	assert.Equal(t, gfx.Buffer(0), d.bound(gfx.ElementArrayBuffer))

	d.BindVertexArray(va)
	assert.Equal(t, ebo, d.bound(gfx.ElementArrayBuffer))

	d.BufferData(gfx.ArrayBuffer, []byte{1}, gfx.StaticDraw)
	assert.ErrorIs(t, d.Err(), ErrInvalidOperation)
}

// quad uploads a two-triangle square covering NDC [-0.5, 0.5] and binds it.
func quad(d *Driver) {
	vbo := d.GenBuffer()
	d.BindBuffer(gfx.ArrayBuffer, vbo)
	d.BufferData(gfx.ArrayBuffer, gfx.Float32Bytes([]float32{
		-0.5, -0.5, 0,
		0.5, -0.5, 0,
		0.5, 0.5, 0,
		-0.5, 0.5, 0,
	}), gfx.StaticDraw)
	ebo := d.GenBuffer()
	d.BindBuffer(gfx.ElementArrayBuffer, ebo)
	d.BufferData(gfx.ElementArrayBuffer, gfx.Uint32Bytes([]uint32{0, 1, 2, 2, 3, 0}), gfx.StaticDraw)
	d.BindBuffer(gfx.ArrayBuffer, 0)
	d.BindBuffer(gfx.ElementArrayBuffer, 0)

	va := d.GenVertexArray()
	d.BindVertexArray(va)
	d.EnableVertexAttribArray(0)
	d.BindBuffer(gfx.ArrayBuffer, vbo)
	d.VertexAttribPointer(0, 3, gfx.Float, true, 12, 0)
	d.BindBuffer(gfx.ElementArrayBuffer, ebo)
}

func TestDrawQuad(t *testing.T) {
	target := NewImageTarget(64, 64)
	d := New(target, nil)
	d.Light = Light{Ambient: 1}
	p := link(t, d, testVertex, testFragment)
	d.UseProgram(p)
	d.UniformMatrix4(0, false, mgl32.Ident4())
	d.UniformMatrix4(1, false, mgl32.Ident4())
	quad(d)

	d.Enable(gfx.DepthTest)
	d.ClearColor(1, 1, 1, 1)
	d.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)
	d.DrawElements(gfx.Triangles, 6, gfx.UnsignedInt, 0)
	require.NoError(t, d.Err())

	assert.Equal(t, RGB(0xFF, 0, 0), target.At(32, 32))
	assert.Equal(t, RGB(0xFF, 0xFF, 0xFF), target.At(2, 2))
	st := d.Stats()
	assert.Equal(t, 1, st.DrawCalls)
	assert.Equal(t, 6, st.Indices)
	assert.Equal(t, 2, st.Triangles)
	assert.Greater(t, st.Fragments, 30*30)
}

func TestDrawRespectsViewport(t *testing.T) {
	target := NewImageTarget(64, 64)
	d := New(target, nil)
	p := link(t, d, testVertex, testFragment)
	d.UseProgram(p)
	d.UniformMatrix4(0, false, mgl32.Ident4())
	d.UniformMatrix4(1, false, mgl32.Ident4())
	quad(d)

	// Bottom-left quarter of the target in GL coordinates.
	d.Viewport(0, 0, 32, 32)
	d.ClearColor(0, 0, 0, 1)
	d.Clear(gfx.ColorBufferBit)
	d.DrawElements(gfx.Triangles, 6, gfx.UnsignedInt, 0)
	require.NoError(t, d.Err())

	assert.NotEqual(t, RGB(0, 0, 0), target.At(16, 48))
	assert.Equal(t, RGB(0, 0, 0), target.At(32, 32))
	assert.Equal(t, RGB(0, 0, 0), target.At(48, 16))
}

func TestDrawValidation(t *testing.T) {
	d := New(NewImageTarget(8, 8), nil)
	d.DrawElements(gfx.Triangles, 3, gfx.UnsignedInt, 0)
	assert.ErrorIs(t, d.Err(), ErrInvalidOperation)

	p := link(t, d, testVertex, testFragment)
	d.UseProgram(p)
	quad(d)
	d.DrawElements(gfx.Triangles, 12, gfx.UnsignedInt, 0)
	assert.ErrorIs(t, d.Err(), ErrInvalidOperation)

	d.DrawElements(gfx.Triangles, 6, gfx.Float, 0)
	assert.ErrorIs(t, d.Err(), ErrInvalidEnum)
	assert.Equal(t, 0, d.Stats().DrawCalls)
}

func TestDepthKeepsNearest(t *testing.T) {
	target := NewImageTarget(16, 16)
	d := New(target, nil)
	d.Light = Light{Ambient: 1}
	near := link(t, d, testVertex, testFragment)
	far := link(t, d, testVertex, "out vec4 c;\nvoid main() {\n c = vec4(0.0, 0.0, 1.0, 1.0);\n}\n")
	quad(d)
	d.Enable(gfx.DepthTest)
	d.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)

	d.UseProgram(near)
	d.UniformMatrix4(0, false, mgl32.Ident4())
	d.UniformMatrix4(1, false, mgl32.Translate3D(0, 0, -0.5))
	d.DrawElements(gfx.Triangles, 6, gfx.UnsignedInt, 0)

	d.UseProgram(far)
	d.UniformMatrix4(0, false, mgl32.Ident4())
	d.UniformMatrix4(1, false, mgl32.Translate3D(0, 0, 0.5))
	d.DrawElements(gfx.Triangles, 6, gfx.UnsignedInt, 0)
	require.NoError(t, d.Err())

	assert.Equal(t, RGB(0xFF, 0, 0), target.At(8, 8))
}

func TestPixelRoundsNegativeCoordinates(t *testing.T) {
	for _, tc := range []struct {
		in   float32
		want int
	}{
		{0, 0}, {0.49, 0}, {0.5, 1}, {2.7, 3},
		{-0.4, 0}, {-0.6, -1}, {-1.2, -1}, {-1.5, -1}, {-1.6, -2},
	} {
		assert.Equal(t, tc.want, pixel(tc.in), "pixel(%v)", tc.in)
	}
}
