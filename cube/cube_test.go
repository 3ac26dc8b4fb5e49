package cube

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spincube/gfx"
	"spincube/gfx/gfxtest"
	"spincube/gfx/soft"
	"spincube/internal/logging"
)

type fakeWindow struct {
	drv    gfx.Driver
	w, h   int
	cx, cy float64
	swaps  int
}

func (f *fakeWindow) Driver() gfx.Driver         { return f.drv }
func (f *fakeWindow) Size() (int, int)           { return f.w, f.h }
func (f *fakeWindow) Cursor() (float64, float64) { return f.cx, f.cy }
func (f *fakeWindow) Swap()                      { f.swaps++ }

type rig struct {
	soft *soft.Driver
	rec  *gfxtest.Recorder
	fb   *soft.ImageTarget
	win  *fakeWindow
}

func newRig(w, h int) *rig {
	fb := soft.NewImageTarget(w, h)
	sd := soft.New(fb, nil)
	rec := gfxtest.New(sd)
	return &rig{soft: sd, rec: rec, fb: fb, win: &fakeWindow{drv: rec, w: w, h: h}}
}

// shippedShaders points at the shader files at the repository root.
func shippedShaders() Options {
	return Options{
		VertexShader:   filepath.Join("..", DefaultVertexShader),
		FragmentShader: filepath.Join("..", DefaultFragmentShader),
	}
}

func writeShaders(t *testing.T, vertex, fragment string) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		VertexShader:   filepath.Join(dir, "vertex.glsl"),
		FragmentShader: filepath.Join(dir, "fragment.glsl"),
	}
	require.NoError(t, os.WriteFile(opts.VertexShader, []byte(vertex), 0o644))
	require.NoError(t, os.WriteFile(opts.FragmentShader, []byte(fragment), 0o644))
	return opts
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

var white = soft.Color{R: 255, G: 255, B: 255, A: 255}

func TestAspect(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{1680, 1050}, {800, 600}, {1, 1000}, {1000, 1}, {333, 777}} {
		assert.InDelta(t, float32(tc.w)/float32(tc.h), Aspect(tc.w, tc.h), 1e-6, "%dx%d", tc.w, tc.h)
	}
	assert.Equal(t, float32(1), Aspect(0, 10))
}

func TestProjectionFieldOfViewIndependentOfSize(t *testing.T) {
	f := float32(1 / math.Tan(math.Pi/8))
	for _, tc := range []struct{ w, h int }{{1680, 1050}, {640, 480}, {100, 900}} {
		p := NewTransform(tc.w, tc.h).Projection
		assert.InDelta(t, f, p.At(1, 1), 1e-5, "%dx%d", tc.w, tc.h)
		assert.InDelta(t, f/Aspect(tc.w, tc.h), p.At(0, 0), 1e-5, "%dx%d", tc.w, tc.h)
	}
}

func TestIndicesFormCubeFaces(t *testing.T) {
	require.Len(t, Indices, 36)
	for _, i := range Indices {
		assert.Less(t, i, uint32(len(Vertices)))
	}

	type face struct {
		axis int
		sign float32
	}
	faces := make(map[face]int)
	for tri := 0; tri < len(Indices)/3; tri++ {
		a, b, c := Indices[tri*3], Indices[tri*3+1], Indices[tri*3+2]
		va, vb, vc := Vertices[a], Vertices[b], Vertices[c]
		require.NotZero(t, vb.Sub(va).Cross(vc.Sub(va)).Len(), "triangle %d is degenerate", tri)

		found := false
		for axis := 0; axis < 3; axis++ {
			if va[axis] == vb[axis] && vb[axis] == vc[axis] {
				faces[face{axis, va[axis]}]++
				found = true
			}
		}
		assert.True(t, found, "triangle %d is not on a face plane", tri)
	}
	assert.Len(t, faces, 6)
	for f, n := range faces {
		assert.Equal(t, 2, n, "face %+v", f)
	}
}

func TestVertexAndIndexData(t *testing.T) {
	vd := VertexData()
	require.Len(t, vd, 24)
	assert.Equal(t, []float32{-1, -1, 1}, vd[:3])
	assert.Equal(t, []float32{-1, 1, -1}, vd[21:])

	id := IndexData()
	id[0] = 99
	assert.Equal(t, uint32(0), Indices[0])
}

func TestRotationAngle(t *testing.T) {
	assert.Equal(t, float32(0.5), RotationAngle(0.5, 840, 1680))
	assert.Equal(t, float32(1), RotationAngle(0.5, 1680, 1680))
	assert.Equal(t, float32(0), RotationAngle(1, 0, 1680))
	assert.Equal(t, float32(0), RotationAngle(0, 500, 1680))
	assert.Equal(t, float32(0), RotationAngle(1, 500, 0))
	assert.Equal(t, RotationAngle(1.0/60, 321, 1680), RotationAngle(1.0/60, 321, 1680))
}

func TestStepIsPureInElapsedAndCursor(t *testing.T) {
	a := NewTransform(1680, 1050)
	b := NewTransform(1680, 1050)
	for i := 0; i < 10; i++ {
		a.Step(1.0/60, 700)
		b.Step(1.0/60, 700)
	}
	assert.Equal(t, a.ModelView, b.ModelView)

	c := NewTransform(1680, 1050)
	c.Step(0.5, 1680)
	want := mgl32.LookAtV(eye, center, up).Mul4(mgl32.HomogRotate3DY(1))
	assert.Equal(t, want, c.ModelView)
}

func TestStepZeroElapsedLeavesModelView(t *testing.T) {
	tr := NewTransform(1680, 1050)
	tr.Step(0.25, 512)
	before := tr.ModelView
	tr.Step(0, 900)
	assert.Equal(t, before, tr.ModelView)
	tr.Step(0.25, 0)
	assert.Equal(t, before, tr.ModelView)
}

func TestStepIgnoresResize(t *testing.T) {
	tr := NewTransform(1000, 500)
	tr.Step(1, 500)
	want := mgl32.LookAtV(eye, center, up).Mul4(mgl32.HomogRotate3DY(1))
	assert.Equal(t, want, tr.ModelView)
}

func TestStepStaysRigid(t *testing.T) {
	tr := NewTransform(1680, 1050)
	for i := 0; i < 5000; i++ {
		tr.Step(1.0/60, 1500)
	}
	assert.InDelta(t, 1, tr.ModelView.Mat3().Det(), 1e-3)
	// The camera distance is preserved.
	assert.InDelta(t, eye.Len(), tr.ModelView.Col(3).Vec3().Len(), 1e-3)
}

func TestSessionEndToEnd(t *testing.T) {
	r := newRig(64, 48)
	s := New(shippedShaders())
	require.NoError(t, s.Load(r.win))
	require.NoError(t, r.soft.Err())

	p := s.Pipeline()
	assert.True(t, p.Compiled)
	assert.True(t, p.Linked)
	assert.True(t, p.Projection.Valid())
	assert.True(t, p.ModelView.Valid())

	// Shaders before buffers, buffers before the vertex array.
	assert.Less(t, r.rec.Index("LinkProgram"), r.rec.Index("GenBuffer"))
	assert.Less(t, r.rec.Index("BindAttribLocation"), r.rec.Index("LinkProgram"))
	assert.Less(t, r.rec.Index("BufferData"), r.rec.Index("GenVertexArray"))

	bind := r.rec.Find("BindAttribLocation")
	require.Len(t, bind, 1)
	assert.Equal(t, []any{p.Program, uint32(0), "in_position"}, bind[0].Args)

	data := r.rec.Find("BufferData")
	require.Len(t, data, 2)
	assert.Equal(t, []any{gfx.ArrayBuffer, 96, gfx.StaticDraw}, data[0].Args)
	assert.Equal(t, []any{gfx.ElementArrayBuffer, 144, gfx.StaticDraw}, data[1].Args)

	ptr := r.rec.Find("VertexAttribPointer")
	require.Len(t, ptr, 1)
	assert.Equal(t, []any{uint32(0), int32(3), gfx.Float, true, int32(12), 0}, ptr[0].Args)

	uploads := r.rec.Find("UniformMatrix4")
	require.Len(t, uploads, 2)
	assert.Equal(t, []any{p.Projection, false, [16]float32(NewTransform(64, 48).Projection)}, uploads[0].Args)

	r.rec.Reset()
	require.NoError(t, s.Render())
	require.NoError(t, r.soft.Err())

	draws := r.rec.Find("DrawElements")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gfx.Triangles, int32(36), gfx.UnsignedInt, 0}, draws[0].Args)
	assert.Equal(t, []string{"Clear", "BindVertexArray", "DrawElements"}, r.rec.Names())
	assert.Equal(t, 1, r.win.swaps)

	st := r.soft.Stats()
	assert.Equal(t, 1, st.DrawCalls)
	assert.Equal(t, 36, st.Indices)
	assert.NotZero(t, st.Fragments)
	assert.NotEqual(t, white, r.fb.At(32, 24), "cube covers the center")
	assert.Equal(t, white, r.fb.At(0, 0), "corner shows the clear color")

	s.Dispose()
	assert.Equal(t, 1, r.rec.Count("DeleteVertexArray"))
	assert.Equal(t, 2, r.rec.Count("DeleteBuffer"))
	assert.Equal(t, 1, r.rec.Count("DeleteProgram"))
	assert.Equal(t, 2, r.rec.Count("DeleteShader"))
}

func TestSessionMissingShader(t *testing.T) {
	r := newRig(8, 8)
	opts := shippedShaders()
	opts.FragmentShader = filepath.Join(t.TempDir(), "missing.glsl")
	s := New(opts)

	err := s.Load(r.win)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, r.rec.Calls)

	assert.ErrorIs(t, s.Render(), ErrNotLoaded)
}

func TestSessionStates(t *testing.T) {
	r := newRig(8, 8)
	s := New(shippedShaders())

	assert.ErrorIs(t, s.Update(1), ErrNotLoaded)
	assert.ErrorIs(t, s.Render(), ErrNotLoaded)
	s.Resize(4, 4)
	assert.Empty(t, r.rec.Calls)

	require.NoError(t, s.Load(r.win))
	assert.Error(t, s.Load(r.win))

	s.Dispose()
	calls := len(r.rec.Calls)
	s.Dispose()
	s.Resize(4, 4)
	assert.Len(t, r.rec.Calls, calls)

	assert.ErrorIs(t, s.Update(1), ErrDisposed)
	assert.ErrorIs(t, s.Render(), ErrDisposed)
	assert.ErrorIs(t, s.Load(r.win), ErrDisposed)
}

func TestDisposeBeforeLoad(t *testing.T) {
	r := newRig(8, 8)
	s := New(shippedShaders())
	s.Dispose()
	assert.Empty(t, r.rec.Calls)
	assert.ErrorIs(t, s.Load(r.win), ErrDisposed)
}

func TestResizeSetsViewportOnly(t *testing.T) {
	r := newRig(64, 48)
	s := New(shippedShaders())
	require.NoError(t, s.Load(r.win))
	proj := s.Transform().Projection

	s.Resize(32, 16)
	assert.Equal(t, [4]int32{0, 0, 32, 16}, r.soft.ViewportRect())
	assert.Equal(t, proj, s.Transform().Projection)
}

func TestUpdateRotatesAndUploads(t *testing.T) {
	r := newRig(64, 48)
	s := New(shippedShaders())
	require.NoError(t, s.Load(r.win))

	r.win.cx = 64
	require.NoError(t, s.Update(0.5))

	want := mgl32.LookAtV(eye, center, up).Mul4(mgl32.HomogRotate3DY(1))
	assert.Equal(t, want, s.Transform().ModelView)

	got, ok := r.soft.UniformValue(s.Pipeline().Program, s.Pipeline().ModelView)
	require.True(t, ok)
	assert.Equal(t, [16]float32(want), got)
}

func TestZeroTickUpdateKeepsFrame(t *testing.T) {
	r := newRig(32, 32)
	s := New(shippedShaders())
	require.NoError(t, s.Load(r.win))
	require.NoError(t, s.Render())
	first := append([]byte(nil), r.fb.Img.Pix...)

	r.win.cx = 20
	require.NoError(t, s.Update(0))
	require.NoError(t, s.Render())
	assert.Equal(t, first, r.fb.Img.Pix)
}

func TestBrokenShaderIsNonFatal(t *testing.T) {
	r := newRig(16, 16)
	vertex := readFile(t, filepath.Join("..", DefaultVertexShader))
	opts := writeShaders(t, vertex, "#version 330 core\nvoid main(void) {\n")
	s := New(opts)

	require.NoError(t, s.Load(r.win))
	assert.False(t, s.Pipeline().Compiled)
	assert.False(t, s.Pipeline().Linked)
	assert.False(t, s.Pipeline().ModelView.Valid())

	require.NoError(t, s.Render())
	assert.Equal(t, 1, r.rec.Count("DrawElements"))
	assert.Equal(t, white, r.fb.At(8, 8))
}

// zeroBuffers hands out zero vertex array handles, and zero buffer handles unless
// buffersOK is set.
type zeroBuffers struct {
	gfx.Driver
	buffersOK bool
}

func (z zeroBuffers) GenBuffer() gfx.Buffer {
	if z.buffersOK {
		return z.Driver.GenBuffer()
	}
	return 0
}

func (z zeroBuffers) GenVertexArray() gfx.VertexArray { return 0 }

func TestBufferSetupFailure(t *testing.T) {
	sd := soft.New(soft.NewImageTarget(4, 4), nil)

	_, err := NewBuffers(zeroBuffers{Driver: sd})
	require.ErrorIs(t, err, ErrBufferSetup)

	b, err := NewBuffers(zeroBuffers{Driver: sd, buffersOK: true})
	require.ErrorIs(t, err, ErrBufferSetup)
	assert.NotZero(t, b.Position)
	assert.NotZero(t, b.Index)
}

func TestLoadFailsOnBufferSetup(t *testing.T) {
	r := newRig(8, 8)
	r.win.drv = zeroBuffers{Driver: r.rec}
	s := New(shippedShaders())

	require.ErrorIs(t, s.Load(r.win), ErrBufferSetup)
	assert.ErrorIs(t, s.Render(), ErrNotLoaded)
	assert.Equal(t, 1, r.rec.Count("DeleteProgram"))
}

func TestReloadSwapsProgram(t *testing.T) {
	vertex := readFile(t, filepath.Join("..", DefaultVertexShader))
	fragment := readFile(t, filepath.Join("..", DefaultFragmentShader))
	opts := writeShaders(t, vertex, fragment)

	r := newRig(32, 32)
	s := New(opts)
	require.NoError(t, s.Load(r.win))
	old := s.Pipeline()
	require.NoError(t, s.Render())
	before := r.fb.At(16, 16)

	red := "#version 330 core\nout vec4 out_frag_color;\nvoid main(void)\n{\n\tout_frag_color = vec4(1.0, 0.0, 0.0, 1.0);\n}\n"
	require.NoError(t, os.WriteFile(opts.FragmentShader, []byte(red), 0o644))
	s.reload()

	p := s.Pipeline()
	require.True(t, p.Linked)
	assert.NotEqual(t, old.Program, p.Program)

	proj, ok := r.soft.UniformValue(p.Program, p.Projection)
	require.True(t, ok)
	assert.Equal(t, [16]float32(s.Transform().Projection), proj)

	require.NoError(t, s.Render())
	require.NoError(t, r.soft.Err())
	after := r.fb.At(16, 16)
	assert.NotEqual(t, before, after)
	assert.Greater(t, after.R, after.B)

	// A broken edit keeps the working program.
	require.NoError(t, os.WriteFile(opts.FragmentShader, []byte("#version 330 core\nvoid main(void) {\n"), 0o644))
	s.reload()
	assert.Equal(t, p.Program, s.Pipeline().Program)
	require.NoError(t, s.Render())
	assert.Equal(t, after, r.fb.At(16, 16))
}

func TestWatcherReportsWrites(t *testing.T) {
	opts := writeShaders(t, "a", "b")
	sw, err := watchShaders(logging.Discard(), opts.VertexShader, opts.FragmentShader)
	require.NoError(t, err)
	defer sw.Close()

	assert.False(t, sw.changed())
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(opts.VertexShader), "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(opts.VertexShader, []byte("c"), 0o644))
	assert.Eventually(t, sw.changed, 2*time.Second, 10*time.Millisecond)
}
