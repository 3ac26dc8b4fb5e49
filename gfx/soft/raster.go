package soft

import (
	"spincube/gfx"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var defaultColor = RGB(0xCC, 0xCC, 0xCC)

// DrawElements runs the emulated pipeline over count indices of the bound vertex array.
func (d *Driver) DrawElements(mode gfx.Primitive, count int32, typ gfx.DataType, offset int) {
	const op = "DrawElements"
	switch {
	case mode != gfx.Triangles:
		d.fail(op, ErrInvalidEnum, "mode %d", mode)
		return
	case typ != gfx.UnsignedInt:
		d.fail(op, ErrInvalidEnum, "index type %d", typ)
		return
	case count < 0 || offset < 0:
		d.fail(op, ErrInvalidValue, "count %d offset %d", count, offset)
		return
	}
	prog, ok := d.programs[d.current]
	if !ok || !prog.linked {
		d.fail(op, ErrInvalidOperation, "no linked program in use")
		return
	}
	va := d.vaos[d.vao]
	elems, ok := d.buffers[va.elements]
	if !ok {
		d.fail(op, ErrInvalidOperation, "vertex array %d has no element buffer", d.vao)
		return
	}
	if end := offset + int(count)*4; end > len(elems.data) {
		d.fail(op, ErrInvalidOperation, "%d indices at offset %d exceed element buffer of %d bytes", count, offset, len(elems.data))
		return
	}
	a := va.attribs[prog.posLoc]
	if !a.enabled || !a.set {
		d.fail(op, ErrInvalidOperation, "attribute %d is not enabled", prog.posLoc)
		return
	}
	verts, ok := d.buffers[a.buffer]
	if !ok {
		d.fail(op, ErrInvalidOperation, "attribute %d buffer was deleted", prog.posLoc)
		return
	}

	d.stats.DrawCalls++
	d.stats.Indices += int(count)
	if d.target == nil || count < 3 {
		return
	}
	if d.depthTest {
		d.ensureDepth()
	}

	st := newStage(prog)
	color := defaultColor
	if prog.hasColor {
		color = prog.color
	}

	var tri [3]stageVertex
	for i := 0; i+2 < int(count); i += 3 {
		valid := true
		for k := 0; k < 3; k++ {
			idx := gfx.Uint32At(elems.data, offset+(i+k)*4)
			pos, ok := fetch(verts.data, a, idx)
			if !ok {
				d.fail(op, ErrInvalidValue, "index %d out of range", idx)
				valid = false
				break
			}
			tri[k] = st.run(pos)
		}
		if !valid {
			continue
		}
		d.stats.Triangles++
		d.rasterize(tri, d.shade(color, tri))
	}
}

// fetch reads the attribute for vertex idx; missing components default to 0 (and w to 1).
func fetch(data []byte, a attrib, idx uint32) (mgl32.Vec4, bool) {
	stride := int(a.stride)
	if stride == 0 {
		stride = int(a.size) * 4
	}
	off := a.offset + int(idx)*stride
	if off < 0 || off+int(a.size)*4 > len(data) {
		return mgl32.Vec4{}, false
	}
	v := mgl32.Vec4{0, 0, 0, 1}
	for c := 0; c < int(a.size); c++ {
		v[c] = gfx.Float32At(data, off+c*4)
	}
	return v, true
}

type stage struct {
	clip mgl32.Mat4 // leftmost matrix, normally the projection
	eye  mgl32.Mat4 // product of the remaining matrices
	w    float32
}

type stageVertex struct {
	eye  mgl32.Vec3
	clip mgl32.Vec4
}

func newStage(p *program) stage {
	st := stage{clip: mgl32.Ident4(), eye: mgl32.Ident4(), w: p.posW}
	for i, u := range p.posMats {
		m := mgl32.Mat4(p.values[u])
		if i == 0 {
			st.clip = m
			continue
		}
		st.eye = st.eye.Mul4(m)
	}
	if len(p.posMats) == 1 {
		// A single matrix is treated as the full transform; eye space is object space.
		st.eye = mgl32.Ident4()
	}
	return st
}

func (st stage) run(pos mgl32.Vec4) stageVertex {
	pos[3] = st.w
	e := st.eye.Mul4x1(pos)
	return stageVertex{eye: e.Vec3(), clip: st.clip.Mul4x1(e)}
}

func (d *Driver) shade(base Color, tri [3]stageVertex) Color {
	l := d.Light
	amb := clamp01(l.Ambient)
	ld := mgl32.Vec3(l.Dir)
	if ld.Len() == 0 {
		return base.MulScalar(amb)
	}
	n := tri[1].eye.Sub(tri[0].eye).Cross(tri[2].eye.Sub(tri[0].eye))
	if n.Len() == 0 {
		return base.MulScalar(amb)
	}
	// Faces are lit from both sides; the cube's winding is not consistent.
	dot := math32.Abs(n.Normalize().Dot(ld.Normalize().Mul(-1)))
	return base.MulScalar(amb + dot*clamp01(l.DirAmount))
}

type screenPoint struct {
	x, y int
	z    float32
}

func (d *Driver) rasterize(tri [3]stageVertex, c Color) {
	tw, th := d.target.Size()
	var p [3]screenPoint
	for k, v := range tri {
		// Trivial clip: drop triangles touching or behind the eye plane.
		if v.clip[3] <= 0 {
			return
		}
		inv := 1 / v.clip[3]
		nx, ny, nz := v.clip[0]*inv, v.clip[1]*inv, v.clip[2]*inv
		if nz < -1 || nz > 1 {
			return
		}
		vx, vy := float32(d.viewport[0]), float32(d.viewport[1])
		vw, vh := float32(d.viewport[2]), float32(d.viewport[3])
		sx := vx + (nx*0.5+0.5)*vw
		sy := float32(th) - (vy + (ny*0.5+0.5)*vh)
		p[k] = screenPoint{x: pixel(sx), y: pixel(sy), z: nz*0.5 + 0.5}
	}

	minX, maxX := min3(p[0].x, p[1].x, p[2].x), max3(p[0].x, p[1].x, p[2].x)
	minY, maxY := min3(p[0].y, p[1].y, p[2].y), max3(p[0].y, p[1].y, p[2].y)
	// Scissor to the viewport and the target.
	left, top := int(d.viewport[0]), th-int(d.viewport[1]+d.viewport[3])
	right, bottom := left+int(d.viewport[2])-1, top+int(d.viewport[3])-1
	minX, minY = max(minX, left, 0), max(minY, top, 0)
	maxX, maxY = min(maxX, right, tw-1), min(maxY, bottom, th-1)
	if minX > maxX || minY > maxY {
		return
	}

	area := edgeFn(p[0].x, p[0].y, p[1].x, p[1].y, p[2].x, p[2].y)
	if area == 0 {
		return
	}
	if area < 0 {
		p[1], p[2] = p[2], p[1]
		area = -area
	}
	invArea := 1.0 / float32(area)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(p[1].x, p[1].y, p[2].x, p[2].y, x, y)
			w1 := edgeFn(p[2].x, p[2].y, p[0].x, p[0].y, x, y)
			w2 := edgeFn(p[0].x, p[0].y, p[1].x, p[1].y, x, y)
			if (w0 | w1 | w2) < 0 {
				continue
			}
			z := float32(w0)*invArea*p[0].z + float32(w1)*invArea*p[1].z + float32(w2)*invArea*p[2].z
			if !d.depthPass(tw, x, y, z) {
				continue
			}
			d.stats.Fragments++
			d.target.SetPixel(x, y, c)
		}
	}
}

// depthPass implements GL_LESS against a buffer cleared to 1.
func (d *Driver) depthPass(w, x, y int, z float32) bool {
	if !d.depthTest || d.depth == nil {
		return true
	}
	idx := y*w + x
	if idx < 0 || idx >= len(d.depth) {
		return false
	}
	if z >= d.depth[idx] {
		return false
	}
	d.depth[idx] = z
	return true
}

// pixel rounds a screen coordinate to the nearest pixel, half up.
func pixel(v float32) int { return int(math32.Floor(v + 0.5)) }

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func min3(a, b, c int) int { return min(a, b, c) }

func max3(a, b, c int) int { return max(a, b, c) }
