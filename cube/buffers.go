package cube

import (
	"errors"
	"fmt"

	"spincube/gfx"
)

// ErrBufferSetup is returned when the driver hands back a zero buffer or vertex array.
var ErrBufferSetup = errors.New("buffer setup failed")

// Buffers are the static cube geometry on the GPU and the vertex array describing it.
type Buffers struct {
	Position    gfx.Buffer
	Index       gfx.Buffer
	VertexArray gfx.VertexArray
}

// NewBuffers uploads Vertices and Indices and records their layout in a vertex array.
// Attribute 0 reads three floats per vertex; the vertex array keeps the index binding.
func NewBuffers(d gfx.Driver) (Buffers, error) {
	var b Buffers

	b.Position = d.GenBuffer()
	if b.Position == 0 {
		return b, fmt.Errorf("%w: position buffer", ErrBufferSetup)
	}
	d.BindBuffer(gfx.ArrayBuffer, b.Position)
	d.BufferData(gfx.ArrayBuffer, gfx.Float32Bytes(VertexData()), gfx.StaticDraw)

	b.Index = d.GenBuffer()
	if b.Index == 0 {
		d.BindBuffer(gfx.ArrayBuffer, 0)
		return b, fmt.Errorf("%w: index buffer", ErrBufferSetup)
	}
	d.BindBuffer(gfx.ElementArrayBuffer, b.Index)
	d.BufferData(gfx.ElementArrayBuffer, gfx.Uint32Bytes(IndexData()), gfx.StaticDraw)

	d.BindBuffer(gfx.ArrayBuffer, 0)
	d.BindBuffer(gfx.ElementArrayBuffer, 0)

	b.VertexArray = d.GenVertexArray()
	if b.VertexArray == 0 {
		return b, fmt.Errorf("%w: vertex array", ErrBufferSetup)
	}
	d.BindVertexArray(b.VertexArray)
	d.EnableVertexAttribArray(PositionAttrib)
	d.BindBuffer(gfx.ArrayBuffer, b.Position)
	d.VertexAttribPointer(PositionAttrib, 3, gfx.Float, true, int32(3*gfx.Float.Size()), 0)
	d.BindBuffer(gfx.ElementArrayBuffer, b.Index)
	d.BindVertexArray(0)
	return b, nil
}

// Delete releases every non-zero handle in b.
func (b Buffers) Delete(d gfx.Driver) {
	if b.VertexArray != 0 {
		d.DeleteVertexArray(b.VertexArray)
	}
	if b.Index != 0 {
		d.DeleteBuffer(b.Index)
	}
	if b.Position != 0 {
		d.DeleteBuffer(b.Position)
	}
}
