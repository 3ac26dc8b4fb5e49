package cube

import "github.com/go-gl/mathgl/mgl32"

// Vertices are the cube corners. 0-3 are the z=+1 face counter-clockwise from the bottom
// left, 4-7 the matching z=-1 corners.
var Vertices = [8]mgl32.Vec3{
	{-1, -1, 1},
	{1, -1, 1},
	{1, 1, 1},
	{-1, 1, 1},
	{-1, -1, -1},
	{1, -1, -1},
	{1, 1, -1},
	{-1, 1, -1},
}

// Indices lists two triangles per face in the order front, top, back, left, bottom, right.
var Indices = [36]uint32{
	0, 1, 2, 2, 3, 0,
	3, 2, 6, 6, 7, 3,
	7, 6, 5, 5, 4, 7,
	4, 0, 3, 3, 7, 4,
	0, 1, 5, 5, 4, 0,
	1, 5, 6, 6, 2, 1,
}

// VertexData flattens Vertices into 24 floats.
func VertexData() []float32 {
	out := make([]float32, 0, len(Vertices)*3)
	for _, v := range Vertices {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// IndexData returns a copy of Indices.
func IndexData() []uint32 {
	out := Indices
	return out[:]
}
