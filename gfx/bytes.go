package gfx

import (
	"encoding/binary"
	"math"
)

// Float32Bytes packs v as little-endian float32 values for BufferData.
func Float32Bytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// Uint32Bytes packs v as little-endian uint32 values for BufferData.
func Uint32Bytes(v []uint32) []byte {
	out := make([]byte, len(v)*4)
	for i, u := range v {
		binary.LittleEndian.PutUint32(out[i*4:], u)
	}
	return out
}

// Float32At decodes the float32 at byte offset off.
func Float32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

// Uint32At decodes the uint32 at byte offset off.
func Uint32At(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}
