package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferToFloat32LE writes src to dst as little-endian float32 samples,
// clipped to [-1, 1], and returns the number of bytes written. dst must hold
// 4 bytes per sample.
func FloatBufferToFloat32LE(dst []byte, src []float32) int {
	for i, v := range src {
		v = max(min(v, 1), -1)
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
	return 4 * len(src)
}
