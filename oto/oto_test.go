package oto

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso"
)

func TestFloatBufferToFloat32LE(t *testing.T) {
	src := []float32{0, 0.5, -0.25, 2, -3}
	dst := make([]byte, 4*len(src))
	require.Equal(t, len(dst), FloatBufferToFloat32LE(dst, src))
	want := []float32{0, 0.5, -0.25, 1, -1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(dst[4*i:]))
		assert.Equal(t, w, got, "sample %d", i)
	}
}

func TestRenderReaderWholeFrames(t *testing.T) {
	calls := 0
	r := newRenderReader(func(buf traverso.AudioBuffer) error {
		calls++
		for i := range buf {
			buf[i] = 0.5
		}
		return nil
	}, 4)
	p := make([]byte, 10*bytesPerFrame+3)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 10*bytesPerFrame, n, "partial frames are not written")
	assert.Equal(t, 1, calls)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(p[n-4:])))

	n, err = r.Read(p[:bytesPerFrame-1])
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, calls)
}

func TestRenderReaderError(t *testing.T) {
	boom := errors.New("boom")
	r := newRenderReader(func(traverso.AudioBuffer) error { return boom }, 4)
	_, err := r.Read(make([]byte, bytesPerFrame))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Err(), boom)
}
