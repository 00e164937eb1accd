package traverso_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso"
)

func TestWavHeader(t *testing.T) {
	buf := traverso.AudioBuffer{0.5, -0.5, 2, -2}
	data, err := traverso.Wav(buf, 48000, true)
	require.NoError(t, err)
	require.Len(t, data, 44+8)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(data[40:44]))
	samples := make([]int16, 4)
	require.NoError(t, binary.Read(bytes.NewReader(data[44:]), binary.LittleEndian, samples))
	assert.Equal(t, []int16{16383, -16383, 32767, -32768}, samples, "out of range samples are clamped")
}

func TestWavFloat(t *testing.T) {
	buf := traverso.AudioBuffer{0.25, -0.25}
	data, err := traverso.Wav(buf, 44100, false)
	require.NoError(t, err)
	require.Len(t, data, 58+8)
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(data[20:22]), "IEEE float")
	assert.Equal(t, "fact", string(data[38:42]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[46:50]), "one frame")
	raw, err := traverso.Raw(buf, false)
	require.NoError(t, err)
	assert.Equal(t, raw, data[58:])
}
