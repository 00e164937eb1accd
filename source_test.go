package traverso_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso"
)

func TestMemorySourceReadAt(t *testing.T) {
	src := traverso.NewMemorySource("ramp", 44100, traverso.AudioBuffer{1, 1, 2, 2, 3, 3, 4, 4})
	assert.Equal(t, traverso.FramesToTimeRef(4, 44100), src.Length())

	dst := make(traverso.AudioBuffer, 4)
	n, err := src.ReadAt(dst, traverso.FramesToTimeRef(2, 44100))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, traverso.AudioBuffer{3, 3, 4, 4}, dst)

	n, err = src.ReadAt(dst, traverso.FramesToTimeRef(10, 44100))
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, src.Close())
	_, err = src.ReadAt(dst, 0)
	assert.ErrorIs(t, err, traverso.ErrSourceClosed)
}

func TestSilentSource(t *testing.T) {
	src := traverso.NewSilentSource(traverso.Second, 48000)
	assert.Equal(t, traverso.Second, src.Length())
	assert.Len(t, src.Samples(), 48000*traverso.NumChannels)
}

func TestRawFileProvider(t *testing.T) {
	dir := t.TempDir()
	data, err := traverso.Raw(traverso.AudioBuffer{0.5, -0.5, 0.25, -0.25}, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.raw"), data, 0o644))

	p := traverso.RawFileProvider{Dir: dir, Rate: 44100}
	assert.True(t, p.Exists("a.raw"))
	assert.False(t, p.Exists("missing.raw"))

	src, err := p.Open("a.raw")
	require.NoError(t, err)
	assert.Equal(t, "a.raw", src.Name())
	assert.Equal(t, traverso.FramesToTimeRef(2, 44100), src.Length())
	dst := make(traverso.AudioBuffer, 4)
	n, err := src.ReadAt(dst, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, traverso.AudioBuffer{0.5, -0.5, 0.25, -0.25}, dst)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.raw"), []byte{1, 2, 3}, 0o644))
	_, err = p.Open("odd.raw")
	assert.Error(t, err)
}
