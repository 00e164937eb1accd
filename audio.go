package traverso

import (
	"errors"
	"io"
)

type (
	// AudioBuffer holds interleaved stereo float32 samples: L, R, L, R...
	AudioBuffer []float32

	// AudioRenderer fills the buffer with the next block of audio. It is
	// called on the audio goroutine and must not block.
	AudioRenderer func(buf AudioBuffer) error

	// AudioDevice is the narrow interface to the audio output. Play starts
	// pulling blocks from render until the returned Closer is closed.
	AudioDevice interface {
		Play(render AudioRenderer) io.Closer
		SampleRate() int
		Close() error
	}

	// ReadSource is a decoded audio source. ReadAt fills dst (interleaved
	// stereo) starting from pos, returning the number of frames written;
	// frames past the end of the source are not touched.
	ReadSource interface {
		Name() string
		Rate() int
		Length() TimeRef
		ReadAt(dst AudioBuffer, pos TimeRef) (int, error)
		Close() error
	}

	// SourceProvider locates and opens ReadSources by name.
	SourceProvider interface {
		Exists(name string) bool
		Open(name string) (ReadSource, error)
	}
)

const NumChannels = 2

var ErrSourceClosed = errors.New("read source is closed")

// Frames returns the number of stereo frames in the buffer.
func (b AudioBuffer) Frames() int {
	return len(b) / NumChannels
}

// Clear zeroes the buffer while keeping its length.
func (b AudioBuffer) Clear() {
	clear(b)
}
