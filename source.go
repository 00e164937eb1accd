package traverso

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

type (
	// MemorySource is a ReadSource over an in-memory interleaved stereo buffer.
	MemorySource struct {
		name   string
		rate   int
		data   AudioBuffer
		closed atomic.Bool
	}

	// RawFileProvider opens raw little-endian float32 interleaved stereo files
	// from a directory, reading them fully into memory.
	RawFileProvider struct {
		Dir  string
		Rate int
	}
)

// NewMemorySource creates a source named name playing data at rate.
func NewMemorySource(name string, rate int, data AudioBuffer) *MemorySource {
	return &MemorySource{name: name, rate: rate, data: data}
}

// NewSilentSource returns a source of the given length that only contains
// zeros.
func NewSilentSource(length TimeRef, rate int) *MemorySource {
	frames := length.Frames(rate)
	return NewMemorySource("Silence", rate, make(AudioBuffer, frames*NumChannels))
}

func (s *MemorySource) Name() string { return s.name }
func (s *MemorySource) Rate() int { return s.rate }

func (s *MemorySource) Length() TimeRef {
	return FramesToTimeRef(int64(s.data.Frames()), s.rate)
}

// Samples exposes the underlying buffer. Callers must not modify it.
func (s *MemorySource) Samples() AudioBuffer { return s.data }

func (s *MemorySource) ReadAt(dst AudioBuffer, pos TimeRef) (int, error) {
	if s.closed.Load() {
		return 0, ErrSourceClosed
	}
	start := int(pos.Frames(s.rate)) * NumChannels
	if start < 0 || start >= len(s.data) {
		return 0, nil
	}
	n := copy(dst, s.data[start:])
	return n / NumChannels, nil
}

func (s *MemorySource) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *MemorySource) Closed() bool { return s.closed.Load() }

func (p RawFileProvider) path(name string) string {
	if filepath.IsAbs(name) || p.Dir == "" {
		return name
	}
	return filepath.Join(p.Dir, name)
}

func (p RawFileProvider) Exists(name string) bool {
	info, err := os.Stat(p.path(name))
	return err == nil && !info.IsDir()
}

func (p RawFileProvider) Open(name string) (ReadSource, error) {
	b, err := os.ReadFile(p.path(name))
	if err != nil {
		return nil, fmt.Errorf("could not read raw file %v: %w", name, err)
	}
	if len(b)%(4*NumChannels) != 0 {
		return nil, fmt.Errorf("raw file %v is not float32 stereo: length %d", name, len(b))
	}
	data := make(AudioBuffer, len(b)/4)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, []float32(data)); err != nil {
		return nil, fmt.Errorf("could not decode raw file %v: %w", name, err)
	}
	rate := p.Rate
	if rate == 0 {
		rate = 44100
	}
	return NewMemorySource(filepath.Base(name), rate, data), nil
}
