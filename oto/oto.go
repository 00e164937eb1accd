/*
Package oto implements traverso.AudioDevice on top of the system audio output
via github.com/ebitengine/oto/v3.
*/
package oto

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/vsariola/traverso"
)

type (
	// OtoContext is the audio output. Only one may exist per process.
	OtoContext struct {
		context      *oto.Context
		rate         int
		bufferFrames int
	}

	// OtoOutput is a playing stream; closing it stops pulling audio.
	OtoOutput struct {
		player *oto.Player
		reader *renderReader
	}

	// renderReader adapts an AudioRenderer to the io.Reader oto pulls from.
	renderReader struct {
		render traverso.AudioRenderer
		buf    traverso.AudioBuffer
		mu     sync.Mutex
		err    error
	}
)

const bytesPerFrame = 4 * traverso.NumChannels

// NewContext opens the default output with float32 stereo samples at rate,
// asking for a device buffer of bufferFrames frames.
func NewContext(rate, bufferFrames int) (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: traverso.NumChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferFrames) * time.Second / time.Duration(rate),
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context, rate: rate, bufferFrames: bufferFrames}, nil
}

func (c *OtoContext) SampleRate() int { return c.rate }

// Play starts a player that calls render on oto's goroutine whenever the
// device needs more audio.
func (c *OtoContext) Play(render traverso.AudioRenderer) io.Closer {
	r := newRenderReader(render, c.bufferFrames)
	p := c.context.NewPlayer(r)
	p.Play()
	return &OtoOutput{player: p, reader: r}
}

// Close suspends the output; oto contexts cannot be disposed of.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) Close() error {
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return o.reader.Err()
}

func newRenderReader(render traverso.AudioRenderer, frames int) *renderReader {
	return &renderReader{render: render, buf: make(traverso.AudioBuffer, frames*traverso.NumChannels)}
}

// Read renders as many whole frames as fit in p.
func (r *renderReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if n := frames * traverso.NumChannels; len(r.buf) < n {
		r.buf = make(traverso.AudioBuffer, n)
	}
	buf := r.buf[:frames*traverso.NumChannels]
	if err := r.render(buf); err != nil {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		return 0, err
	}
	return FloatBufferToFloat32LE(p, buf), nil
}

// Err returns the error that stopped rendering, if any.
func (r *renderReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
