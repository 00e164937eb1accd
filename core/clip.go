package core

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/viterin/vek/vek32"

	"github.com/vsariola/traverso"
)

type (
	// AudioClip plays a region of a ReadSource at a position of a track.
	AudioClip struct {
		id       uuid.UUID
		name     string
		source   *sharedSource
		track    *Track
		selected bool
		closed   bool

		trackStart  atomic.Int64
		sourceStart atomic.Int64
		length      atomic.Int64
		gain        atomicFloat32
	}

	// sharedSource lets copies of a clip use the same ReadSource; the source
	// is closed when the last clip using it is closed.
	sharedSource struct {
		traverso.ReadSource
		refs int
	}
)

// NewAudioClip creates a clip that plays all of source from the start of the
// timeline with unity gain.
func NewAudioClip(name string, source traverso.ReadSource) *AudioClip {
	c := &AudioClip{id: uuid.New(), name: name, source: &sharedSource{ReadSource: source, refs: 1}}
	c.length.Store(int64(source.Length()))
	c.gain.Store(1)
	return c
}

func (c *AudioClip) Kind() Kind { return KindClip }
func (c *AudioClip) ID() uuid.UUID { return c.id }
func (c *AudioClip) Name() string { return c.name }
func (c *AudioClip) Source() traverso.ReadSource { return c.source.ReadSource }
func (c *AudioClip) Track() *Track { return c.track }
func (c *AudioClip) IsSelected() bool { return c.selected }
func (c *AudioClip) TrackStart() traverso.TimeRef { return traverso.TimeRef(c.trackStart.Load()) }
func (c *AudioClip) SourceStart() traverso.TimeRef { return traverso.TimeRef(c.sourceStart.Load()) }
func (c *AudioClip) Length() traverso.TimeRef { return traverso.TimeRef(c.length.Load()) }
func (c *AudioClip) TrackEnd() traverso.TimeRef { return c.TrackStart() + c.Length() }
func (c *AudioClip) Gain() float32 { return c.gain.Load() }
func (c *AudioClip) SetGain(gain float32) { c.gain.Store(max(gain, 0)) }
func (c *AudioClip) SetTrackStart(t traverso.TimeRef) { c.trackStart.Store(int64(max(t, 0))) }

// SetRegion sets which part of the source the clip plays.
func (c *AudioClip) SetRegion(sourceStart, length traverso.TimeRef) error {
	if sourceStart < 0 || length <= 0 || sourceStart+length > c.source.Length() {
		return fmt.Errorf("region %v+%v outside source %v of length %v", sourceStart, length, c.source.Name(), c.source.Length())
	}
	c.sourceStart.Store(int64(sourceStart))
	c.length.Store(int64(length))
	return nil
}

// Copy returns a new clip, not on any track, playing the same region of the
// same source.
func (c *AudioClip) Copy() *AudioClip {
	c.source.refs++
	ret := &AudioClip{id: uuid.New(), name: c.name, source: c.source}
	ret.trackStart.Store(c.trackStart.Load())
	ret.sourceStart.Store(c.sourceStart.Load())
	ret.length.Store(c.length.Load())
	ret.gain.Store(c.gain.Load())
	return ret
}

// Split returns two new clips covering the parts of c before and after the
// timeline position at. c itself is left unchanged.
func (c *AudioClip) Split(at traverso.TimeRef) (left, right *AudioClip, err error) {
	if at <= c.TrackStart() || at >= c.TrackEnd() {
		return nil, nil, fmt.Errorf("split position %v outside clip %v (%v - %v)", at, c.name, c.TrackStart(), c.TrackEnd())
	}
	offset := at - c.TrackStart()
	left = c.Copy()
	left.name = c.name + " (L)"
	left.length.Store(int64(offset))
	right = c.Copy()
	right.name = c.name + " (R)"
	right.trackStart.Store(int64(at))
	right.sourceStart.Store(int64(c.SourceStart() + offset))
	right.length.Store(int64(c.Length() - offset))
	return left, right, nil
}

// NormalizationFactor returns the gain that brings the peak of the clip's
// source to targetDB decibels full scale.
func (c *AudioClip) NormalizationFactor(targetDB float64, peaks *PeakCache) (float32, error) {
	peak, err := peaks.Peak(c.source.ReadSource)
	if err != nil {
		return 1, err
	}
	if peak == 0 {
		return 1, nil
	}
	return float32(math.Pow(10, targetDB/20)) / peak, nil
}

// Close releases the clip's reference to its source. Closing twice is a
// no-op.
func (c *AudioClip) Close() error {
	if c.closed || c.source.refs <= 0 {
		return nil
	}
	c.closed = true
	c.source.refs--
	if c.source.refs > 0 {
		return nil
	}
	return c.source.Close()
}

// process mixes the part of the clip overlapping [pos, pos+out.Frames()) into
// out, using tmp as scratch space. Runs on the audio goroutine.
func (c *AudioClip) process(out, tmp traverso.AudioBuffer, pos traverso.TimeRef, rate int) {
	frames := out.Frames()
	start, end := c.TrackStart(), c.TrackEnd()
	blockEnd := pos + traverso.FramesToTimeRef(int64(frames), rate)
	if end <= pos || start >= blockEnd {
		return
	}
	offset := 0
	if start > pos {
		offset = int((start - pos).Frames(rate))
	}
	from := max(pos, start)
	n := min(frames-offset, int((end-from).Frames(rate)), tmp.Frames())
	if n <= 0 {
		return
	}
	region := tmp[:n*traverso.NumChannels]
	region.Clear()
	read, err := c.source.ReadAt(region, c.SourceStart()+from-start)
	if err != nil || read <= 0 {
		return
	}
	region = region[:read*traverso.NumChannels]
	if g := c.Gain(); g != 1 {
		vek32.MulNumber_Inplace(region, g)
	}
	vek32.Add_Inplace(out[offset*traverso.NumChannels:(offset+read)*traverso.NumChannels], region)
}
