package core

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/viterin/vek/vek32"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/tsar"
)

// Track is an audio track of a session, or the session's master bus.
type Track struct {
	id      uuid.UUID
	name    string
	session *Session
	master  bool
	armed   bool

	gain  atomicFloat32
	pan   atomicFloat32
	muted atomic.Bool

	clips []*AudioClip // GUI goroutine
	rtCap int          // capacity of rtClips once the queued operations ran

	rtClips     []*AudioClip // audio goroutine
	scratch     traverso.AudioBuffer
	clipScratch traverso.AudioBuffer
}

const rtListCapacity = 64

// NewTrack creates a track for session. The track is not part of the session
// until it is added with Session.AddTrack.
func NewTrack(session *Session, name string) *Track {
	t := &Track{
		id:          uuid.New(),
		name:        name,
		session:     session,
		rtCap:       rtListCapacity,
		rtClips:     make([]*AudioClip, 0, rtListCapacity),
		scratch:     make(traverso.AudioBuffer, session.bufferFrames*traverso.NumChannels),
		clipScratch: make(traverso.AudioBuffer, session.bufferFrames*traverso.NumChannels),
	}
	t.gain.Store(1)
	return t
}

func (t *Track) Kind() Kind { return KindTrack }
func (t *Track) ID() uuid.UUID { return t.id }
func (t *Track) Name() string { return t.name }
func (t *Track) SetName(name string) { t.name = name }
func (t *Track) Session() *Session { return t.session }
func (t *Track) IsMaster() bool { return t.master }
func (t *Track) Gain() float32 { return t.gain.Load() }
func (t *Track) SetGain(g float32) { t.gain.Store(max(g, 0)) }
func (t *Track) Pan() float32 { return t.pan.Load() }
func (t *Track) SetPan(p float32) { t.pan.Store(max(min(p, 1), -1)) }
func (t *Track) IsMuted() bool { return t.muted.Load() }
func (t *Track) SetMuted(m bool) { t.muted.Store(m) }
func (t *Track) IsArmed() bool { return t.armed }
func (t *Track) SetArmed(a bool) { t.armed = a }

// Clips returns a copy of the track's clip list as seen by the GUI goroutine.
func (t *Track) Clips() []*AudioClip { return slices.Clone(t.clips) }

func (t *Track) HasClip(c *AudioClip) bool { return slices.Contains(t.clips, c) }

// ClipAt returns the topmost clip covering the timeline position pos.
func (t *Track) ClipAt(pos traverso.TimeRef) (*AudioClip, bool) {
	for i := len(t.clips) - 1; i >= 0; i-- {
		if c := t.clips[i]; pos >= c.TrackStart() && pos < c.TrackEnd() {
			return c, true
		}
	}
	return nil, false
}

// End returns the end position of the last clip.
func (t *Track) End() traverso.TimeRef {
	var end traverso.TimeRef
	for _, c := range t.clips {
		end = max(end, c.TrackEnd())
	}
	return end
}

// AddClip puts clip at the end of the track's clip list. The GUI list changes
// immediately; the audio goroutine starts playing the clip once the Tsar
// operation has been drained.
func (t *Track) AddClip(clip *AudioClip) error {
	return t.AddClipAt(clip, -1)
}

// AddClipAt inserts clip at index of the track's clip list, appending it if
// index is out of range.
func (t *Track) AddClipAt(clip *AudioClip, index int) error {
	if clip.track != nil {
		return fmt.Errorf("%w: %v on %v", ErrClipOnOtherTrack, clip.name, clip.track.name)
	}
	grown := growRT[*AudioClip](len(t.clips), t.rtCap)
	op := tsar.AddOperation("add_clip", t, clip, func(t *Track, c *AudioClip) { t.addClipRT(c, grown) })
	if err := t.session.tsar.Process(op); err != nil {
		return fmt.Errorf("add clip %v to %v: %w", clip.name, t.name, err)
	}
	if grown != nil {
		t.rtCap = cap(grown)
	}
	if index < 0 || index > len(t.clips) {
		index = len(t.clips)
	}
	clip.track = t
	t.clips = slices.Insert(t.clips, index, clip)
	return nil
}

// RemoveClip takes clip off the track and returns the index it had.
func (t *Track) RemoveClip(clip *AudioClip) (int, error) {
	i := slices.Index(t.clips, clip)
	if i < 0 {
		return -1, fmt.Errorf("%w: %v not on %v", ErrClipNotOnTrack, clip.name, t.name)
	}
	op := tsar.RemoveOperation("remove_clip", t, clip, (*Track).removeClipRT)
	if err := t.session.tsar.Process(op); err != nil {
		return -1, fmt.Errorf("remove clip %v from %v: %w", clip.name, t.name, err)
	}
	clip.track = nil
	t.clips = slices.Delete(t.clips, i, i+1)
	return i, nil
}

// Close closes the clips on the track. Call it only for a track that has been
// removed from its session and whose removal has been confirmed.
func (t *Track) Close() error {
	var errs []error
	for _, c := range t.clips {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (t *Track) addClipRT(clip *AudioClip, grown []*AudioClip) {
	t.rtClips = append(adoptRT(t.rtClips, grown), clip)
}

func (t *Track) removeClipRT(clip *AudioClip) {
	if i := slices.Index(t.rtClips, clip); i >= 0 {
		t.rtClips = slices.Delete(t.rtClips, i, i+1)
	}
}

// process mixes the track into out. Runs on the audio goroutine.
func (t *Track) process(out traverso.AudioBuffer, pos traverso.TimeRef, rate int) {
	if t.muted.Load() || len(t.rtClips) == 0 {
		return
	}
	n := min(len(out), len(t.scratch))
	mix := t.scratch[:n]
	mix.Clear()
	for _, c := range t.rtClips {
		c.process(mix, t.clipScratch, pos, rate)
	}
	t.applyGainPan(mix)
	vek32.Add_Inplace(out[:n], mix)
}

func (t *Track) applyGainPan(buf traverso.AudioBuffer) {
	gain, pan := t.gain.Load(), t.pan.Load()
	if pan == 0 {
		if gain != 1 {
			vek32.MulNumber_Inplace(buf, gain)
		}
		return
	}
	left := gain * min(1, 1-pan)
	right := gain * min(1, 1+pan)
	for i := 0; i+1 < len(buf); i += traverso.NumChannels {
		buf[i] *= left
		buf[i+1] *= right
	}
}
