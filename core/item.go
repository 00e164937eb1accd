package core

import (
	"errors"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
)

type (
	// Kind identifies the concrete type of a ContextItem.
	Kind int

	// ContextItem is an object commands can be dispatched on. It is
	// implemented by *Session, *Track and *AudioClip only.
	ContextItem interface {
		Kind() Kind
		ID() uuid.UUID
		Name() string
		contextItem()
	}

	atomicFloat32 struct {
		bits atomic.Uint32
	}
)

const (
	KindSession Kind = iota
	KindTrack
	KindClip
)

var (
	ErrClipNotOnTrack    = errors.New("clip is not on the track")
	ErrClipOnOtherTrack  = errors.New("clip already belongs to another track")
	ErrTrackNotInSession = errors.New("track is not in the session")
	ErrTrackInSession    = errors.New("track is already in the session")
	ErrMasterTrack       = errors.New("the master track cannot be added or removed")
)

func (k Kind) String() string {
	switch k {
	case KindSession:
		return "Session"
	case KindTrack:
		return "Track"
	case KindClip:
		return "AudioClip"
	default:
		return "Unknown"
	}
}

func (s *Session) contextItem() {}
func (t *Track) contextItem() {}
func (c *AudioClip) contextItem() {}

func (f *atomicFloat32) Load() float32 {
	return math.Float32frombits(f.bits.Load())
}

func (f *atomicFloat32) Store(v float32) {
	f.bits.Store(math.Float32bits(v))
}

// growRT returns a bigger backing array for a realtime list that holds n
// elements and is about to get one more, or nil if it still fits in
// capacity. It runs on the GUI goroutine; the array travels to the audio
// goroutine with the add operation, which then appends without allocating.
func growRT[T any](n, capacity int) []T {
	if n < capacity {
		return nil
	}
	return make([]T, 0, 2*max(capacity, n+1))
}

// adoptRT moves list into grown, if there is one. Runs on the audio goroutine.
func adoptRT[T any](list, grown []T) []T {
	if grown == nil {
		return list
	}
	return append(grown, list...)
}
