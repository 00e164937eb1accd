package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/tsar"
)

func newRTSession(capacity int) *Session {
	return NewSession(tsar.New(capacity, nil), SessionConfig{Rate: 44100, BufferFrames: 64})
}

func newRTClip(i int) *AudioClip {
	name := fmt.Sprintf("clip %d", i)
	return NewAudioClip(name, traverso.NewMemorySource(name, 44100, make(traverso.AudioBuffer, 8*traverso.NumChannels)))
}

func TestClipSlotDoesNotAllocate(t *testing.T) {
	tr := NewTrack(newRTSession(16), "Audio 1")
	full := make([]*AudioClip, rtListCapacity)
	for i := range full {
		full[i] = newRTClip(i)
	}
	c := newRTClip(rtListCapacity)
	grown := growRT[*AudioClip](len(full), rtListCapacity)
	require.NotNil(t, grown)

	assert.Zero(t, testing.AllocsPerRun(100, func() {
		tr.rtClips = full[:rtListCapacity-1]
		tr.addClipRT(c, nil)
	}))
	assert.Zero(t, testing.AllocsPerRun(100, func() {
		tr.rtClips = full
		tr.addClipRT(c, grown[:0])
	}), "a full list moves into the array grown by the GUI goroutine")
	assert.Len(t, tr.rtClips, rtListCapacity+1)
}

func TestRealtimeListsGrowOnGUISide(t *testing.T) {
	s := newRTSession(1024)
	tr := NewTrack(s, "Audio 1")
	require.NoError(t, s.AddTrack(tr, -1))
	n := 3*rtListCapacity + 5
	for i := range n {
		require.NoError(t, tr.AddClip(newRTClip(i)))
	}
	assert.Empty(t, tr.rtClips, "nothing runs before the audio path drains")
	assert.Greater(t, tr.rtCap, n)

	s.tsar.AddRemoveItemsInAudioProcessingPath()
	s.tsar.FinishProcessedObjects()
	assert.Equal(t, tr.clips, tr.rtClips)
	assert.Equal(t, tr.rtCap, cap(tr.rtClips), "the audio goroutine never grows the list itself")

	for i := range rtListCapacity + 1 {
		require.NoError(t, s.AddTrack(NewTrack(s, fmt.Sprintf("Audio %d", i+2)), -1))
	}
	s.tsar.AddRemoveItemsInAudioProcessingPath()
	s.tsar.FinishProcessedObjects()
	assert.Equal(t, s.tracks, s.rtTracks)
	assert.Equal(t, s.rtCap, cap(s.rtTracks))
}

func TestRealtimeListsSurviveRemovals(t *testing.T) {
	s := newRTSession(1024)
	tr := NewTrack(s, "Audio 1")
	require.NoError(t, s.AddTrack(tr, -1))
	var clips []*AudioClip
	for i := range rtListCapacity {
		c := newRTClip(i)
		clips = append(clips, c)
		require.NoError(t, tr.AddClip(c))
	}
	for _, c := range clips[:10] {
		_, err := tr.RemoveClip(c)
		require.NoError(t, err)
	}
	for i := range 20 {
		require.NoError(t, tr.AddClip(newRTClip(100+i)))
	}
	s.tsar.AddRemoveItemsInAudioProcessingPath()
	s.tsar.FinishProcessedObjects()
	assert.Equal(t, tr.clips, tr.rtClips)
	assert.LessOrEqual(t, len(tr.rtClips), cap(tr.rtClips))
	assert.Equal(t, tr.rtCap, cap(tr.rtClips))
}
