package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
	"github.com/vsariola/traverso/tsar"
)

const rate = 44100

func newSession(t *testing.T, realtime bool) *core.Session {
	t.Helper()
	ts := tsar.New(16, nil)
	ts.SetRealtime(realtime)
	return core.NewSession(ts, core.SessionConfig{Rate: rate, BufferFrames: 64})
}

func constantSource(name string, frames int, v float32) *traverso.MemorySource {
	data := make(traverso.AudioBuffer, frames*traverso.NumChannels)
	for i := range data {
		data[i] = v
	}
	return traverso.NewMemorySource(name, rate, data)
}

func addTrack(t *testing.T, s *core.Session, name string) *core.Track {
	t.Helper()
	track := core.NewTrack(s, name)
	require.NoError(t, s.AddTrack(track, -1))
	return track
}

func frames(n int64) traverso.TimeRef { return traverso.FramesToTimeRef(n, rate) }

func TestAddClipReachesAudioPathAfterDrain(t *testing.T) {
	s := newSession(t, true)
	track := addTrack(t, s, "Audio 1")
	clip := core.NewAudioClip("a", constantSource("a", 8, 0.5))
	require.NoError(t, track.AddClip(clip))

	assert.True(t, track.HasClip(clip))
	assert.True(t, s.Tsar().Pending(clip))
	snap := s.Snapshot()
	assert.Empty(t, snap.RealtimeTracks, "track must not reach the audio path before the drain")

	assert.Equal(t, 2, s.Tsar().AddRemoveItemsInAudioProcessingPath())
	assert.Equal(t, 2, s.Tsar().FinishProcessedObjects())
	snap = s.Snapshot()
	require.Len(t, snap.Tracks, 1)
	assert.Equal(t, []uuid.UUID{clip.ID()}, snap.Tracks[0].RealtimeClips)
	assert.False(t, s.Tsar().Pending(clip))
}

func TestMasterTrackCannotBeRemoved(t *testing.T) {
	s := newSession(t, false)
	_, err := s.RemoveTrack(s.Master())
	assert.ErrorIs(t, err, core.ErrMasterTrack)
	assert.ErrorIs(t, s.AddTrack(s.Master(), 0), core.ErrMasterTrack)
}

func TestRemoveTrackReturnsIndex(t *testing.T) {
	s := newSession(t, false)
	a := addTrack(t, s, "a")
	b := addTrack(t, s, "b")
	i, err := s.RemoveTrack(a)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, []*core.Track{b}, s.Tracks())
	_, err = s.RemoveTrack(a)
	assert.ErrorIs(t, err, core.ErrTrackNotInSession)
	require.NoError(t, s.AddTrack(a, i))
	assert.Equal(t, []*core.Track{a, b}, s.Tracks())
}

func TestSessionProcessMixesClips(t *testing.T) {
	s := newSession(t, false)
	track := addTrack(t, s, "Audio 1")
	clip := core.NewAudioClip("a", constantSource("a", 8, 0.5))
	clip.SetTrackStart(frames(2))
	require.NoError(t, track.AddClip(clip))

	buf := make(traverso.AudioBuffer, 4*traverso.NumChannels)
	s.Process(buf)
	assert.Equal(t, traverso.AudioBuffer{0, 0, 0, 0, 0, 0, 0, 0}, buf, "stopped transport renders silence")

	s.Start(0)
	s.Process(buf)
	assert.Equal(t, traverso.AudioBuffer{0, 0, 0, 0, 0.5, 0.5, 0.5, 0.5}, buf)
	assert.Equal(t, frames(4), s.TransportPosition())

	track.SetGain(0.5)
	s.Process(buf)
	assert.Equal(t, traverso.AudioBuffer{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}, buf)

	track.SetMuted(true)
	s.Process(buf)
	assert.Equal(t, traverso.AudioBuffer{0, 0, 0, 0, 0, 0, 0, 0}, buf)
}

func TestSplitClip(t *testing.T) {
	src := constantSource("a", 100, 1)
	clip := core.NewAudioClip("a", src)
	clip.SetTrackStart(frames(10))

	_, _, err := clip.Split(frames(10))
	assert.Error(t, err)
	left, right, err := clip.Split(frames(40))
	require.NoError(t, err)
	assert.Equal(t, frames(10), left.TrackStart())
	assert.Equal(t, frames(30), left.Length())
	assert.Equal(t, frames(40), right.TrackStart())
	assert.Equal(t, frames(30), right.SourceStart())
	assert.Equal(t, frames(70), right.Length())
	assert.Equal(t, clip.TrackEnd(), right.TrackEnd())

	require.NoError(t, clip.Close())
	require.NoError(t, left.Close())
	assert.False(t, src.Closed(), "source is shared with the right half")
	require.NoError(t, right.Close())
	assert.True(t, src.Closed())
}

func TestPeakCacheAndNormalization(t *testing.T) {
	data := traverso.AudioBuffer{0.1, -0.5, 0.25, 0.2}
	src := traverso.NewMemorySource("p", rate, data)
	peaks := core.NewPeakCache(0)
	peak, err := peaks.Peak(src)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), peak)
	assert.Equal(t, 1, peaks.Len())
	assert.Equal(t, traverso.AudioBuffer{0.1, -0.5, 0.25, 0.2}, src.Samples(), "source data must not be modified")

	f, err := core.NewAudioClip("p", src).NormalizationFactor(0, peaks)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, f, 1e-6)

	f, err = core.NewAudioClip("s", traverso.NewSilentSource(traverso.Second, rate)).NormalizationFactor(0, peaks)
	require.NoError(t, err)
	assert.Equal(t, float32(1), f, "silence is left alone")
}

func TestClipGroupRemoveAndAddRestoresOrder(t *testing.T) {
	s := newSession(t, false)
	a := addTrack(t, s, "a")
	b := addTrack(t, s, "b")
	var clips []*core.AudioClip
	for _, name := range []string{"1", "2", "3"} {
		c := core.NewAudioClip(name, constantSource(name, 8, 0))
		require.NoError(t, a.AddClip(c))
		clips = append(clips, c)
	}
	c4 := core.NewAudioClip("4", constantSource("4", 8, 0))
	require.NoError(t, b.AddClip(c4))
	before := s.Snapshot()

	g := core.NewAudioClipGroup(clips[0], clips[2], c4)
	require.NoError(t, g.RemoveFromTracks())
	assert.Equal(t, []*core.AudioClip{clips[1]}, a.Clips())
	assert.Empty(t, b.Clips())
	require.NoError(t, g.AddToTracks())
	assert.Equal(t, before, s.Snapshot())
}

func TestClipGroupOffsetAndShift(t *testing.T) {
	s := newSession(t, false)
	a := addTrack(t, s, "a")
	b := addTrack(t, s, "b")
	c := core.NewAudioClip("c", constantSource("c", 8, 0))
	c.SetTrackStart(frames(4))
	require.NoError(t, a.AddClip(c))

	g := core.NewAudioClipGroup(c)
	g.Offset(frames(-10))
	assert.Equal(t, traverso.TimeRef(0), c.TrackStart(), "clamped to the timeline start")
	g.Offset(frames(6))
	assert.Equal(t, frames(10), c.TrackStart())

	require.NoError(t, g.ShiftTracks(5))
	assert.Equal(t, b, c.Track())
	require.NoError(t, g.ShiftTracks(0))
	assert.Equal(t, a, c.Track())
	assert.Equal(t, frames(4), g.Start())
	assert.Equal(t, frames(12), g.End())
}

func TestClipManager(t *testing.T) {
	s := newSession(t, false)
	a := addTrack(t, s, "a")
	c1 := core.NewAudioClip("1", constantSource("1", 8, 0))
	c2 := core.NewAudioClip("2", constantSource("2", 8, 0))
	require.NoError(t, a.AddClip(c1))
	require.NoError(t, a.AddClip(c2))

	m := s.ClipManager()
	m.Toggle(c2)
	assert.Equal(t, []*core.AudioClip{c2}, m.Selected())
	m.SelectAll()
	assert.Equal(t, []*core.AudioClip{c2, c1}, m.Selected())
	assert.True(t, c1.IsSelected())

	_, err := a.RemoveClip(c1)
	require.NoError(t, err)
	m.Prune()
	assert.Equal(t, []*core.AudioClip{c2}, m.Selected())
	m.DeselectAll()
	assert.Empty(t, m.Selected())
	assert.False(t, c2.IsSelected())
}

func TestHistoryMarksSessionChanged(t *testing.T) {
	s := newSession(t, false)
	assert.False(t, s.IsChanged())
	var gain float32
	s.History().Push(command.NewProperty("gain", func(v float32) { gain = v }, 1, 0))
	assert.True(t, s.IsChanged())
	s.SetChanged(false)
	require.NoError(t, s.History().Undo())
	assert.True(t, s.IsChanged())
	assert.Equal(t, float32(0), gain)
}
