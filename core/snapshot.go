package core

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/vsariola/traverso"
)

type (
	// SessionSnapshot is the observable state of a session, comparable with
	// reflect.DeepEqual.
	SessionSnapshot struct {
		Title      string
		HZoom      int
		WorkCursor traverso.TimeRef
		Master     TrackSnapshot
		Tracks     []TrackSnapshot
		// RealtimeTracks lists the tracks of the audio path, sorted by ID.
		RealtimeTracks []uuid.UUID
		Selected       []uuid.UUID
	}

	TrackSnapshot struct {
		ID    uuid.UUID
		Name  string
		Gain  float32
		Pan   float32
		Muted bool
		Armed bool
		Clips []ClipSnapshot
		// RealtimeClips lists the clips of the audio path, sorted by ID.
		RealtimeClips []uuid.UUID
	}

	ClipSnapshot struct {
		ID          uuid.UUID
		Name        string
		TrackStart  traverso.TimeRef
		SourceStart traverso.TimeRef
		Length      traverso.TimeRef
		Gain        float32
	}
)

// Snapshot captures the state of the session. It reads the realtime lists,
// so it must only be called while the audio goroutine is not rendering.
func (s *Session) Snapshot() SessionSnapshot {
	ret := SessionSnapshot{
		Title:      s.title,
		HZoom:      s.hzoom,
		WorkCursor: s.workCursor,
		Master:     s.master.snapshot(),
	}
	for _, t := range s.tracks {
		ret.Tracks = append(ret.Tracks, t.snapshot())
	}
	for _, t := range s.rtTracks {
		ret.RealtimeTracks = append(ret.RealtimeTracks, t.id)
	}
	slices.SortFunc(ret.RealtimeTracks, compareIDs)
	for _, c := range s.clips.selected {
		ret.Selected = append(ret.Selected, c.id)
	}
	return ret
}

func (t *Track) snapshot() TrackSnapshot {
	ret := TrackSnapshot{ID: t.id, Name: t.name, Gain: t.Gain(), Pan: t.Pan(), Muted: t.IsMuted(), Armed: t.IsArmed()}
	for _, c := range t.clips {
		ret.Clips = append(ret.Clips, ClipSnapshot{
			ID:          c.id,
			Name:        c.name,
			TrackStart:  c.TrackStart(),
			SourceStart: c.SourceStart(),
			Length:      c.Length(),
			Gain:        c.Gain(),
		})
	}
	for _, c := range t.rtClips {
		ret.RealtimeClips = append(ret.RealtimeClips, c.id)
	}
	slices.SortFunc(ret.RealtimeClips, compareIDs)
	return ret
}

func compareIDs(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) }
