package core

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/tsar"
)

type (
	// Session (a sheet) is a set of tracks mixed into a master bus, with its
	// own undo history.
	Session struct {
		id      uuid.UUID
		title   string
		rate    int
		tsar    *tsar.Tsar
		history *command.History
		logger  *slog.Logger
		peaks   *PeakCache

		bufferFrames int
		master       *Track
		tracks       []*Track // GUI goroutine
		rtCap        int      // capacity of rtTracks once the queued operations ran
		rtTracks     []*Track // audio goroutine
		clips        *ClipManager

		changed    bool
		hzoom      int
		workCursor traverso.TimeRef

		playing   atomic.Bool
		transport atomic.Int64
	}

	// SessionConfig holds the parameters of NewSession. Zero values select
	// the defaults.
	SessionConfig struct {
		Title        string
		Rate         int
		BufferFrames int
		HistoryLimit int
		PeakCacheTTL time.Duration
		Logger       *slog.Logger
	}
)

const (
	DefaultRate         = 44100
	DefaultBufferFrames = 512
	DefaultHZoom        = 8
	MaxHZoom            = 20
)

// NewSession creates an empty session whose structural changes go through ts.
func NewSession(ts *tsar.Tsar, cfg SessionConfig) *Session {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.BufferFrames <= 0 {
		cfg.BufferFrames = DefaultBufferFrames
	}
	if cfg.Title == "" {
		cfg.Title = "Untitled"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Session{
		id:           uuid.New(),
		title:        cfg.Title,
		rate:         cfg.Rate,
		tsar:         ts,
		logger:       cfg.Logger.With("session", cfg.Title),
		peaks:        NewPeakCache(cfg.PeakCacheTTL),
		bufferFrames: cfg.BufferFrames,
		rtCap:        rtListCapacity,
		rtTracks:     make([]*Track, 0, rtListCapacity),
		hzoom:        DefaultHZoom,
	}
	s.history = command.NewHistory(cfg.HistoryLimit, func() { s.changed = true })
	s.master = NewTrack(s, "Master")
	s.master.master = true
	s.clips = &ClipManager{session: s}
	return s
}

func (s *Session) Kind() Kind { return KindSession }
func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Name() string { return s.title }
func (s *Session) SetTitle(title string) { s.title = title }
func (s *Session) Rate() int { return s.rate }
func (s *Session) BufferFrames() int { return s.bufferFrames }
func (s *Session) Tsar() *tsar.Tsar { return s.tsar }
func (s *Session) History() *command.History { return s.history }
func (s *Session) Logger() *slog.Logger { return s.logger }
func (s *Session) Peaks() *PeakCache { return s.peaks }
func (s *Session) Master() *Track { return s.master }
func (s *Session) ClipManager() *ClipManager { return s.clips }
func (s *Session) IsChanged() bool { return s.changed }
func (s *Session) SetChanged(changed bool) { s.changed = changed }
func (s *Session) HZoom() int { return s.hzoom }
func (s *Session) SetHZoom(z int) { s.hzoom = max(min(z, MaxHZoom), 0) }
func (s *Session) WorkCursor() traverso.TimeRef { return s.workCursor }
func (s *Session) SetWorkCursor(pos traverso.TimeRef) {
	s.workCursor = max(pos, 0)
}

// PixelsToTimeRef converts a horizontal distance in pixels to a duration at
// the current zoom level, where one pixel covers 2^hzoom frames.
func (s *Session) PixelsToTimeRef(px float64) traverso.TimeRef {
	return traverso.FramesToTimeRef(int64(math.Round(px*float64(int64(1)<<s.hzoom))), s.rate)
}

// Tracks returns a copy of the track list as seen by the GUI goroutine.
func (s *Session) Tracks() []*Track { return slices.Clone(s.tracks) }

func (s *Session) NumTracks() int { return len(s.tracks) }

// TrackIndex returns the index of t, or -1.
func (s *Session) TrackIndex(t *Track) int { return slices.Index(s.tracks, t) }

func (s *Session) HasTrack(t *Track) bool { return s.TrackIndex(t) >= 0 }

func (s *Session) TrackByID(id uuid.UUID) (*Track, bool) {
	if s.master.id == id {
		return s.master, true
	}
	for _, t := range s.tracks {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

func (s *Session) ClipByID(id uuid.UUID) (*AudioClip, bool) {
	for _, t := range s.tracks {
		for _, c := range t.clips {
			if c.id == id {
				return c, true
			}
		}
	}
	return nil, false
}

// End returns the end of the last clip of the session.
func (s *Session) End() traverso.TimeRef {
	var end traverso.TimeRef
	for _, t := range s.tracks {
		end = max(end, t.End())
	}
	return end
}

// AddTrack inserts t at index (appending if index is out of range).
func (s *Session) AddTrack(t *Track, index int) error {
	if t.master {
		return ErrMasterTrack
	}
	if s.HasTrack(t) {
		return fmt.Errorf("%w: %v", ErrTrackInSession, t.name)
	}
	if index < 0 || index > len(s.tracks) {
		index = len(s.tracks)
	}
	grown := growRT[*Track](len(s.tracks), s.rtCap)
	op := tsar.AddOperation("add_track", s, t, func(s *Session, t *Track) { s.addTrackRT(t, grown) })
	if err := s.tsar.Process(op); err != nil {
		return fmt.Errorf("add track %v: %w", t.name, err)
	}
	if grown != nil {
		s.rtCap = cap(grown)
	}
	s.tracks = slices.Insert(s.tracks, index, t)
	return nil
}

// RemoveTrack takes t out of the session and returns the index it had.
func (s *Session) RemoveTrack(t *Track) (int, error) {
	if t.master {
		return -1, ErrMasterTrack
	}
	i := s.TrackIndex(t)
	if i < 0 {
		return -1, fmt.Errorf("%w: %v", ErrTrackNotInSession, t.name)
	}
	op := tsar.RemoveOperation("remove_track", s, t, (*Session).removeTrackRT)
	if err := s.tsar.Process(op); err != nil {
		return -1, fmt.Errorf("remove track %v: %w", t.name, err)
	}
	s.tracks = slices.Delete(s.tracks, i, i+1)
	return i, nil
}

// MoveTrack moves t to index without touching the audio path; the order of
// tracks does not change the mix.
func (s *Session) MoveTrack(t *Track, index int) error {
	i := s.TrackIndex(t)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrTrackNotInSession, t.name)
	}
	index = max(min(index, len(s.tracks)-1), 0)
	s.tracks = slices.Delete(s.tracks, i, i+1)
	s.tracks = slices.Insert(s.tracks, index, t)
	return nil
}

func (s *Session) addTrackRT(t *Track, grown []*Track) {
	s.rtTracks = append(adoptRT(s.rtTracks, grown), t)
}

func (s *Session) removeTrackRT(t *Track) {
	if i := slices.Index(s.rtTracks, t); i >= 0 {
		s.rtTracks = slices.Delete(s.rtTracks, i, i+1)
	}
}

// Start starts the transport from pos.
func (s *Session) Start(pos traverso.TimeRef) {
	s.transport.Store(int64(max(pos, 0)))
	s.playing.Store(true)
}

func (s *Session) Stop() { s.playing.Store(false) }
func (s *Session) IsPlaying() bool { return s.playing.Load() }

// TransportPosition is the position of the next block to be rendered.
func (s *Session) TransportPosition() traverso.TimeRef {
	return traverso.TimeRef(s.transport.Load())
}

// Process renders the next block into buf and advances the transport. It
// runs on the audio goroutine, after the Tsar has been drained for the block.
func (s *Session) Process(buf traverso.AudioBuffer) {
	buf.Clear()
	if !s.playing.Load() {
		return
	}
	pos := traverso.TimeRef(s.transport.Load())
	for _, t := range s.rtTracks {
		t.process(buf, pos, s.rate)
	}
	s.master.applyGainPan(buf)
	s.transport.Store(int64(pos + traverso.FramesToTimeRef(int64(buf.Frames()), s.rate)))
}

// Close discards the history and closes every track. The audio goroutine must
// no longer call Process.
func (s *Session) Close() error {
	s.history.Clear()
	errs := []error{s.master.Close()}
	for _, t := range s.tracks {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}
