package commands

import (
	"errors"
	"fmt"
	"math"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// MoveMode selects what MoveClip does with the clips.
type MoveMode int

const (
	ModeMove MoveMode = iota
	ModeCopy
	ModeToStart
	ModeToEnd
)

// TrackHeight is the vertical distance, in pixels, between two tracks; a
// vertical jog of this many pixels moves clips to the neighbouring track.
const TrackHeight = 60.0

var moveModeNames = map[string]MoveMode{
	"move":          ModeMove,
	"copy":          ModeCopy,
	"move_to_start": ModeToStart,
	"move_to_end":   ModeToEnd,
}

// ParseMoveMode converts a MoveClip argument to a MoveMode.
func ParseMoveMode(s string) (MoveMode, error) {
	if m, ok := moveModeNames[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown move mode %q", s)
}

// MoveClip moves (or copies and moves) a clip, or all selected clips when the
// clip is selected. Move and copy follow a hold gesture: horizontal jog
// changes the position, vertical jog the track. Move to start/end is a one
// shot command.
type MoveClip struct {
	command.HoldBase
	session      *core.Session
	clips        []*core.AudioClip
	group        *core.AudioClipGroup
	mode         MoveMode
	verticalOnly bool

	dx, dy  float64
	delta   traverso.TimeRef
	shift   int
	applied bool
}

// NewMoveClip creates a MoveClip for clip.
func NewMoveClip(session *core.Session, clip *core.AudioClip, mode MoveMode, verticalOnly bool) *MoveClip {
	clips := []*core.AudioClip{clip}
	if clip.IsSelected() {
		clips = session.ClipManager().Selected()
	}
	desc := "Move Clip"
	switch mode {
	case ModeCopy:
		desc = "Copy Clip"
	case ModeToStart:
		desc = "Move Clip To Start"
	case ModeToEnd:
		desc = "Move Clip To End"
	}
	return &MoveClip{
		HoldBase:     command.NewHoldBase(desc, true),
		session:      session,
		clips:        clips,
		mode:         mode,
		verticalOnly: verticalOnly,
	}
}

func (m *MoveClip) IsHoldCommand() bool {
	return m.mode == ModeMove || m.mode == ModeCopy
}

// Clips returns the clips being moved; for a copy these are the copies.
func (m *MoveClip) Clips() []*core.AudioClip { return m.group.Clips() }

func (m *MoveClip) Prepare() error {
	if len(m.clips) == 0 {
		return command.Preconditionf("%s: no clips", m.Description())
	}
	for _, c := range m.clips {
		if c.Track() == nil || !m.session.HasTrack(c.Track()) {
			return command.Preconditionf("%s: clip %v is not on a track of the session", m.Description(), c.Name())
		}
	}
	if m.mode != ModeCopy {
		m.group = core.NewAudioClipGroup(m.clips...)
	} else {
		m.group = &core.AudioClipGroup{}
		for _, c := range m.clips {
			m.group.Add(c.Copy(), c.Track())
		}
	}
	switch m.mode {
	case ModeToStart:
		m.delta = -m.group.Start()
	case ModeToEnd:
		m.delta = m.trackEnd() - m.group.Start()
	}
	return nil
}

// trackEnd is the end of the last clip, outside the group, on the track of
// the first clip.
func (m *MoveClip) trackEnd() traverso.TimeRef {
	var end traverso.TimeRef
	moving := make(map[*core.AudioClip]bool, len(m.clips))
	for _, c := range m.clips {
		moving[c] = true
	}
	for _, c := range m.clips[0].Track().Clips() {
		if !moving[c] {
			end = max(end, c.TrackEnd())
		}
	}
	return end
}

func (m *MoveClip) BeginHold() error {
	if m.mode == ModeCopy {
		if err := m.group.AddToTracks(); err != nil {
			return err
		}
	}
	m.applied = true
	return nil
}

func (m *MoveClip) Jog(ev command.JogEvent) error {
	m.dx += ev.DX
	m.dy += ev.DY
	if !m.verticalOnly {
		m.delta = m.session.PixelsToTimeRef(m.dx)
		m.group.Offset(m.delta)
	}
	if shift := int(math.Round(m.dy / TrackHeight)); shift != m.shift {
		if err := m.group.ShiftTracks(shift); err != nil {
			return err
		}
		m.shift = shift
	}
	return nil
}

// ops is the most Tsar operations Do or Undo queues: a remove and an add per
// clip changing track, plus an add or remove per copy.
func (m *MoveClip) ops() int {
	n := 0
	if m.shift != 0 {
		n = 2 * m.group.Len()
	}
	if m.mode == ModeCopy {
		n += m.group.Len()
	}
	return n
}

func (m *MoveClip) Do() error {
	if err := m.session.Tsar().Reserve(m.ops()); err != nil {
		return fmt.Errorf("%s: %w", m.Description(), err)
	}
	if m.mode == ModeCopy {
		if err := m.group.AddToTracks(); err != nil {
			return err
		}
	}
	m.group.Offset(m.delta)
	if err := m.group.ShiftTracks(m.shift); err != nil {
		m.group.Offset(0)
		if m.mode == ModeCopy {
			err = errors.Join(err, m.group.RemoveFromTracks())
		}
		return err
	}
	m.applied = true
	return nil
}

func (m *MoveClip) Undo() error {
	if err := m.session.Tsar().Reserve(m.ops()); err != nil {
		return fmt.Errorf("undo %s: %w", m.Description(), err)
	}
	m.group.Offset(0)
	if err := m.group.ShiftTracks(0); err != nil {
		m.group.Offset(m.delta)
		return err
	}
	if m.mode == ModeCopy {
		if err := m.group.RemoveFromTracks(); err != nil {
			m.group.Offset(m.delta)
			return errors.Join(err, m.group.ShiftTracks(m.shift))
		}
	}
	m.applied = false
	return nil
}

// Close destroys the copies if they are not on a track.
func (m *MoveClip) Close() error {
	if m.mode != ModeCopy || m.group == nil || m.applied {
		return nil
	}
	for _, c := range m.group.Clips() {
		if c.Track() == nil {
			m.session.Tsar().DestroyWhenSettled(c, func() { c.Close() })
		}
	}
	return nil
}
