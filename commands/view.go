package commands

import (
	"math"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// DefaultZoomStep is the horizontal jog distance, in pixels, of one zoom
// level.
const DefaultZoomStep = 40.0

// Zoom changes the horizontal zoom level of a session. It is not recorded in
// the history. As a hold command it follows horizontal jog; otherwise it
// changes the level by a fixed number of steps.
type Zoom struct {
	command.HoldBase
	session *core.Session
	hold    bool
	step    float64
	steps   int
	orig    int
	dx      float64
}

// NewJogZoom creates a hold zoom: moving right by step pixels zooms in one
// level.
func NewJogZoom(session *core.Session, step float64) *Zoom {
	if step <= 0 {
		step = DefaultZoomStep
	}
	return &Zoom{HoldBase: command.NewHoldBase("Zoom", false), session: session, hold: true, step: step}
}

// NewZoomStep creates a one shot zoom by steps levels; negative steps zoom in.
func NewZoomStep(session *core.Session, steps int) *Zoom {
	desc := "Horizontal Out"
	if steps < 0 {
		desc = "Horizontal In"
	}
	return &Zoom{HoldBase: command.NewHoldBase(desc, false), session: session, steps: steps}
}

func (z *Zoom) IsHoldCommand() bool { return z.hold }

func (z *Zoom) Prepare() error {
	z.orig = z.session.HZoom()
	return nil
}

func (z *Zoom) Jog(ev command.JogEvent) error {
	z.dx += ev.DX
	z.steps = -int(z.dx / z.step)
	z.session.SetHZoom(z.orig + z.steps)
	return nil
}

func (z *Zoom) Do() error {
	z.session.SetHZoom(z.orig + z.steps)
	return nil
}

func (z *Zoom) Undo() error {
	z.session.SetHZoom(z.orig)
	return nil
}

// WorkCursorMove drags the work cursor of a session. It is not recorded in
// the history.
type WorkCursorMove struct {
	command.HoldBase
	session *core.Session
	orig    traverso.TimeRef
	pos     traverso.TimeRef
	dx      float64
}

func NewWorkCursorMove(session *core.Session) *WorkCursorMove {
	return &WorkCursorMove{HoldBase: command.NewHoldBase("Move Work Cursor", false), session: session}
}

func (w *WorkCursorMove) Prepare() error {
	w.orig = w.session.WorkCursor()
	w.pos = w.orig
	return nil
}

func (w *WorkCursorMove) Jog(ev command.JogEvent) error {
	w.dx += ev.DX
	w.pos = max(w.orig+w.session.PixelsToTimeRef(w.dx), 0)
	w.session.SetWorkCursor(w.pos)
	return nil
}

func (w *WorkCursorMove) Do() error {
	w.session.SetWorkCursor(w.pos)
	return nil
}

func (w *WorkCursorMove) Undo() error {
	w.session.SetWorkCursor(w.orig)
	return nil
}

// MoveTrack moves a track up or down in its session by vertical jog.
type MoveTrack struct {
	command.HoldBase
	track *core.Track
	orig  int
	index int
	dy    float64
}

func NewMoveTrack(track *core.Track) *MoveTrack {
	return &MoveTrack{HoldBase: command.NewHoldBase("Move Up/Down", true), track: track}
}

func (m *MoveTrack) Prepare() error {
	m.orig = m.track.Session().TrackIndex(m.track)
	if m.orig < 0 {
		return command.Preconditionf("%s: %v", m.Description(), core.ErrTrackNotInSession)
	}
	m.index = m.orig
	return nil
}

func (m *MoveTrack) Jog(ev command.JogEvent) error {
	m.dy += ev.DY
	index := m.orig + int(math.Round(m.dy/TrackHeight))
	index = max(min(index, m.track.Session().NumTracks()-1), 0)
	if index == m.index {
		return nil
	}
	m.index = index
	return m.track.Session().MoveTrack(m.track, index)
}

func (m *MoveTrack) Do() error {
	return m.track.Session().MoveTrack(m.track, m.index)
}

func (m *MoveTrack) Undo() error {
	return m.track.Session().MoveTrack(m.track, m.orig)
}
