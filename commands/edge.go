package commands

import (
	"fmt"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// Edge is the end of a clip that MoveEdge drags.
type Edge int

const (
	LeftEdge Edge = iota
	RightEdge
)

func (e Edge) String() string {
	if e == LeftEdge {
		return "left"
	}
	return "right"
}

// ParseEdge converts a MoveEdge argument to an Edge.
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "left":
		return LeftEdge, nil
	case "right":
		return RightEdge, nil
	}
	return 0, fmt.Errorf("unknown edge %q", s)
}

// region is the placement of a clip on its track and in its source.
type region struct {
	trackStart, sourceStart, length traverso.TimeRef
}

func regionOf(c *core.AudioClip) region {
	return region{trackStart: c.TrackStart(), sourceStart: c.SourceStart(), length: c.Length()}
}

func (r region) applyTo(c *core.AudioClip) error {
	if err := c.SetRegion(r.sourceStart, r.length); err != nil {
		return err
	}
	c.SetTrackStart(r.trackStart)
	return nil
}

// clipOnSession checks that clip is on a track of session.
func clipOnSession(desc string, session *core.Session, clip *core.AudioClip) error {
	if clip.Track() == nil || !session.HasTrack(clip.Track()) {
		return command.Preconditionf("%s: clip %v is not on a track of the session", desc, clip.Name())
	}
	return nil
}

// MoveEdge drags the left or right edge of a clip with horizontal jog. The
// left edge moves the start of the clip on the track and in the source
// together, so the audio under the right part does not move. The clip never
// grows past its source nor shrinks below one frame.
type MoveEdge struct {
	command.HoldBase
	session   *core.Session
	clip      *core.AudioClip
	edge      Edge
	dx        float64
	orig, cur region
}

func NewMoveEdge(session *core.Session, clip *core.AudioClip, edge Edge) *MoveEdge {
	return &MoveEdge{HoldBase: command.NewHoldBase("Move Edge", true), session: session, clip: clip, edge: edge}
}

// NearestEdge returns the edge of clip closer to the timeline position at.
func NearestEdge(clip *core.AudioClip, at traverso.TimeRef) Edge {
	if at-clip.TrackStart() <= clip.TrackEnd()-at {
		return LeftEdge
	}
	return RightEdge
}

func (m *MoveEdge) Edge() Edge { return m.edge }

func (m *MoveEdge) Prepare() error {
	if err := clipOnSession(m.Description(), m.session, m.clip); err != nil {
		return err
	}
	m.orig = regionOf(m.clip)
	m.cur = m.orig
	return nil
}

func (m *MoveEdge) Jog(ev command.JogEvent) error {
	m.dx += ev.DX
	d := m.session.PixelsToTimeRef(m.dx)
	minLength := min(traverso.FramesToTimeRef(1, m.session.Rate()), m.orig.length)
	r := m.orig
	switch m.edge {
	case LeftEdge:
		d = max(d, -r.sourceStart, -r.trackStart)
		d = min(d, r.length-minLength)
		r.trackStart += d
		r.sourceStart += d
		r.length -= d
	case RightEdge:
		r.length = min(max(r.length+d, minLength), m.clip.Source().Length()-r.sourceStart)
	}
	if err := r.applyTo(m.clip); err != nil {
		return err
	}
	m.cur = r
	return nil
}

func (m *MoveEdge) Do() error { return m.cur.applyTo(m.clip) }
func (m *MoveEdge) Undo() error { return m.orig.applyTo(m.clip) }

// CropClip keeps only the part of a clip between two timeline positions.
type CropClip struct {
	command.Base
	session   *core.Session
	clip      *core.AudioClip
	from, to  traverso.TimeRef
	orig, cur region
}

func NewCropClip(session *core.Session, clip *core.AudioClip, from, to traverso.TimeRef) *CropClip {
	return &CropClip{Base: command.NewBase("Crop", true), session: session, clip: clip, from: from, to: to}
}

func (c *CropClip) Prepare() error {
	if err := clipOnSession(c.Description(), c.session, c.clip); err != nil {
		return err
	}
	start, end := c.clip.TrackStart(), c.clip.TrackEnd()
	switch {
	case c.from >= c.to:
		return command.Preconditionf("%s: empty range %v - %v", c.Description(), c.from, c.to)
	case c.from < start || c.to > end:
		return command.Preconditionf("%s: range %v - %v outside clip %v (%v - %v)", c.Description(), c.from, c.to, c.clip.Name(), start, end)
	case c.from == start && c.to == end:
		return command.Preconditionf("%s: range covers the whole clip %v", c.Description(), c.clip.Name())
	}
	c.orig = regionOf(c.clip)
	c.cur = region{trackStart: c.from, sourceStart: c.orig.sourceStart + c.from - start, length: c.to - c.from}
	return nil
}

func (c *CropClip) Do() error { return c.cur.applyTo(c.clip) }
func (c *CropClip) Undo() error { return c.orig.applyTo(c.clip) }
