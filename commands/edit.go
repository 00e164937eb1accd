package commands

import (
	"errors"
	"fmt"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// SplitClip replaces a clip by two clips split at a timeline position.
type SplitClip struct {
	command.Base
	session     *core.Session
	clip        *core.AudioClip
	track       *core.Track
	at          traverso.TimeRef
	left, right *core.AudioClip
	index       int
	selected    bool
	applied     bool
}

func NewSplitClip(session *core.Session, clip *core.AudioClip, at traverso.TimeRef) *SplitClip {
	return &SplitClip{Base: command.NewBase("Split Clip", true), session: session, clip: clip, at: at}
}

func (s *SplitClip) Parts() (left, right *core.AudioClip) { return s.left, s.right }

func (s *SplitClip) Prepare() error {
	s.track = s.clip.Track()
	if s.track == nil || !s.session.HasTrack(s.track) {
		return command.Preconditionf("%s: clip %v is not on a track of the session", s.Description(), s.clip.Name())
	}
	left, right, err := s.clip.Split(s.at)
	if err != nil {
		return command.Preconditionf("%s: %v", s.Description(), err)
	}
	s.left, s.right = left, right
	return nil
}

// splitOps is the number of Tsar operations of a split or its undo.
const splitOps = 3

func (s *SplitClip) Do() error {
	if err := s.session.Tsar().Reserve(splitOps); err != nil {
		return fmt.Errorf("%s: %w", s.Description(), err)
	}
	selected := s.clip.IsSelected()
	index, err := s.track.RemoveClip(s.clip)
	if err != nil {
		return err
	}
	if err := s.track.AddClipAt(s.left, index); err != nil {
		return errors.Join(err, s.track.AddClipAt(s.clip, index))
	}
	if err := s.track.AddClipAt(s.right, index+1); err != nil {
		_, lerr := s.track.RemoveClip(s.left)
		return errors.Join(err, lerr, s.track.AddClipAt(s.clip, index))
	}
	s.index, s.selected = index, selected
	if s.selected {
		m := s.session.ClipManager()
		m.Deselect(s.clip)
		m.Select(s.left)
		m.Select(s.right)
	}
	s.applied = true
	return nil
}

func (s *SplitClip) Undo() error {
	if err := s.session.Tsar().Reserve(splitOps); err != nil {
		return fmt.Errorf("undo %s: %w", s.Description(), err)
	}
	rightIndex, err := s.track.RemoveClip(s.right)
	if err != nil {
		return err
	}
	leftIndex, err := s.track.RemoveClip(s.left)
	if err != nil {
		return errors.Join(err, s.track.AddClipAt(s.right, rightIndex))
	}
	if err := s.track.AddClipAt(s.clip, s.index); err != nil {
		return errors.Join(err, s.track.AddClipAt(s.left, leftIndex), s.track.AddClipAt(s.right, rightIndex))
	}
	if s.selected {
		m := s.session.ClipManager()
		m.Deselect(s.left)
		m.Deselect(s.right)
		m.Select(s.clip)
	}
	s.applied = false
	return nil
}

// Close destroys whichever side of the split is not on the track.
func (s *SplitClip) Close() error {
	discard := []*core.AudioClip{s.left, s.right}
	if s.applied {
		discard = []*core.AudioClip{s.clip}
	}
	for _, c := range discard {
		if c != nil && c.Track() == nil {
			s.session.Tsar().DestroyWhenSettled(c, func() { c.Close() })
		}
	}
	return nil
}

// Normalize sets the gain of a clip, or of all selected clips when the clip is
// selected, so that the loudest of them peaks at the target level. All clips
// get the same factor; the command is a group of gain property changes.
type Normalize struct {
	*command.Group
	session  *core.Session
	clips    []*core.AudioClip
	targetDB float64
}

func NewNormalize(session *core.Session, clip *core.AudioClip, targetDB float64) *Normalize {
	clips := []*core.AudioClip{clip}
	if clip.IsSelected() {
		clips = session.ClipManager().Selected()
	}
	return &Normalize{
		Group:    command.NewGroup("Normalize", true),
		session:  session,
		clips:    clips,
		targetDB: targetDB,
	}
}

func (n *Normalize) Prepare() error {
	if len(n.clips) == 0 {
		return command.Preconditionf("%s: no clips", n.Description())
	}
	factor := float32(MaxGain)
	for _, c := range n.clips {
		f, err := c.NormalizationFactor(n.targetDB, n.session.Peaks())
		if err != nil {
			return command.Preconditionf("%s: %v", n.Description(), err)
		}
		factor = min(factor, f)
	}
	for _, c := range n.clips {
		n.Add(command.NewProperty(fmt.Sprintf("set_gain %v", c.Name()), c.SetGain, factor, c.Gain()))
	}
	return n.Group.Prepare()
}

// SelectionAction is what ClipSelection does.
type SelectionAction string

const (
	SelectClip     SelectionAction = "select"
	DeselectClip   SelectionAction = "deselect"
	ToggleClip     SelectionAction = "toggle"
	SelectAllClips SelectionAction = "select_all"
	DeselectAll    SelectionAction = "deselect_all"
)

// ClipSelection changes the clip selection of a session. It is not recorded
// in the history; Undo restores the previous selection.
type ClipSelection struct {
	command.Base
	session *core.Session
	clip    *core.AudioClip
	action  SelectionAction
	prev    []*core.AudioClip
}

// NewClipSelection creates a selection command; clip may be nil for the
// select_all and deselect_all actions.
func NewClipSelection(session *core.Session, clip *core.AudioClip, action SelectionAction) *ClipSelection {
	return &ClipSelection{Base: command.NewBase("(De)Select", false), session: session, clip: clip, action: action}
}

func (c *ClipSelection) Prepare() error {
	switch c.action {
	case SelectAllClips, DeselectAll:
		return nil
	case SelectClip, DeselectClip, ToggleClip:
		if c.clip == nil {
			return command.Preconditionf("%s: %s needs a clip", c.Description(), c.action)
		}
		return nil
	}
	return command.Preconditionf("%s: unknown action %q", c.Description(), c.action)
}

func (c *ClipSelection) Do() error {
	m := c.session.ClipManager()
	c.prev = m.Selected()
	switch c.action {
	case SelectClip:
		m.Select(c.clip)
	case DeselectClip:
		m.Deselect(c.clip)
	case ToggleClip:
		m.Toggle(c.clip)
	case SelectAllClips:
		m.SelectAll()
	case DeselectAll:
		m.DeselectAll()
	}
	return nil
}

func (c *ClipSelection) Undo() error {
	c.session.ClipManager().SetSelection(c.prev)
	return nil
}
