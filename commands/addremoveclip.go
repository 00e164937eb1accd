package commands

import (
	"fmt"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// Action tells whether a structural command adds or removes its objects.
// Undoing an Add is the same operation as doing a Remove and vice versa.
type Action int

const (
	Add Action = iota
	Remove
)

func (a Action) String() string {
	if a == Add {
		return "add"
	}
	return "remove"
}

// AddRemoveClip adds clips to or removes clips from their tracks.
type AddRemoveClip struct {
	command.Base
	session  *core.Session
	group    *core.AudioClipGroup
	action   Action
	applied  bool
	selected []*core.AudioClip
}

// NewAddClip creates a command putting clip on track.
func NewAddClip(clip *core.AudioClip, track *core.Track) *AddRemoveClip {
	g := &core.AudioClipGroup{}
	g.Add(clip, track)
	var session *core.Session
	if track != nil {
		session = track.Session()
	}
	return &AddRemoveClip{
		Base:    command.NewBase("Add Clip", true),
		session: session,
		group:   g,
		action:  Add,
	}
}

// NewRemoveClip creates a command taking clip off its track. If clip is
// selected, all selected clips are removed.
func NewRemoveClip(session *core.Session, clip *core.AudioClip) *AddRemoveClip {
	clips := []*core.AudioClip{clip}
	if clip.IsSelected() {
		clips = session.ClipManager().Selected()
	}
	desc := "Remove Clip"
	if len(clips) > 1 {
		desc = fmt.Sprintf("Remove Clips (%d)", len(clips))
	}
	return &AddRemoveClip{
		Base:    command.NewBase(desc, true),
		session: session,
		group:   core.NewAudioClipGroup(clips...),
		action:  Remove,
	}
}

func (c *AddRemoveClip) Action() Action { return c.action }
func (c *AddRemoveClip) Clips() []*core.AudioClip { return c.group.Clips() }

func (c *AddRemoveClip) Prepare() error {
	if c.group.Len() == 0 {
		return command.Preconditionf("%s: no clips", c.Description())
	}
	tracks := c.group.Tracks()
	for i, clip := range c.group.Clips() {
		track := tracks[i]
		switch {
		case track == nil:
			return command.Preconditionf("%s: clip %v has no track", c.Description(), clip.Name())
		case !c.session.HasTrack(track):
			return command.Preconditionf("%s: track %v is not in the session", c.Description(), track.Name())
		case c.action == Add && clip.Track() != nil:
			return command.Preconditionf("%s: clip %v is already on track %v", c.Description(), clip.Name(), clip.Track().Name())
		case c.action == Remove && clip.Track() != track:
			return command.Preconditionf("%s: clip %v is not on track %v", c.Description(), clip.Name(), track.Name())
		}
	}
	return nil
}

func (c *AddRemoveClip) Do() error {
	if err := c.apply(c.action); err != nil {
		return err
	}
	c.applied = true
	return nil
}

func (c *AddRemoveClip) Undo() error {
	if err := c.apply(1 - c.action); err != nil {
		return err
	}
	c.applied = false
	return nil
}

func (c *AddRemoveClip) apply(a Action) error {
	if a == Add {
		if err := c.group.AddToTracks(); err != nil {
			return err
		}
		m := c.session.ClipManager()
		for _, clip := range c.selected {
			m.Select(clip)
		}
		c.selected = nil
		return nil
	}
	c.selected = c.selected[:0]
	for _, clip := range c.group.Clips() {
		if clip.IsSelected() {
			c.selected = append(c.selected, clip)
		}
	}
	if err := c.group.RemoveFromTracks(); err != nil {
		return err
	}
	m := c.session.ClipManager()
	for _, clip := range c.selected {
		m.Deselect(clip)
	}
	return nil
}

// Close destroys the clips if they are off their tracks, once the audio
// goroutine has confirmed it no longer uses them.
func (c *AddRemoveClip) Close() error {
	if offTrack := (c.action == Add) != c.applied; !offTrack {
		return nil
	}
	for _, clip := range c.group.Clips() {
		switch {
		case clip.Track() != nil:
		case c.session == nil:
			clip.Close()
		default:
			c.session.Tsar().DestroyWhenSettled(clip, func() { clip.Close() })
		}
	}
	return nil
}
