package commands

import (
	"errors"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// AddRemoveTrack adds a track to or removes a track from its session. The
// master track is refused.
type AddRemoveTrack struct {
	command.Base
	session *core.Session
	track   *core.Track
	action  Action
	index   int
	applied bool
}

// NewAddTrack creates a command appending track to its session.
func NewAddTrack(track *core.Track) *AddRemoveTrack {
	return &AddRemoveTrack{
		Base:    command.NewBase("Add Track", true),
		session: track.Session(),
		track:   track,
		action:  Add,
		index:   -1,
	}
}

func NewRemoveTrack(track *core.Track) *AddRemoveTrack {
	return &AddRemoveTrack{
		Base:    command.NewBase("Remove Track", true),
		session: track.Session(),
		track:   track,
		action:  Remove,
		index:   -1,
	}
}

func (c *AddRemoveTrack) Track() *core.Track { return c.track }

func (c *AddRemoveTrack) Prepare() error {
	switch {
	case c.track.IsMaster():
		return command.Preconditionf("%s: %v", c.Description(), core.ErrMasterTrack)
	case c.action == Add && c.session.HasTrack(c.track):
		return command.Preconditionf("%s: %v", c.Description(), core.ErrTrackInSession)
	case c.action == Remove && !c.session.HasTrack(c.track):
		return command.Preconditionf("%s: %v", c.Description(), core.ErrTrackNotInSession)
	}
	return nil
}

func (c *AddRemoveTrack) Do() error {
	if err := c.apply(c.action); err != nil {
		return err
	}
	c.applied = true
	return nil
}

func (c *AddRemoveTrack) Undo() error {
	if err := c.apply(1 - c.action); err != nil {
		return err
	}
	c.applied = false
	return nil
}

func (c *AddRemoveTrack) apply(a Action) error {
	if a == Add {
		return c.session.AddTrack(c.track, c.index)
	}
	index, err := c.session.RemoveTrack(c.track)
	if err != nil {
		return err
	}
	c.index = index
	return nil
}

// Close destroys the track and its clips if the track is out of the session.
func (c *AddRemoveTrack) Close() error {
	if c.track.IsMaster() || c.session.HasTrack(c.track) {
		return nil
	}
	var err error
	c.session.Tsar().DestroyWhenSettled(c.track, func() { err = errors.Join(err, c.track.Close()) })
	return err
}
