package commands

import (
	"fmt"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// NewArmTrack creates a command toggling the record arm of track.
func NewArmTrack(track *core.Track) *command.Property[bool] {
	return command.NewProperty("Arm", track.SetArmed, !track.IsArmed(), track.IsArmed())
}

// ArmTracks arms all tracks of a session, or disarms them if every track is
// already armed.
type ArmTracks struct {
	*command.Group
	session *core.Session
}

func NewArmTracks(session *core.Session) *ArmTracks {
	return &ArmTracks{Group: command.NewGroup("Arm All", true), session: session}
}

func (a *ArmTracks) Prepare() error {
	tracks := a.session.Tracks()
	if len(tracks) == 0 {
		return command.Preconditionf("%s: no tracks", a.Description())
	}
	arm := false
	for _, t := range tracks {
		arm = arm || !t.IsArmed()
	}
	for _, t := range tracks {
		if t.IsArmed() != arm {
			a.Add(command.NewProperty(fmt.Sprintf("arm %v", t.Name()), t.SetArmed, arm, t.IsArmed()))
		}
	}
	return a.Group.Prepare()
}
