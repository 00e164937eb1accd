package commands

import (
	"fmt"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

var (
	onSession = []core.Kind{core.KindSession}
	onTrack   = []core.Kind{core.KindTrack}
	onClip    = []core.Kind{core.KindClip}
	onAll     = []core.Kind{core.KindSession, core.KindTrack, core.KindClip}
)

var functionTable = []Function{
	{
		Name: "Gain", Description: "Gain", Targets: onAll, UseY: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			g, err := gainTarget(target)
			if err != nil {
				return nil, err
			}
			horizontal := argString(args, 0, "") == "horizontal"
			return NewGain(g, horizontal), nil
		},
	},
	{
		Name: "ResetGain", Description: "Gain: Reset", Targets: onAll, Args: []any{"1.0"},
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			g, err := gainTarget(target)
			if err != nil {
				return nil, err
			}
			v, err := argFloat(args, 0, 1)
			if err != nil {
				return nil, err
			}
			return NewResetGain(g, float32(v)), nil
		},
	},
	{
		Name: "TrackPan", Description: "Panorama", Targets: onTrack, UseX: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewTrackPan(target.(*core.Track)), nil
		},
	},
	{
		Name: "ResetTrackPan", Description: "Panorama: Reset", Targets: onTrack,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewResetTrackPan(target.(*core.Track)), nil
		},
	},
	{
		Name: "ImportAudio", Description: "Import Audio", Targets: onTrack,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			name := argString(args, 0, "")
			if name == "" {
				return nil, fmt.Errorf("ImportAudio needs a file name")
			}
			pos, err := argTime(args, 1, 0)
			if err != nil {
				return nil, err
			}
			return NewImport(f.provider, target.(*core.Track), name, pos), nil
		},
	},
	{
		Name: "InsertSilence", Description: "Insert Silence", Targets: onTrack,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			track := target.(*core.Track)
			length, err := argTime(args, 0, DefaultSilenceLength)
			if err != nil {
				return nil, err
			}
			pos, err := argTime(args, 1, track.Session().WorkCursor())
			if err != nil {
				return nil, err
			}
			return NewInsertSilence(track, length, pos), nil
		},
	},
	{
		Name: "AddNewAudioTrack", Description: "New Track", Targets: onSession,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s := target.(*core.Session)
			name := argString(args, 0, fmt.Sprintf("Audio %d", s.NumTracks()+1))
			return NewAddTrack(core.NewTrack(s, name)), nil
		},
	},
	{
		Name: "ArmTracks", Description: "Arm", Targets: []core.Kind{core.KindSession, core.KindTrack},
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			if track, ok := target.(*core.Track); ok {
				return NewArmTrack(track), nil
			}
			return NewArmTracks(target.(*core.Session)), nil
		},
	},
	{
		Name: "RemoveTrack", Description: "Remove", Targets: onTrack,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewRemoveTrack(target.(*core.Track)), nil
		},
	},
	{
		Name: "RemoveClip", Description: "Remove Clip", Targets: onClip,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			return NewRemoveClip(s, target.(*core.AudioClip)), nil
		},
	},
	{
		Name: "MoveClip", Description: "Move", Targets: onClip, Args: []any{"move"}, UseX: true, UseY: true,
		New: moveClip,
	},
	{
		Name: "CopyClip", Description: "Copy", Targets: onClip, Args: []any{"copy"}, UseX: true, UseY: true,
		New: moveClip,
	},
	{
		Name: "MoveClipToStart", Description: "Move To Start", Submenu: "move", Targets: onClip, Args: []any{"move_to_start"},
		New: moveClip,
	},
	{
		Name: "MoveClipToEnd", Description: "Move To End", Submenu: "move", Targets: onClip, Args: []any{"move_to_end"},
		New: moveClip,
	},
	{
		Name: "MoveTrack", Description: "Move Up/Down", Targets: onTrack, UseY: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewMoveTrack(target.(*core.Track)), nil
		},
	},
	{
		Name: "SplitClip", Description: "Split", Targets: onClip, UseX: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			at, err := argTime(args, 0, s.WorkCursor())
			if err != nil {
				return nil, err
			}
			return NewSplitClip(s, target.(*core.AudioClip), at), nil
		},
	},
	{
		Name: "MoveEdge", Description: "Move Edge", Targets: onClip, UseX: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			clip := target.(*core.AudioClip)
			edge := NearestEdge(clip, s.WorkCursor())
			if name := argString(args, 0, ""); name != "" {
				if edge, err = ParseEdge(name); err != nil {
					return nil, err
				}
			}
			return NewMoveEdge(s, clip, edge), nil
		},
	},
	{
		Name: "CropClip", Description: "Crop", Targets: onClip,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			clip := target.(*core.AudioClip)
			from, err := argTime(args, 0, clip.TrackStart())
			if err != nil {
				return nil, err
			}
			to, err := argTime(args, 1, s.WorkCursor())
			if err != nil {
				return nil, err
			}
			return NewCropClip(s, clip, from, to), nil
		},
	},
	{
		Name: "NormalizeClip", Description: "Normalize", Targets: onClip, Args: []any{"0"},
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			db, err := argFloat(args, 0, 0)
			if err != nil {
				return nil, err
			}
			return NewNormalize(s, target.(*core.AudioClip), db), nil
		},
	},
	{
		Name: "ClipSelectionSelect", Description: "(De)Select", Submenu: "selection", Targets: onClip, Args: []any{"toggle"},
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			return NewClipSelection(s, target.(*core.AudioClip), SelectionAction(argString(args, 0, "toggle"))), nil
		},
	},
	{
		Name: "ClipSelectionSelectAll", Description: "(De)Select All", Submenu: "selection", Targets: onAll, Args: []any{"select_all"},
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			s, err := sessionOf(target)
			if err != nil {
				return nil, err
			}
			return NewClipSelection(s, nil, SelectionAction(argString(args, 0, "select_all"))), nil
		},
	},
	{
		Name: "Zoom", Description: "Zoom", Submenu: "view", Targets: onSession, UseX: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			step, err := argFloat(args, 0, DefaultZoomStep)
			if err != nil {
				return nil, err
			}
			return NewJogZoom(target.(*core.Session), step), nil
		},
	},
	{
		Name: "HZoomIn", Description: "Horizontal In", Submenu: "view", Targets: onSession,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewZoomStep(target.(*core.Session), -1), nil
		},
	},
	{
		Name: "HZoomOut", Description: "Horizontal Out", Submenu: "view", Targets: onSession,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewZoomStep(target.(*core.Session), 1), nil
		},
	},
	{
		Name: "WorkCursorMove", Description: "Move Work Cursor", Submenu: "navigate", Targets: onSession, UseX: true,
		New: func(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
			return NewWorkCursorMove(target.(*core.Session)), nil
		},
	},
}

func moveClip(f *Factory, target core.ContextItem, args []any) (command.Command, error) {
	s, err := sessionOf(target)
	if err != nil {
		return nil, err
	}
	mode, err := ParseMoveMode(argString(args, 0, "move"))
	if err != nil {
		return nil, err
	}
	vertical, err := argBool(args, 1, false)
	if err != nil {
		return nil, err
	}
	return NewMoveClip(s, target.(*core.AudioClip), mode, vertical), nil
}
