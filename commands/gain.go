package commands

import (
	"fmt"
	"math"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// GainTarget is an object with a linear gain: a track (the master track for a
// session) or a clip.
type GainTarget interface {
	Name() string
	Gain() float32
	SetGain(float32)
}

const (
	// MaxGain is +6 dB.
	MaxGain     = 2.0
	minGainDB   = -60.0
	dBPerPixel  = 0.2
	panPerPixel = 1.0 / 200
)

// gainTarget resolves the object a gain command acts on: the master track for
// a session, the track or clip itself otherwise.
func gainTarget(item core.ContextItem) (GainTarget, error) {
	switch v := item.(type) {
	case *core.Session:
		return v.Master(), nil
	case *core.Track:
		return v, nil
	case *core.AudioClip:
		return v, nil
	}
	return nil, fmt.Errorf("%w: gain needs a session, track or clip, got %T", ErrWrongTarget, item)
}

func toDB(gain float64) float64 {
	if gain <= 0 {
		return minGainDB
	}
	return max(20*math.Log10(gain), minGainDB)
}

func fromDB(db float64) float64 {
	if db <= minGainDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// Gain changes the gain of its target while held: moving up (or right, if
// horizontal) raises it in steps of dBPerPixel.
type Gain struct {
	command.HoldBase
	target     GainTarget
	horizontal bool
	origGain   float32
	newGain    float32
	db         float64
}

func NewGain(target GainTarget, horizontal bool) *Gain {
	return &Gain{HoldBase: command.NewHoldBase("Gain", true), target: target, horizontal: horizontal}
}

func (g *Gain) Prepare() error {
	g.origGain = g.target.Gain()
	g.newGain = g.origGain
	g.db = toDB(float64(g.origGain))
	return nil
}

func (g *Gain) Jog(ev command.JogEvent) error {
	d := -ev.DY
	if g.horizontal {
		d = ev.DX
	}
	g.db = min(g.db+d*dBPerPixel, toDB(MaxGain))
	g.newGain = float32(fromDB(g.db))
	g.target.SetGain(g.newGain)
	return nil
}

func (g *Gain) Do() error {
	g.target.SetGain(g.newGain)
	return nil
}

func (g *Gain) Undo() error {
	g.target.SetGain(g.origGain)
	return nil
}

func (g *Gain) NewGain() float32 { return g.newGain }

// NewResetGain creates a command setting the gain of target to value.
func NewResetGain(target GainTarget, value float32) *command.Property[float32] {
	return command.NewProperty("Gain: Reset", target.SetGain, min(max(value, 0), MaxGain), target.Gain())
}

// TrackPan changes the panorama of a track while held by horizontal jog.
type TrackPan struct {
	command.HoldBase
	track   *core.Track
	origPan float32
	newPan  float32
}

func NewTrackPan(track *core.Track) *TrackPan {
	return &TrackPan{HoldBase: command.NewHoldBase("Panorama", true), track: track}
}

func (p *TrackPan) Prepare() error {
	p.origPan = p.track.Pan()
	p.newPan = p.origPan
	return nil
}

func (p *TrackPan) Jog(ev command.JogEvent) error {
	p.newPan = float32(max(min(float64(p.newPan)+ev.DX*panPerPixel, 1), -1))
	p.track.SetPan(p.newPan)
	return nil
}

func (p *TrackPan) Do() error {
	p.track.SetPan(p.newPan)
	return nil
}

func (p *TrackPan) Undo() error {
	p.track.SetPan(p.origPan)
	return nil
}

// NewResetTrackPan creates a command centering the panorama of track.
func NewResetTrackPan(track *core.Track) *command.Property[float32] {
	return command.NewProperty("Panorama: Reset", track.SetPan, 0, track.Pan())
}
