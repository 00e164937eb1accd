/*
Package gomidi lets a MIDI controller drive hold commands: knobs and wheels
become jog events for the active command, and releasing a pedal finishes the
gesture. Messages are translated on the driver goroutine and handed to the
input engine through its Broker.
*/
package gomidi

import (
	"sync/atomic"

	"gitlab.com/gomidi/midi/v2"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/input"
)

type (
	// Mapping tells which controller messages are jog moves. Relative
	// controllers send 64 for no motion, above 64 for increments and below
	// for decrements.
	Mapping struct {
		// Channel is the MIDI channel to listen to, or -1 for all.
		Channel int

		// XController and YController are the CC numbers of the relative
		// controllers moving along X and Y.
		XController, YController uint8

		// EndController finishes the gesture when its value drops below 64;
		// 64 is the sustain pedal.
		EndController uint8

		// PitchBendX makes the pitch wheel move along X.
		PitchBendX bool

		// PixelsPerStep scales one controller step to pointer pixels.
		PixelsPerStep float64
	}

	// Translator turns MIDI messages into engine messages. It keeps the last
	// pitch wheel position, so one Translator serves one input.
	Translator struct {
		mapping Mapping
		bend    int16
		hasBend bool
		x, y    float64
		pedalOn bool
	}

	// Listener receives messages from a MIDI input and forwards the
	// translated ones to the broker, dropping them when the engine is behind.
	Listener struct {
		broker     *input.Broker
		translator Translator
		dropped    atomic.Int64
	}
)

// pitch wheel units per jog pixel
const bendPerPixel = 64

func DefaultMapping() Mapping {
	return Mapping{Channel: -1, XController: 16, YController: 17, EndController: 64, PitchBendX: true, PixelsPerStep: 4}
}

func NewTranslator(m Mapping) *Translator {
	if m.PixelsPerStep == 0 {
		m.PixelsPerStep = 1
	}
	return &Translator{mapping: m}
}

// Translate returns the engine message for msg, or false if msg is not
// mapped.
func (t *Translator) Translate(msg midi.Message) (input.Msg, bool) {
	var channel, controller, value uint8
	var relative int16
	var absolute uint16
	switch {
	case msg.GetControlChange(&channel, &controller, &value):
		if !t.listens(channel) {
			return nil, false
		}
		if controller == t.mapping.EndController {
			on := value >= 64
			ended := t.pedalOn && !on
			t.pedalOn = on
			if ended {
				return input.EndMsg{}, true
			}
			return nil, false
		}
		d := float64(int(value)-64) * t.mapping.PixelsPerStep
		switch controller {
		case t.mapping.XController:
			return t.jog(d, 0), true
		case t.mapping.YController:
			return t.jog(0, d), true
		}
	case msg.GetPitchBend(&channel, &relative, &absolute):
		if !t.listens(channel) || !t.mapping.PitchBendX {
			return nil, false
		}
		prev := t.bend
		t.bend = relative
		if !t.hasBend {
			t.hasBend = true
			return nil, false
		}
		return t.jog(float64(relative-prev)/bendPerPixel, 0), true
	}
	return nil, false
}

func (t *Translator) listens(channel uint8) bool {
	return t.mapping.Channel < 0 || int(channel) == t.mapping.Channel
}

func (t *Translator) jog(dx, dy float64) input.Msg {
	t.x += dx
	t.y += dy
	return input.JogMsg{Event: command.JogEvent{X: t.x, Y: t.y, DX: dx, DY: dy}}
}

func NewListener(broker *input.Broker, m Mapping) *Listener {
	return &Listener{broker: broker, translator: *NewTranslator(m)}
}

// HandleMessage is the callback given to midi.ListenTo. It never blocks.
func (l *Listener) HandleMessage(msg midi.Message, timestampms int32) {
	m, ok := l.translator.Translate(msg)
	if !ok {
		return
	}
	if !input.TrySend(l.broker.ToEngine, m) { // if the channel is full, just drop the message
		l.dropped.Add(1)
	}
}

// Dropped is the number of messages lost because the broker was full.
func (l *Listener) Dropped() int64 { return l.dropped.Load() }

// Context lists and opens MIDI inputs.
type Context interface {
	Inputs() []string
	Open(namePrefix string) error
	Close() error
}
