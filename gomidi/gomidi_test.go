package gomidi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/gomidi"
	"github.com/vsariola/traverso/input"
)

func jog(t *testing.T, tr *gomidi.Translator, m midi.Message) command.JogEvent {
	t.Helper()
	msg, ok := tr.Translate(m)
	require.True(t, ok)
	j, isJog := msg.(input.JogMsg)
	require.True(t, isJog, "got %T", msg)
	return j.Event
}

func TestTranslateControllers(t *testing.T) {
	tr := gomidi.NewTranslator(gomidi.DefaultMapping())
	ev := jog(t, tr, midi.ControlChange(0, 16, 66))
	assert.Equal(t, 8.0, ev.DX)
	assert.Equal(t, 0.0, ev.DY)
	ev = jog(t, tr, midi.ControlChange(3, 17, 60))
	assert.Equal(t, -16.0, ev.DY)
	assert.Equal(t, command.JogEvent{X: 8, Y: -16, DX: 0, DY: -16}, ev)
	_, ok := tr.Translate(midi.ControlChange(0, 7, 100))
	assert.False(t, ok, "unmapped controller")
	_, ok = tr.Translate(midi.NoteOn(0, 60, 100))
	assert.False(t, ok, "notes are not mapped")
}

func TestTranslateChannelFilter(t *testing.T) {
	m := gomidi.DefaultMapping()
	m.Channel = 2
	tr := gomidi.NewTranslator(m)
	_, ok := tr.Translate(midi.ControlChange(0, 16, 66))
	assert.False(t, ok)
	_, ok = tr.Translate(midi.ControlChange(2, 16, 66))
	assert.True(t, ok)
}

func TestTranslatePitchBend(t *testing.T) {
	tr := gomidi.NewTranslator(gomidi.DefaultMapping())
	_, ok := tr.Translate(midi.Pitchbend(0, 0))
	assert.False(t, ok, "first position is the reference")
	ev := jog(t, tr, midi.Pitchbend(0, 640))
	assert.Equal(t, 10.0, ev.DX)
	ev = jog(t, tr, midi.Pitchbend(0, 320))
	assert.Equal(t, -5.0, ev.DX)
}

func TestPedalReleaseFinishes(t *testing.T) {
	tr := gomidi.NewTranslator(gomidi.DefaultMapping())
	_, ok := tr.Translate(midi.ControlChange(0, 64, 0))
	assert.False(t, ok, "release without press")
	_, ok = tr.Translate(midi.ControlChange(0, 64, 127))
	assert.False(t, ok)
	msg, ok := tr.Translate(midi.ControlChange(0, 64, 0))
	require.True(t, ok)
	assert.Equal(t, input.EndMsg{}, msg)
}

func TestListenerDropsWhenFull(t *testing.T) {
	b := &input.Broker{ToEngine: make(chan input.Msg, 1)}
	l := gomidi.NewListener(b, gomidi.DefaultMapping())
	l.HandleMessage(midi.ControlChange(0, 16, 65), 0)
	l.HandleMessage(midi.ControlChange(0, 16, 65), 1)
	l.HandleMessage(midi.ControlChange(0, 7, 65), 2)
	assert.Len(t, b.ToEngine, 1)
	assert.Equal(t, int64(1), l.Dropped())
}
