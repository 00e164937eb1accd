package engine_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/config"
	"github.com/vsariola/traverso/engine"
	"github.com/vsariola/traverso/input"
)

type provider map[string]*traverso.MemorySource

func (p provider) Exists(name string) bool { _, ok := p[name]; return ok }
func (p provider) Open(name string) (traverso.ReadSource, error) { return p[name], nil }

type fakeDevice struct {
	rate   int
	render traverso.AudioRenderer
	closed bool
}

func (d *fakeDevice) Play(render traverso.AudioRenderer) io.Closer {
	d.render = render
	return d
}
func (d *fakeDevice) SampleRate() int { return d.rate }
func (d *fakeDevice) Close() error { d.closed = true; return nil }

func constant(name string, frames int, v float32) *traverso.MemorySource {
	data := make(traverso.AudioBuffer, frames*traverso.NumChannels)
	for i := range data {
		data[i] = v
	}
	return traverso.NewMemorySource(name, 44100, data)
}

func newEngine(t *testing.T) (*engine.Engine, *bytes.Buffer) {
	t.Helper()
	log := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(log, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := config.Default()
	cfg.Set("tsar", "drain_interval", "1ms")
	files := provider{
		"/music/drums.raw": constant("drums", 1000, 0.5),
		"/music/bass.raw":  constant("bass", 2000, 0.25),
	}
	e := engine.New(cfg, files, logger)
	t.Cleanup(func() { e.Close() })
	return e, log
}

func TestImportCreatesTracks(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Import("/music/drums.raw", "/music/bass.raw"))
	tracks := e.Session().Tracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "drums", tracks[0].Name())
	assert.Equal(t, "bass", tracks[1].Name())
	require.Len(t, tracks[1].Clips(), 1)
	assert.Equal(t, traverso.FramesToTimeRef(2000, 44100), e.Session().End())
	assert.Equal(t, 4, e.Session().History().Len())
	assert.True(t, e.Session().IsChanged())

	err := e.Import("/music/missing.raw")
	assert.Error(t, err)
	assert.Len(t, e.Session().Tracks(), 3, "the track is kept, the import failed")
}

func TestStartChecksRate(t *testing.T) {
	e, _ := newEngine(t)
	assert.ErrorIs(t, e.Start(&fakeDevice{rate: 48000}), engine.ErrRateMismatch)
	assert.False(t, e.Tsar().Realtime())
}

func TestRenderAppliesQueuedChanges(t *testing.T) {
	e, _ := newEngine(t)
	dev := &fakeDevice{rate: 44100}
	require.NoError(t, e.Start(dev))
	require.True(t, e.Tsar().Realtime())
	require.NoError(t, e.Import("/music/drums.raw"))
	e.Session().Start(0)

	buf := make(traverso.AudioBuffer, 64*traverso.NumChannels)
	snap := e.Session().Snapshot()
	require.Len(t, snap.Tracks, 1)
	assert.Empty(t, snap.RealtimeTracks, "nothing reaches the audio path before a render")

	require.NoError(t, dev.render(buf))
	assert.NotZero(t, slices.Max(buf))
	e.Tsar().FinishProcessedObjects()
	assert.Len(t, e.Session().Snapshot().RealtimeTracks, 1)

	require.NoError(t, e.Close())
	assert.True(t, dev.closed)
	assert.False(t, e.Tsar().Realtime())
}

func TestRunHandlesBrokerMessages(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Import("/music/drums.raw"))
	track := e.Session().Tracks()[0]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	b := e.Broker()
	require.True(t, input.TrySend[input.Msg](b.ToEngine, input.DispatchMsg{Target: track, Name: "Gain"}))
	require.True(t, input.TrySend[input.Msg](b.ToEngine, input.JogMsg{Event: command.JogEvent{DY: 30}}))
	require.True(t, input.TrySend[input.Msg](b.ToEngine, input.EndMsg{}))
	require.True(t, input.TrySend(b.CloseEngine, struct{}{}))
	select {
	case <-b.FinishedEngine:
	case <-time.After(3 * time.Second):
		t.Fatal("engine did not finish")
	}
	assert.InDelta(t, 0.5, track.Gain(), 0.01)
	assert.Equal(t, 3, e.Session().History().Len())
}

func TestBounceMixesTracks(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Import("/music/drums.raw", "/music/bass.raw"))
	out, err := e.Bounce(0, e.Session().End())
	require.NoError(t, err)
	require.Equal(t, 2000, out.Frames())
	assert.InDelta(t, 0.75, out[0], 1e-6)
	assert.InDelta(t, 0.75, out[999*traverso.NumChannels+1], 1e-6)
	assert.InDelta(t, 0.25, out[1000*traverso.NumChannels], 1e-6)
	assert.InDelta(t, 0.25, out[len(out)-1], 1e-6)
	assert.False(t, e.Session().IsPlaying())

	_, err = e.Bounce(10, 0)
	assert.Error(t, err)

	require.NoError(t, e.Start(&fakeDevice{rate: 44100}))
	_, err = e.Bounce(0, 10)
	assert.Error(t, err, "bouncing while playing")
}
