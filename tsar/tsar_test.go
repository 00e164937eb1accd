package tsar_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsariola/traverso/tsar"
)

type track struct {
	clips []*clip
	calls []string
}

type clip struct{ name string }

func addClip(t *track, c *clip) {
	t.clips = append(t.clips, c)
	t.calls = append(t.calls, "add "+c.name)
}

func removeClip(t *track, c *clip) {
	for i, x := range t.clips {
		if x == c {
			t.clips = append(t.clips[:i], t.clips[i+1:]...)
			break
		}
	}
	t.calls = append(t.calls, "remove "+c.name)
}

func newTestTsar(capacity int) (*tsar.Tsar, *bytes.Buffer) {
	var logs bytes.Buffer
	return tsar.New(capacity, slog.New(slog.NewTextHandler(&logs, nil))), &logs
}

func TestDrainInOrder(t *testing.T) {
	ts, _ := newTestTsar(4)
	tr := &track{}
	clips := []*clip{{"A"}, {"B"}, {"C"}}
	for _, c := range clips {
		require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, c, addClip)))
	}
	assert.Empty(t, tr.calls, "nothing may run before the audio path drains")

	assert.Equal(t, 3, ts.AddRemoveItemsInAudioProcessingPath())
	assert.Equal(t, []string{"add A", "add B", "add C"}, tr.calls)

	var confirmed []any
	ts.OnProcessed(func(op tsar.Operation) { confirmed = append(confirmed, op.Object) })
	assert.Equal(t, 3, ts.FinishProcessedObjects())
	assert.Equal(t, []any{clips[0], clips[1], clips[2]}, confirmed)
	assert.Equal(t, tsar.Stats{Queued: 3, Processed: 3}, ts.Stats())
}

func TestOverflowDropsAndLogs(t *testing.T) {
	ts, logs := newTestTsar(2)
	tr := &track{}
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip)))
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"B"}, addClip)))
	dropped := &clip{"C"}
	err := ts.Process(tsar.AddOperation("add_clip", tr, dropped, addClip))
	assert.ErrorIs(t, err, tsar.ErrRingBufferFull)
	assert.Contains(t, logs.String(), "ring buffer full")
	assert.False(t, ts.Pending(dropped))

	ts.AddRemoveItemsInAudioProcessingPath()
	ts.FinishProcessedObjects()
	assert.Equal(t, []string{"add A", "add B"}, tr.calls)
	assert.Equal(t, 1, ts.Stats().Dropped)
}

func TestReserve(t *testing.T) {
	ts, logs := newTestTsar(3)
	tr := &track{}
	require.NoError(t, ts.Reserve(3))
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip)))
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"B"}, addClip)))
	assert.ErrorIs(t, ts.Reserve(2), tsar.ErrRingBufferFull)
	assert.Contains(t, logs.String(), "change refused")
	require.NoError(t, ts.Reserve(1))

	ts.AddRemoveItemsInAudioProcessingPath()
	require.NoError(t, ts.Reserve(3), "drained operations free their slots")
	assert.ErrorIs(t, ts.Reserve(4), tsar.ErrRingBufferFull)

	ts.SetRealtime(false)
	assert.NoError(t, ts.Reserve(100))
}

func TestCompletionBufferBackpressure(t *testing.T) {
	ts, _ := newTestTsar(2)
	tr := &track{}
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip)))
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"B"}, addClip)))
	assert.Equal(t, 2, ts.AddRemoveItemsInAudioProcessingPath())

	// the GUI has not confirmed anything yet, so the audio side must not run
	// more operations than it can report back
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"C"}, addClip)))
	assert.Equal(t, 0, ts.AddRemoveItemsInAudioProcessingPath())
	assert.Equal(t, 2, ts.FinishProcessedObjects())
	assert.Equal(t, 1, ts.AddRemoveItemsInAudioProcessingPath())
	assert.Equal(t, 1, ts.FinishProcessedObjects())
	assert.Equal(t, []string{"add A", "add B", "add C"}, tr.calls)
}

func TestDestroyWaitsForConfirmation(t *testing.T) {
	ts, _ := newTestTsar(4)
	tr := &track{}
	c := &clip{"A"}
	destroyed := false

	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, c, addClip)))
	require.NoError(t, ts.Process(tsar.RemoveOperation("remove_clip", tr, c, removeClip)))
	ts.DestroyWhenSettled(c, func() { destroyed = true })
	assert.True(t, ts.Pending(c))
	assert.False(t, destroyed)

	ts.AddRemoveItemsInAudioProcessingPath()
	assert.False(t, destroyed, "destroy must wait for the GUI side confirmation")
	ts.FinishProcessedObjects()
	assert.True(t, destroyed)
	assert.False(t, ts.Pending(c))
	assert.Empty(t, tr.clips)

	again := false
	ts.DestroyWhenSettled(c, func() { again = true })
	assert.True(t, again, "settled objects are destroyed immediately")
}

func TestSignal(t *testing.T) {
	ts, _ := newTestTsar(4)
	tr := &track{}
	signalled := 0
	op := tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip).WithSignal(func() { signalled++ })
	require.NoError(t, ts.Process(op))
	ts.AddRemoveItemsInAudioProcessingPath()
	assert.Zero(t, signalled)
	ts.FinishProcessedObjects()
	assert.Equal(t, 1, signalled)
}

func TestPanickingSlotIsRecovered(t *testing.T) {
	ts, logs := newTestTsar(4)
	tr := &track{}
	require.NoError(t, ts.Process(tsar.Operation{Name: "boom", Slot: func() { panic("boom") }}))
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip)))
	assert.Equal(t, 2, ts.AddRemoveItemsInAudioProcessingPath())
	assert.Equal(t, 2, ts.FinishProcessedObjects())
	assert.Equal(t, []string{"add A"}, tr.calls)
	assert.Contains(t, logs.String(), "operation slot panicked")
	assert.Equal(t, 1, ts.Stats().Panicked)
}

func TestNoSlot(t *testing.T) {
	ts, _ := newTestTsar(4)
	assert.ErrorIs(t, ts.Process(tsar.Operation{Name: "empty"}), tsar.ErrNoSlot)
}

func TestDirectPath(t *testing.T) {
	ts, _ := newTestTsar(4)
	tr := &track{}
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip)))
	ts.SetRealtime(false)
	assert.Equal(t, []string{"add A"}, tr.calls, "queued operations are flushed when leaving the realtime path")

	c := &clip{"B"}
	signalled := false
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, c, addClip).WithSignal(func() { signalled = true })))
	assert.Equal(t, []string{"add A", "add B"}, tr.calls)
	assert.True(t, signalled)
	assert.False(t, ts.Pending(c))
}

func TestRunConfirmsAfterCancel(t *testing.T) {
	ts, _ := newTestTsar(4)
	tr := &track{}
	signalled := false
	require.NoError(t, ts.Process(tsar.AddOperation("add_clip", tr, &clip{"A"}, addClip).WithSignal(func() { signalled = true })))
	ts.AddRemoveItemsInAudioProcessingPath()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ts.Run(ctx, time.Hour)
	assert.True(t, signalled)
}
