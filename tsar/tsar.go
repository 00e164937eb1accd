/*
Package tsar implements the thread safe add/remove mechanism between the GUI
goroutine and the realtime audio goroutine.

Objects that the audio goroutine traverses while rendering (tracks of a session,
clips of a track) must never change membership while a block is being
rendered. Instead of locking, the GUI goroutine queues an Operation with
Process. The audio callback calls AddRemoveItemsInAudioProcessingPath between
two blocks; it runs the slot of every queued operation and hands a completion
record back. The GUI goroutine polls FinishProcessedObjects (see Run), which
emits the operation's signal, notifies listeners and runs destroy functions
registered with DestroyWhenSettled. An object removed from the audio path may
only be destroyed once its removal has been confirmed this way.
*/
package tsar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type (
	// Kind tells whether an operation adds an object to its owner or
	// removes it.
	Kind int

	// Operation describes one deferred structural change. Slot runs on the
	// audio goroutine and performs the change; Signal, if not nil, runs on
	// the GUI goroutine after the change has been confirmed. Object is the
	// object being added or removed; it identifies the operation for
	// Pending and DestroyWhenSettled and must be comparable (a pointer).
	Operation struct {
		Kind   Kind
		Name   string
		Object any
		Slot   func()
		Signal func()
	}

	// Stats counts operations over the lifetime of a Tsar.
	Stats struct {
		Queued    int
		Processed int
		Dropped   int
		Panicked  int
	}

	// Tsar is the synchronizer. Process, FinishProcessedObjects,
	// DestroyWhenSettled, Pending, OnProcessed and Stats belong to the GUI
	// goroutine. AddRemoveItemsInAudioProcessingPath belongs to the audio
	// goroutine.
	Tsar struct {
		toBeProcessed *RingBuffer[Operation]
		processed     *RingBuffer[completion]
		logger        *slog.Logger
		realtime      bool

		pending    map[any]int
		destroyers map[any][]func()
		listeners  []func(Operation)
		stats      Stats
	}

	completion struct {
		op      Operation
		recover any
	}
)

const (
	Add Kind = iota
	Remove
)

// DefaultCapacity is the ring buffer size used when the configuration does
// not give one.
const DefaultCapacity = 1024

var (
	ErrRingBufferFull = errors.New("tsar: ring buffer full")
	ErrNoSlot         = errors.New("tsar: operation has no slot")
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AddOperation builds an operation that adds obj to owner by calling slot on
// the audio goroutine.
func AddOperation[O, T any](name string, owner O, obj T, slot func(O, T)) Operation {
	return Operation{Kind: Add, Name: name, Object: obj, Slot: func() { slot(owner, obj) }}
}

// RemoveOperation builds an operation that removes obj from owner by calling
// slot on the audio goroutine.
func RemoveOperation[O, T any](name string, owner O, obj T, slot func(O, T)) Operation {
	return Operation{Kind: Remove, Name: name, Object: obj, Slot: func() { slot(owner, obj) }}
}

// WithSignal returns a copy of op that calls signal on the GUI goroutine once
// the operation has been confirmed.
func (op Operation) WithSignal(signal func()) Operation {
	op.Signal = signal
	return op
}

// New creates a Tsar whose two ring buffers hold capacity operations each. A
// nil logger means slog.Default().
func New(capacity int, logger *slog.Logger) *Tsar {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tsar{
		toBeProcessed: NewRingBuffer[Operation](capacity),
		processed:     NewRingBuffer[completion](capacity),
		logger:        logger.With("component", "tsar"),
		realtime:      true,
		pending:       make(map[any]int),
		destroyers:    make(map[any][]func()),
	}
}

// SetRealtime switches between the queued path (true, the default) and the
// direct path (false), where Process applies and confirms operations
// immediately on the calling goroutine. Only switch to the direct path after
// the audio goroutine has stopped calling AddRemoveItemsInAudioProcessingPath;
// operations still queued at that point are applied first.
func (t *Tsar) SetRealtime(realtime bool) {
	if !realtime && t.realtime {
		t.AddRemoveItemsInAudioProcessingPath()
		t.FinishProcessedObjects()
	}
	t.realtime = realtime
}

func (t *Tsar) Realtime() bool { return t.realtime }

// Process queues op for the audio goroutine. It never blocks. If the ring
// buffer is full the operation is dropped, the failure is logged and
// ErrRingBufferFull is returned; the caller decides whether to roll back its
// own bookkeeping.
func (t *Tsar) Process(op Operation) error {
	if op.Slot == nil {
		t.logger.Error("operation without slot", "op", op.Name, "kind", op.Kind)
		return fmt.Errorf("%w: %s", ErrNoSlot, op.Name)
	}
	if !t.realtime {
		t.track(op.Object)
		t.stats.Queued++
		t.finish(completion{op: op, recover: invoke(op.Slot)})
		return nil
	}
	if !t.toBeProcessed.Write(op) {
		t.stats.Dropped++
		t.logger.Error("ring buffer full, operation dropped",
			"op", op.Name, "kind", op.Kind, "capacity", t.toBeProcessed.Cap())
		return fmt.Errorf("%w: %s %s", ErrRingBufferFull, op.Kind, op.Name)
	}
	t.track(op.Object)
	t.stats.Queued++
	return nil
}

// Reserve checks that n more operations can be queued. The audio goroutine
// only ever frees space, so after a successful Reserve the next n calls to
// Process from the GUI goroutine cannot fail with ErrRingBufferFull. A change
// made of several operations reserves them all first, so it is either queued
// completely or not at all. The direct path always has room.
func (t *Tsar) Reserve(n int) error {
	if !t.realtime || n <= 0 {
		return nil
	}
	if space := t.toBeProcessed.WriteSpace(); space < n {
		t.stats.Dropped++
		t.logger.Error("ring buffer full, change refused",
			"operations", n, "space", space, "capacity", t.toBeProcessed.Cap())
		return fmt.Errorf("%w: %d operations, room for %d", ErrRingBufferFull, n, space)
	}
	return nil
}

// AddRemoveItemsInAudioProcessingPath runs the slots of the queued operations
// in FIFO order and returns how many were run. It is called by the audio
// callback between two blocks. If the completion buffer fills up, the
// remaining operations stay queued for the next call, so no confirmation is
// ever lost.
func (t *Tsar) AddRemoveItemsInAudioProcessingPath() int {
	n := 0
	for t.processed.WriteSpace() > 0 {
		op, ok := t.toBeProcessed.Read()
		if !ok {
			break
		}
		t.processed.Write(completion{op: op, recover: invoke(op.Slot)})
		n++
	}
	return n
}

// FinishProcessedObjects confirms the operations run by the audio goroutine
// and returns how many were confirmed.
func (t *Tsar) FinishProcessedObjects() int {
	n := 0
	for {
		c, ok := t.processed.Read()
		if !ok {
			return n
		}
		t.finish(c)
		n++
	}
}

// Run polls FinishProcessedObjects every interval until ctx is done. It must
// run on the GUI goroutine.
func (t *Tsar) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.FinishProcessedObjects()
			return
		case <-ticker.C:
			t.FinishProcessedObjects()
		}
	}
}

// OnProcessed registers a listener called for every confirmed operation.
func (t *Tsar) OnProcessed(listener func(Operation)) {
	t.listeners = append(t.listeners, listener)
}

// Pending reports whether an operation referencing obj is queued or waiting
// for confirmation.
func (t *Tsar) Pending(obj any) bool {
	return t.pending[obj] > 0
}

// DestroyWhenSettled runs destroy once no operation referencing obj is
// pending: immediately if there is none, otherwise after the last one is
// confirmed.
func (t *Tsar) DestroyWhenSettled(obj any, destroy func()) {
	if t.pending[obj] == 0 {
		destroy()
		return
	}
	t.destroyers[obj] = append(t.destroyers[obj], destroy)
}

func (t *Tsar) Stats() Stats { return t.stats }

func (t *Tsar) track(obj any) {
	if obj != nil {
		t.pending[obj]++
	}
}

func (t *Tsar) finish(c completion) {
	t.stats.Processed++
	if c.recover != nil {
		t.stats.Panicked++
		t.logger.Error("operation slot panicked", "op", c.op.Name, "kind", c.op.Kind, "panic", c.recover)
	}
	if c.op.Signal != nil {
		c.op.Signal()
	}
	for _, l := range t.listeners {
		l(c.op)
	}
	if c.op.Object == nil {
		return
	}
	if t.pending[c.op.Object]--; t.pending[c.op.Object] > 0 {
		return
	}
	delete(t.pending, c.op.Object)
	destroyers := t.destroyers[c.op.Object]
	delete(t.destroyers, c.op.Object)
	for _, d := range destroyers {
		d()
	}
}

func invoke(slot func()) (r any) {
	defer func() { r = recover() }()
	slot()
	return nil
}
