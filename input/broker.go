package input

import (
	"time"

	"gioui.org/io/key"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

type (
	// Broker carries input events from the goroutines that produce them (MIDI
	// driver, window event loop) to the goroutine owning the Engine. There is
	// one bounded channel per recipient; senders use TrySend and drop events
	// when the channel is full, so a stalled GUI never blocks a driver
	// callback.
	//
	// For closing the receiving goroutine, the broker has CloseEngine and
	// FinishedEngine. CloseEngine has a capacity of 1, so an empty struct can
	// always be sent without blocking; if it is full, closing has already been
	// requested. FinishedEngine is closed by the receiver once it has cleaned
	// up, and can be waited on with TimeoutReceive.
	Broker struct {
		ToEngine chan Msg

		CloseEngine    chan struct{}
		FinishedEngine chan struct{}
	}

	// Msg is a message to the input engine: one of JogMsg, KeyMsg,
	// DispatchMsg, EndMsg or KeyMapMsg.
	Msg interface{ isMsg() }

	// JogMsg moves the active hold gesture.
	JogMsg struct{ Event command.JogEvent }

	// KeyMsg is a key press, or release, to be looked up in the key map.
	KeyMsg struct {
		Name      key.Name
		Modifiers key.Modifiers
		Target    core.ContextItem
		Release   bool
	}

	// DispatchMsg starts a command by name.
	DispatchMsg struct {
		Target core.ContextItem
		Name   string
		Args   []any
	}

	// EndMsg finishes the active gesture, or cancels it if Cancel is set.
	EndMsg struct{ Cancel bool }

	// KeyMapMsg replaces the key map of the engine.
	KeyMapMsg struct{ KeyMap *KeyMap }
)

const brokerCapacity = 1024

func (JogMsg) isMsg()      {}
func (KeyMsg) isMsg()      {}
func (DispatchMsg) isMsg() {}
func (EndMsg) isMsg()      {}
func (KeyMapMsg) isMsg()   {}

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan Msg, brokerCapacity),
		CloseEngine:    make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
	}
}

// Handle applies one message to e. Errors are logged by the engine and
// returned for the caller's information only.
func (e *Engine) Handle(msg Msg) error {
	switch m := msg.(type) {
	case JogMsg:
		return e.Jog(m.Event)
	case KeyMsg:
		if m.Release {
			return e.HandleKeyRelease(m.Name)
		}
		return e.HandleKey(m.Name, m.Modifiers, m.Target)
	case DispatchMsg:
		return e.Dispatch(m.Target, m.Name, m.Args...)
	case EndMsg:
		if m.Cancel {
			return e.Cancel()
		}
		return e.Finish()
	case KeyMapMsg:
		if m.KeyMap != nil {
			e.SetKeyMap(m.KeyMap)
		}
	}
	return nil
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received from c or t has passed. ok
// is false on timeout or when the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
