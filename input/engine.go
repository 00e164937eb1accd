/*
Package input turns key presses, pointer gestures and controller moves into
commands. The Engine owns at most one active hold command at a time: it is
started by Dispatch or a bound key press, follows Jog events and is either
committed by Finish or reverted by Cancel.
*/
package input

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gioui.org/io/key"

	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/commands"
	"github.com/vsariola/traverso/core"
)

type (
	// Engine dispatches commands on a session. It is not safe for concurrent
	// use; other goroutines reach it through a Broker.
	Engine struct {
		session *core.Session
		factory *commands.Factory
		keymap  *KeyMap
		logger  *slog.Logger

		active  command.HoldCommand
		holdKey key.Name

		jogInterval time.Duration
		lastJog     time.Time
		pending     command.JogEvent
		hasPending  bool
		now         func() time.Time
	}

	// Options configures an Engine.
	Options struct {
		KeyMap *KeyMap
		Logger *slog.Logger

		// JogInterval is the minimum time between Jog calls on the active
		// command; events arriving faster are accumulated.
		JogInterval time.Duration
	}
)

// DefaultJogInterval is roughly 30 updates per second.
const DefaultJogInterval = 33 * time.Millisecond

var (
	ErrNoCommand  = errors.New("no command created")
	ErrNoGesture  = errors.New("no active hold command")
	ErrUnboundKey = errors.New("key is not bound")
)

func NewEngine(session *core.Session, factory *commands.Factory, opts Options) *Engine {
	if opts.KeyMap == nil {
		opts.KeyMap = NewKeyMap()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.JogInterval < 0 {
		opts.JogInterval = 0
	}
	return &Engine{
		session:     session,
		factory:     factory,
		keymap:      opts.KeyMap,
		logger:      opts.Logger.With("component", "input"),
		jogInterval: opts.JogInterval,
		now:         time.Now,
	}
}

func (e *Engine) KeyMap() *KeyMap { return e.keymap }

// SetKeyMap replaces the key map, e.g. after the user file was edited.
func (e *Engine) SetKeyMap(km *KeyMap) { e.keymap = km }

// Active returns the hold command in progress, or nil.
func (e *Engine) Active() command.HoldCommand { return e.active }

// Dispatch creates the command name on target. One-shot commands are run to
// completion; a hold command becomes the active gesture. A gesture already in
// progress is finished first.
func (e *Engine) Dispatch(target core.ContextItem, name string, args ...any) error {
	if e.active != nil {
		if err := e.Finish(); err != nil {
			return err
		}
	}
	cmd := e.factory.Create(target, name, args...)
	if cmd == nil {
		return fmt.Errorf("%w: %s", ErrNoCommand, name)
	}
	hold, ok := cmd.(command.HoldCommand)
	if !ok || !cmd.IsHoldCommand() {
		return command.Process(cmd, e.session.History(), e.logger)
	}
	if err := hold.Prepare(); err != nil {
		e.logger.Info("command not applied", "command", hold.Description(), "reason", err)
		command.Discard(hold)
		return err
	}
	if err := hold.BeginHold(); err != nil {
		e.logger.Error("cannot begin hold", "command", hold.Description(), "err", err)
		command.Discard(hold)
		return fmt.Errorf("%s: %w", hold.Description(), err)
	}
	e.active = hold
	e.pending = command.JogEvent{}
	e.hasPending = false
	e.lastJog = time.Time{}
	return nil
}

// Jog feeds a pointer or controller move to the active command. Moves
// arriving within the jog interval of the previous update are accumulated and
// delivered with the next one. Without an active command Jog does nothing.
func (e *Engine) Jog(ev command.JogEvent) error {
	if e.active == nil {
		return nil
	}
	if e.hasPending {
		ev.DX += e.pending.DX
		ev.DY += e.pending.DY
	}
	now := e.now()
	if !e.lastJog.IsZero() && now.Sub(e.lastJog) < e.jogInterval {
		e.pending, e.hasPending = ev, true
		return nil
	}
	e.lastJog = now
	return e.deliver(ev)
}

// Flush delivers an accumulated move that the throttle held back.
func (e *Engine) Flush() error {
	if e.active == nil || !e.hasPending {
		return nil
	}
	e.lastJog = e.now()
	return e.deliver(e.pending)
}

func (e *Engine) deliver(ev command.JogEvent) error {
	e.pending, e.hasPending = command.JogEvent{}, false
	if err := e.active.Jog(ev); err != nil {
		e.logger.Error("jog failed", "command", e.active.Description(), "err", err)
		return err
	}
	return nil
}

// Finish ends the active gesture and hands the command to the history.
func (e *Engine) Finish() error {
	if e.active == nil {
		return ErrNoGesture
	}
	if err := e.Flush(); err != nil {
		return e.abort(err)
	}
	cmd := e.active
	e.active, e.holdKey = nil, ""
	if err := cmd.FinishHold(); err != nil {
		e.logger.Error("cannot finish hold", "command", cmd.Description(), "err", err)
		if uerr := cmd.Undo(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("undo: %w", uerr))
		}
		command.Discard(cmd)
		return fmt.Errorf("%s: %w", cmd.Description(), err)
	}
	command.Commit(cmd, e.session.History())
	return nil
}

// Cancel reverts the active gesture with exactly one Undo and discards the
// command; nothing enters the history.
func (e *Engine) Cancel() error {
	if e.active == nil {
		return ErrNoGesture
	}
	cmd := e.active
	e.active, e.holdKey = nil, ""
	e.pending, e.hasPending = command.JogEvent{}, false
	e.logger.Debug("hold cancelled", "command", cmd.Description())
	err := cmd.Undo()
	command.Discard(cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Description(), err)
	}
	return nil
}

func (e *Engine) abort(err error) error {
	if cerr := e.Cancel(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Undo reverts the last command of the session history. An active gesture is
// cancelled instead.
func (e *Engine) Undo() error {
	if e.active != nil {
		return e.Cancel()
	}
	return e.session.History().Undo()
}

// Redo re-applies the next command of the session history.
func (e *Engine) Redo() error {
	if e.active != nil {
		return nil
	}
	return e.session.History().Redo()
}

// HandleKey looks up a key press in the key map and dispatches the bound
// command. The key map is consulted for target and then for its parents
// (clip, track, session), so a session binding works over a clip too. A hold
// command started here is finished by HandleKeyRelease of the same key.
func (e *Engine) HandleKey(name key.Name, mods key.Modifiers, target core.ContextItem) error {
	chain := contextChain(target)
	if len(chain) == 0 {
		chain = []core.ContextItem{e.session}
	}
	for _, item := range chain {
		b, ok := e.keymap.Lookup(name, mods, item.Kind())
		if !ok {
			continue
		}
		switch b.Command {
		case UndoCommand:
			return e.Undo()
		case RedoCommand:
			return e.Redo()
		case CancelCommand:
			if e.active == nil {
				return nil
			}
			return e.Cancel()
		}
		if b.Object == "" && !e.factory.Enabled(item, b.Command) {
			continue
		}
		if err := e.Dispatch(item, b.Command, b.Args...); err != nil {
			return err
		}
		if e.active != nil {
			e.holdKey = name
		}
		return nil
	}
	e.logger.Debug("unbound key", "key", name, "modifiers", mods)
	return fmt.Errorf("%w: %v", ErrUnboundKey, name)
}

// HandleKeyRelease finishes the gesture started by the key name.
func (e *Engine) HandleKeyRelease(name key.Name) error {
	if e.active == nil || e.holdKey != name {
		return nil
	}
	return e.Finish()
}

// contextChain returns item and the objects containing it, innermost first.
func contextChain(item core.ContextItem) []core.ContextItem {
	var chain []core.ContextItem
	switch v := item.(type) {
	case *core.AudioClip:
		if v == nil {
			return nil
		}
		chain = append(chain, v)
		if t := v.Track(); t != nil {
			chain = append(chain, t, t.Session())
		}
	case *core.Track:
		if v == nil {
			return nil
		}
		chain = append(chain, v, v.Session())
	case *core.Session:
		if v == nil {
			return nil
		}
		chain = append(chain, v)
	}
	return chain
}
