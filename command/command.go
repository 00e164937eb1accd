/*
Package command defines the undoable command protocol.

A Command goes through Created -> Prepared -> Applied <-> Undone. Prepare checks
that the command is legal in the current state and acquires what it needs; a
command whose Prepare fails is discarded without entering the history. Do
applies the mutation and Undo reverses exactly the effect of the last Do. Redo
is defined as calling Do again.

Hold commands live through a continuous input gesture (dragging a clip,
jogging a gain). They receive BeginHold, any number of Jog calls, and finally
FinishHold when the gesture completes. A cancelled gesture is reverted by
calling Undo once; Do is never called for it.
*/
package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

type (
	// Command is a reversible unit of work.
	Command interface {
		Prepare() error
		Do() error
		Undo() error
		IsHoldCommand() bool
		IsHistorable() bool
		Description() string
	}

	// HoldCommand is a Command that follows an input gesture before it is
	// committed.
	HoldCommand interface {
		Command
		BeginHold() error
		Jog(ev JogEvent) error
		FinishHold() error
	}

	// JogEvent carries the pointer (or controller) position of a gesture. X
	// and Y are absolute, DX and DY are relative to the previous event.
	JogEvent struct {
		X, Y   float64
		DX, DY float64
	}

	// Base provides the description and historable flag; embed it in
	// concrete commands.
	Base struct {
		description string
		historable  bool
	}

	// HoldBase is Base for hold commands.
	HoldBase struct {
		Base
	}
)

var (
	ErrPrecondition  = errors.New("precondition failed")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNilCommand    = errors.New("nil command")
)

// Preconditionf returns an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

func NewBase(description string, historable bool) Base {
	return Base{description: description, historable: historable}
}

func NewHoldBase(description string, historable bool) HoldBase {
	return HoldBase{Base: NewBase(description, historable)}
}

func (b Base) Description() string { return b.description }
func (b Base) IsHistorable() bool { return b.historable }
func (Base) IsHoldCommand() bool { return false }
func (Base) Prepare() error { return nil }

func (HoldBase) IsHoldCommand() bool { return true }
func (HoldBase) BeginHold() error { return nil }
func (HoldBase) Jog(ev JogEvent) error { return nil }
func (HoldBase) FinishHold() error { return nil }

// Process runs a one-shot command: Prepare, Do and, for historable commands,
// Push onto the history. A command that fails Prepare or Do is discarded. Hold
// commands are driven by the input engine instead; passing one here applies it
// as if the gesture had ended immediately.
func Process(cmd Command, history *History, logger *slog.Logger) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cmd.Prepare(); err != nil {
		logger.Info("command not applied", "command", cmd.Description(), "reason", err)
		Discard(cmd)
		return err
	}
	if err := cmd.Do(); err != nil {
		logger.Error("command failed", "command", cmd.Description(), "err", err)
		Discard(cmd)
		return fmt.Errorf("%s: %w", cmd.Description(), err)
	}
	Commit(cmd, history)
	return nil
}

// Commit hands an applied command over to the history, or discards it if it
// is not historable.
func Commit(cmd Command, history *History) {
	if cmd.IsHistorable() && history != nil {
		history.Push(cmd)
		return
	}
	Discard(cmd)
}

// Discard releases the resources of a command that will not be kept, if it
// owns any.
func Discard(cmd Command) {
	if c, ok := cmd.(io.Closer); ok {
		c.Close()
	}
}
