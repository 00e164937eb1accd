package command

import (
	"errors"
	"fmt"
	"io"
)

// Group applies an ordered list of commands as one history entry. Do applies
// the children in insertion order, Undo in reverse order. If a child fails in
// Do, the children before it stay applied (Applied reports how many); calling
// Undo then reverts exactly that prefix.
type Group struct {
	Base
	commands []Command
	applied  int
}

// PartialError is returned by Group.Do when a child fails after others have
// been applied.
type PartialError struct {
	Applied int
	Failed  string
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("command group stopped at child %d (%s): %v", e.Applied, e.Failed, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

func NewGroup(description string, historable bool) *Group {
	return &Group{Base: NewBase(description, historable)}
}

// Add appends a child command.
func (g *Group) Add(cmd Command) {
	if cmd != nil {
		g.commands = append(g.commands, cmd)
	}
}

func (g *Group) Len() int { return len(g.commands) }
func (g *Group) Applied() int { return g.applied }
func (g *Group) Commands() []Command { return g.commands }

func (g *Group) Prepare() error {
	if len(g.commands) == 0 {
		return Preconditionf("%s: nothing to do", g.Description())
	}
	for i, c := range g.commands {
		if err := c.Prepare(); err != nil {
			return fmt.Errorf("%s: child %d (%s): %w", g.Description(), i, c.Description(), err)
		}
	}
	return nil
}

func (g *Group) Do() error {
	g.applied = 0
	for _, c := range g.commands {
		if err := c.Do(); err != nil {
			return &PartialError{Applied: g.applied, Failed: c.Description(), Err: err}
		}
		g.applied++
	}
	return nil
}

// Undo reverts the applied children in reverse order. It stops at the first
// child that fails to undo; that child and the ones before it stay applied,
// so calling Undo again retries from there.
func (g *Group) Undo() error {
	for g.applied > 0 {
		c := g.commands[g.applied-1]
		if err := c.Undo(); err != nil {
			return fmt.Errorf("undo %s: %w", c.Description(), err)
		}
		g.applied--
	}
	return nil
}

// Close releases the children that own resources.
func (g *Group) Close() error {
	var errs []error
	for _, c := range g.commands {
		if closer, ok := c.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
