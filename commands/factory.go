/*
Package commands contains the concrete undoable commands of a session and the
Factory that creates them from a command name, a target object and loosely
typed arguments, as given by key maps and menus.
*/
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

type (
	// Function describes one command the Factory can create: the kinds of
	// objects it can be dispatched on, its menu placement, its default
	// arguments and whether it follows horizontal (UseX) or vertical (UseY)
	// jog. New builds the command once the target kind has been checked.
	Function struct {
		Name        string
		Description string
		Submenu     string
		Targets     []core.Kind
		Args        []any
		UseX, UseY  bool

		New CreateFunc
	}

	CreateFunc func(f *Factory, target core.ContextItem, args []any) (command.Command, error)

	// Factory creates commands by name.
	Factory struct {
		provider  traverso.SourceProvider
		logger    *slog.Logger
		functions map[string]*Function
		order     []string
		caser     cases.Caser
	}
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrWrongTarget    = errors.New("wrong target object")
)

// NewFactory creates a Factory with the built-in function table. provider is
// used by ImportAudio; a nil logger means slog.Default().
func NewFactory(provider traverso.SourceProvider, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Factory{
		provider:  provider,
		logger:    logger.With("component", "factory"),
		functions: make(map[string]*Function),
		caser:     cases.Title(language.English),
	}
	for _, fn := range functionTable {
		f.Register(fn)
	}
	return f
}

// Register adds fn to the table, replacing a function of the same name.
func (f *Factory) Register(fn Function) {
	if _, ok := f.functions[fn.Name]; !ok {
		f.order = append(f.order, fn.Name)
	}
	f.functions[fn.Name] = &fn
}

// Function returns the table entry of name.
func (f *Factory) Function(name string) (Function, bool) {
	fn, ok := f.functions[name]
	if !ok {
		return Function{}, false
	}
	return *fn, true
}

// Functions lists the table in registration order.
func (f *Factory) Functions() []Function {
	ret := make([]Function, 0, len(f.order))
	for _, name := range f.order {
		ret = append(ret, *f.functions[name])
	}
	return ret
}

// Enabled reports whether name can be dispatched on target.
func (f *Factory) Enabled(target core.ContextItem, name string) bool {
	fn, ok := f.functions[name]
	return ok && !isNil(target) && slices.Contains(fn.Targets, target.Kind())
}

// Create returns a ready to run command, or nil if name is unknown, target
// is nil or of a kind the command does not accept, or the arguments cannot be
// used. The reason for returning nil is logged.
func (f *Factory) Create(target core.ContextItem, name string, args ...any) command.Command {
	cmd, err := f.create(target, name, args)
	if err != nil {
		f.logger.Error("cannot create command", "command", name, "target", describe(target), "err", err)
		return nil
	}
	return cmd
}

func (f *Factory) create(target core.ContextItem, name string, args []any) (command.Command, error) {
	fn, ok := f.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if isNil(target) {
		return nil, fmt.Errorf("%w: %s needs one of %v, got nil", ErrWrongTarget, name, fn.Targets)
	}
	if !slices.Contains(fn.Targets, target.Kind()) {
		return nil, fmt.Errorf("%w: %s needs one of %v, got %v", ErrWrongTarget, name, fn.Targets, target.Kind())
	}
	if len(args) == 0 {
		args = fn.Args
	}
	if fn.New == nil {
		return nil, fmt.Errorf("%w: %q has no constructor", ErrUnknownCommand, name)
	}
	return fn.New(f, target, args)
}

// MenuLabel returns the menu text of a command: its description, or its name
// split into title cased words.
func (f *Factory) MenuLabel(name string) string {
	if fn, ok := f.functions[name]; ok && fn.Description != "" {
		return fn.Description
	}
	return f.caser.String(splitWords(name))
}

// SubmenuLabel title cases a submenu name.
func (f *Factory) SubmenuLabel(submenu string) string {
	return f.caser.String(strings.ReplaceAll(submenu, "_", " "))
}

func splitWords(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
			b.WriteRune(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isNil(item core.ContextItem) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *core.Session:
		return v == nil
	case *core.Track:
		return v == nil
	case *core.AudioClip:
		return v == nil
	}
	return false
}

func describe(item core.ContextItem) string {
	if isNil(item) {
		return "<nil>"
	}
	return fmt.Sprintf("%v %q", item.Kind(), item.Name())
}

// sessionOf returns the session a target belongs to.
func sessionOf(item core.ContextItem) (*core.Session, error) {
	switch v := item.(type) {
	case *core.Session:
		return v, nil
	case *core.Track:
		return v.Session(), nil
	case *core.AudioClip:
		if v.Track() == nil {
			return nil, fmt.Errorf("clip %v is not on a track", v.Name())
		}
		return v.Track().Session(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrWrongTarget, item)
}
