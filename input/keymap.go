package input

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"

	"gioui.org/io/key"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/traverso/core"
)

type (
	// Binding maps a key press to a command. Object is "session", "track",
	// "clip" or empty for any object that accepts the command.
	Binding struct {
		Key                               string
		Shortcut, Ctrl, Shift, Alt, Super bool
		Object                            string
		Command                           string
		Args                              []any
	}

	// KeyMap resolves key presses to bindings. Later bindings of the same key,
	// modifiers and object replace earlier ones.
	KeyMap struct {
		bindings map[chord]Binding
		order    []chord
	}

	chord struct {
		name   key.Name
		mods   key.Modifiers
		object string
	}
)

// Names the engine handles without the factory.
const (
	UndoCommand   = "Undo"
	RedoCommand   = "Redo"
	CancelCommand = "Cancel"
)

//go:embed keymap.yml
var defaultKeyMap []byte

// NewKeyMap returns the default key map.
func NewKeyMap() *KeyMap {
	km := &KeyMap{bindings: map[chord]Binding{}}
	if err := km.Load(bytes.NewReader(defaultKeyMap)); err != nil {
		panic(fmt.Errorf("failed to unmarshal default key map: %w", err))
	}
	return km
}

// Load decodes a YAML list of bindings from r and merges it into the key map.
// Unknown fields are an error. A binding without a command unbinds its key.
func (km *KeyMap) Load(r io.Reader) error {
	var bindings []Binding
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bindings); err != nil && err != io.EOF {
		return fmt.Errorf("decoding key map: %w", err)
	}
	for i, b := range bindings {
		if b.Key == "" {
			return fmt.Errorf("key map entry %d: missing key", i)
		}
		b.Object = strings.ToLower(b.Object)
		if err := validateObject(b.Object); err != nil {
			return fmt.Errorf("key map entry %d: %w", i, err)
		}
		c := chord{name: key.Name(b.Key), mods: b.Modifiers(), object: b.Object}
		if b.Command == "" {
			delete(km.bindings, c)
			continue
		}
		if !slices.Contains(km.order, c) {
			km.order = append(km.order, c)
		}
		km.bindings[c] = b
	}
	return nil
}

// Lookup returns the binding of a key press on an object of kind. A binding
// for that kind wins over a binding for any object.
func (km *KeyMap) Lookup(name key.Name, mods key.Modifiers, kind core.Kind) (Binding, bool) {
	if b, ok := km.bindings[chord{name: name, mods: mods, object: objectName(kind)}]; ok {
		return b, true
	}
	return km.lookupAny(name, mods)
}

func (km *KeyMap) lookupAny(name key.Name, mods key.Modifiers) (Binding, bool) {
	b, ok := km.bindings[chord{name: name, mods: mods}]
	return b, ok
}

// Bindings lists the active bindings in the order they were first bound.
func (km *KeyMap) Bindings() []Binding {
	ret := make([]Binding, 0, len(km.bindings))
	for _, c := range km.order {
		if b, ok := km.bindings[c]; ok {
			ret = append(ret, b)
		}
	}
	return ret
}

// Modifiers returns the gio modifier flags of the binding.
func (b Binding) Modifiers() key.Modifiers {
	var mods key.Modifiers
	if b.Shortcut {
		mods |= key.ModShortcut
	}
	if b.Ctrl {
		mods |= key.ModCtrl
	}
	if b.Shift {
		mods |= key.ModShift
	}
	if b.Alt {
		mods |= key.ModAlt
	}
	if b.Super {
		mods |= key.ModSuper
	}
	return mods
}

// Keys is the human readable key combination, e.g. "Ctrl+Shift+Z".
func (b Binding) Keys() string {
	modString := strings.ReplaceAll(b.Modifiers().String(), "-", "+")
	if modString == "" {
		return b.Key
	}
	return modString + "+" + b.Key
}

func objectName(kind core.Kind) string {
	switch kind {
	case core.KindSession:
		return "session"
	case core.KindTrack:
		return "track"
	case core.KindClip:
		return "clip"
	}
	return ""
}

func validateObject(s string) error {
	switch s {
	case "", "session", "track", "clip":
		return nil
	}
	return fmt.Errorf("unknown object %q", s)
}
