//go:build !cgo

package gomidi

import (
	"errors"
	"log/slog"

	"github.com/vsariola/traverso/input"
)

// NullContext is used when the binary is built without cgo, which rtmidi
// needs.
type NullContext struct{}

func NewContext(broker *input.Broker, m Mapping, logger *slog.Logger) Context {
	return NullContext{}
}

func (NullContext) Inputs() []string { return nil }
func (NullContext) Open(string) error { return errors.New("MIDI input needs cgo") }
func (NullContext) Close() error { return nil }
