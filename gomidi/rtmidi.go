//go:build cgo

package gomidi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/vsariola/traverso/input"
)

// RTMIDIContext owns the rtmidi driver and at most one open input.
type RTMIDIContext struct {
	*Listener
	driver    *rtmididrv.Driver
	currentIn drivers.In
	stop      func()
	logger    *slog.Logger
}

// NewContext opens the driver. If that fails the context has no inputs and
// Open returns an error.
func NewContext(broker *input.Broker, m Mapping, logger *slog.Logger) Context {
	if logger == nil {
		logger = slog.Default()
	}
	c := &RTMIDIContext{Listener: NewListener(broker, m), logger: logger.With("component", "midi")}
	var err error
	if c.driver, err = rtmididrv.New(); err != nil {
		c.logger.Warn("no MIDI driver available", "err", err)
		c.driver = nil
	}
	return c
}

func (c *RTMIDIContext) Inputs() []string {
	if c.driver == nil {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		c.logger.Error("cannot list MIDI inputs", "err", err)
		return nil
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret
}

// Open starts listening to the first input whose name starts with
// namePrefix, closing the currently open one. An empty prefix takes the
// first input.
func (c *RTMIDIContext) Open(namePrefix string) error {
	if c.driver == nil {
		return errors.New("no driver available")
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if !strings.HasPrefix(in.String(), namePrefix) {
			continue
		}
		if c.currentIn == in {
			return nil
		}
		c.closeInput()
		if err := in.Open(); err != nil {
			return fmt.Errorf("opening MIDI input failed: %w", err)
		}
		stop, err := midi.ListenTo(in, c.HandleMessage)
		if err != nil {
			in.Close()
			return fmt.Errorf("listening to MIDI input failed: %w", err)
		}
		c.currentIn, c.stop = in, stop
		c.logger.Info("MIDI input opened", "input", in.String())
		return nil
	}
	return fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

func (c *RTMIDIContext) closeInput() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

func (c *RTMIDIContext) Close() error {
	if c.driver == nil {
		return nil
	}
	c.closeInput()
	return c.driver.Close()
}
