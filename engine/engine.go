/*
Package engine wires a session together: configuration, the Tsar, the
session, the command factory, the input engine and the audio device. It is the
explicitly constructed root of the object graph; nothing in the other packages
is a global.

Two goroutines use an Engine. The audio goroutine calls Render; everything
else, including Run, belongs to the GUI goroutine.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/commands"
	"github.com/vsariola/traverso/config"
	"github.com/vsariola/traverso/core"
	"github.com/vsariola/traverso/input"
	"github.com/vsariola/traverso/tsar"
)

type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	tsar    *tsar.Tsar
	session *core.Session
	factory *commands.Factory
	input   *input.Engine
	broker  *input.Broker

	device traverso.AudioDevice
	output io.Closer

	drainInterval time.Duration
}

var ErrRateMismatch = errors.New("device sample rate differs from the session")

// New builds an engine from cfg. The Tsar starts on its direct path, so the
// session can be edited before an audio device is started. A nil cfg means
// config.Default() and a nil logger slog.Default().
func New(cfg *config.Config, provider traverso.SourceProvider, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	ts := tsar.New(cfg.Int("tsar", "capacity", tsar.DefaultCapacity), logger)
	ts.SetRealtime(false)
	session := core.NewSession(ts, core.SessionConfig{
		Title:        cfg.String("session", "title", ""),
		Rate:         cfg.Int("audio", "sample_rate", core.DefaultRate),
		BufferFrames: cfg.Int("audio", "buffer_frames", core.DefaultBufferFrames),
		HistoryLimit: cfg.Int("history", "limit", command.DefaultHistoryLimit),
		PeakCacheTTL: cfg.Duration("peaks", "cache_ttl", core.DefaultPeakCacheTTL),
		Logger:       logger,
	})
	factory := commands.NewFactory(provider, logger)
	return &Engine{
		cfg:     cfg,
		logger:  logger.With("component", "engine"),
		tsar:    ts,
		session: session,
		factory: factory,
		input: input.NewEngine(session, factory, input.Options{
			Logger:      logger,
			JogInterval: cfg.Duration("input", "jog_update_interval", input.DefaultJogInterval),
		}),
		broker:        input.NewBroker(),
		drainInterval: cfg.Duration("tsar", "drain_interval", 20*time.Millisecond),
	}
}

func (e *Engine) Config() *config.Config { return e.cfg }
func (e *Engine) Logger() *slog.Logger { return e.logger }
func (e *Engine) Tsar() *tsar.Tsar { return e.tsar }
func (e *Engine) Session() *core.Session { return e.session }
func (e *Engine) Factory() *commands.Factory { return e.factory }
func (e *Engine) Input() *input.Engine { return e.input }
func (e *Engine) Broker() *input.Broker { return e.broker }

// Render is the audio callback: it applies the queued structural changes and
// then mixes the next block into buf.
func (e *Engine) Render(buf traverso.AudioBuffer) error {
	e.tsar.AddRemoveItemsInAudioProcessingPath()
	e.session.Process(buf)
	return nil
}

// Start plays the session through device. From now on structural changes go
// through the Tsar ring buffers.
func (e *Engine) Start(device traverso.AudioDevice) error {
	if e.output != nil {
		return errors.New("engine already started")
	}
	if device.SampleRate() != e.session.Rate() {
		return fmt.Errorf("%w: %d != %d", ErrRateMismatch, device.SampleRate(), e.session.Rate())
	}
	e.tsar.SetRealtime(true)
	e.device = device
	e.output = device.Play(e.Render)
	e.logger.Info("audio started", "rate", device.SampleRate(), "buffer_frames", e.session.BufferFrames())
	return nil
}

// Stop closes the audio stream and returns the Tsar to its direct path.
func (e *Engine) Stop() error {
	if e.output == nil {
		return nil
	}
	err := e.output.Close()
	e.output = nil
	e.tsar.SetRealtime(false)
	e.logger.Info("audio stopped")
	return err
}

// Run is the GUI loop: it confirms processed Tsar operations, flushes held
// back jog moves and handles broker messages until ctx is done or closing is
// requested through the broker. Messages already queued when closing is
// requested are still handled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.broker.FinishedEngine)
	ticker := time.NewTicker(e.drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.tsar.FinishProcessedObjects()
			return
		case <-e.broker.CloseEngine:
			e.drain()
			return
		case <-ticker.C:
			e.tsar.FinishProcessedObjects()
			e.input.Flush()
		case msg := <-e.broker.ToEngine:
			e.handle(msg)
		}
	}
}

// drain handles the messages sent before closing was requested.
func (e *Engine) drain() {
	for {
		select {
		case msg := <-e.broker.ToEngine:
			e.handle(msg)
		default:
			e.tsar.FinishProcessedObjects()
			return
		}
	}
}

func (e *Engine) handle(msg input.Msg) {
	if err := e.input.Handle(msg); err != nil {
		e.logger.Debug("input message not applied", "msg", fmt.Sprintf("%T", msg), "err", err)
	}
}

// Import adds one track per file and imports the file onto it at the start
// of the timeline, as one undo step per file. Tracks are named after the
// files.
func (e *Engine) Import(names ...string) error {
	var errs []error
	for _, name := range names {
		title := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		if err := e.input.Dispatch(e.session, "AddNewAudioTrack", title); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		tracks := e.session.Tracks()
		if err := e.input.Dispatch(tracks[len(tracks)-1], "ImportAudio", name, traverso.TimeRef(0)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Bounce renders the session from from to to offline, block by block, through
// the same path as the audio callback. It cannot run while a device is
// playing. The transport is left stopped at to.
func (e *Engine) Bounce(from, to traverso.TimeRef) (traverso.AudioBuffer, error) {
	if e.output != nil {
		return nil, errors.New("cannot bounce while audio is playing")
	}
	if to < from {
		return nil, fmt.Errorf("bounce range %v..%v is reversed", from, to)
	}
	rate := e.session.Rate()
	frames := int(to.Frames(rate) - from.Frames(rate))
	out := make(traverso.AudioBuffer, frames*traverso.NumChannels)
	block := max(e.session.BufferFrames(), 1) * traverso.NumChannels
	e.session.Start(from)
	defer e.session.Stop()
	for i := 0; i < len(out); i += block {
		if err := e.Render(out[i:min(i+block, len(out))]); err != nil {
			return nil, fmt.Errorf("bounce at frame %d: %w", i/traverso.NumChannels, err)
		}
	}
	e.tsar.FinishProcessedObjects()
	e.logger.Info("bounced", "from", from, "to", to, "frames", frames)
	return out, nil
}

// Close stops audio, discards the history and releases every clip.
func (e *Engine) Close() error {
	errs := []error{e.Stop()}
	if e.device != nil {
		errs = append(errs, e.device.Close())
	}
	errs = append(errs, e.session.Close())
	return errors.Join(errs...)
}
