package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/engine"
	"github.com/vsariola/traverso/gomidi"
	"github.com/vsariola/traverso/input"
	"github.com/vsariola/traverso/oto"
)

var playCmd = &cobra.Command{
	Use:   "play [flags] FILE|DIR...",
	Short: "Play raw audio files, each on its own track",
	Long: `Import raw files (little-endian float32, interleaved stereo, at the
configured sample rate) onto one track each and play the session until the
longest clip ends or the program is interrupted. Directories are searched for
*.raw files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("midi", "", "open the MIDI input whose name starts with this prefix")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if prefix, _ := cmd.Flags().GetString("midi"); prefix != "" {
		cfg.Set("midi", "input", prefix)
	}
	logger := newLogger()
	files, err := expandArgs(args)
	if err != nil {
		return err
	}
	rate := cfg.Int("audio", "sample_rate", 44100)
	e := engine.New(cfg, traverso.RawFileProvider{Rate: rate}, logger)
	defer e.Close()

	if err := e.Import(files...); err != nil {
		return fmt.Errorf("importing: %w", err)
	}
	kmFile := keyMapFile()
	km, err := loadKeyMap(kmFile)
	if err != nil {
		logger.Error("using the default key map", "err", err)
	} else {
		e.Input().SetKeyMap(km)
	}
	if kmFile != "" {
		if w, err := watchKeyMap(kmFile, e.Broker(), logger); err == nil {
			defer w.Stop()
		} else {
			logger.Debug("key map is not watched", "err", err)
		}
	}

	midi := gomidi.NewContext(e.Broker(), gomidi.DefaultMapping(), logger)
	defer midi.Close()
	if prefix := cfg.String("midi", "input", ""); prefix != "" {
		if err := midi.Open(prefix); err != nil {
			logger.Warn("no MIDI input", "err", err)
		}
	}

	device, err := oto.NewContext(rate, cfg.Int("audio", "buffer_frames", 512))
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %w", err)
	}
	if err := e.Start(device); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go e.Run(ctx)

	end := e.Session().End()
	e.Session().Start(0)
	logger.Info("playing", "tracks", e.Session().NumTracks(), "length", end)
	waitUntil(ctx, func() bool { return e.Session().TransportPosition() >= end })
	e.Session().Stop()
	if !input.TrySend(e.Broker().CloseEngine, struct{}{}) {
		stop()
	}
	input.TimeoutReceive(e.Broker().FinishedEngine, 3*time.Second)
	return nil
}

func waitUntil(ctx context.Context, done func() bool) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for !done() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// expandArgs replaces directories by the raw files in them.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("could not read %v: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		raws, err := filepath.Glob(filepath.Join(arg, "*.raw"))
		if err != nil {
			return nil, fmt.Errorf("could not glob the path %v for raw files: %w", arg, err)
		}
		files = append(files, raws...)
	}
	if len(files) == 0 {
		return nil, errors.New("no files to play")
	}
	return files, nil
}
