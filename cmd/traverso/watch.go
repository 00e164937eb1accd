package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vsariola/traverso/input"
)

// keyMapWatcher reloads the user key map when it is written and hands the
// new map to the input engine through the broker.
type keyMapWatcher struct {
	fsWatcher *fsnotify.Watcher
	file      string
	broker    *input.Broker
	logger    *slog.Logger
	debounce  time.Duration
	done      chan struct{}
}

func watchKeyMap(file string, broker *input.Broker, logger *slog.Logger) (*keyMapWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	// Watch the directory; editors replace files instead of writing them.
	dir := filepath.Dir(file)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	w := &keyMapWatcher{
		fsWatcher: fsw,
		file:      file,
		broker:    broker,
		logger:    logger.With("component", "keymap"),
		debounce:  200 * time.Millisecond,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *keyMapWatcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *keyMapWatcher) loop() {
	var timer <-chan time.Time
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Clean(event.Name) != filepath.Clean(w.file) {
				continue
			}
			timer = time.After(w.debounce)
		case <-timer:
			timer = nil
			w.reload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		case <-w.done:
			return
		}
	}
}

func (w *keyMapWatcher) reload() {
	km, err := loadKeyMap(w.file)
	if err != nil {
		w.logger.Error("key map not reloaded", "err", err)
		return
	}
	if !input.TrySend[input.Msg](w.broker.ToEngine, input.KeyMapMsg{KeyMap: km}) {
		w.logger.Warn("key map reload dropped, input engine is busy")
		return
	}
	w.logger.Info("key map reloaded", "file", w.file)
}
