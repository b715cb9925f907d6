// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// FILE WATCHER
// =============================================================================

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// FileWatcher calls a function whenever one file changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename keep triggering events.
type FileWatcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending time.Time
}

// NewFileWatcher creates a watcher for path. Nothing happens until Start.
func NewFileWatcher(path string, debounce time.Duration, logger *zap.Logger, onChange func(path string)) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		path:     abs,
		onChange: onChange,
		debounce: debounce,
		logger:   logger.Named("watch"),
		watcher:  watcher,
	}, nil
}

// Start begins delivering change notifications until ctx is done or Close
// is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	ctx, fw.cancel = context.WithCancel(ctx)
	fw.wg.Add(2)
	go fw.processEvents(ctx)
	go fw.processPending(ctx)

	fw.logger.Debug("watching file", zap.String("path", fw.path))
	return nil
}

// processEvents records the time of the latest relevant event.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer fw.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.mu.Lock()
			fw.pending = time.Now()
			fw.mu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.String("path", fw.path), zap.Error(err))
		}
	}
}

// processPending fires onChange once events have been quiet for the debounce
// interval.
func (fw *FileWatcher) processPending(ctx context.Context) {
	defer fw.wg.Done()

	ticker := time.NewTicker(fw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fw.mu.Lock()
			fire := !fw.pending.IsZero() && time.Since(fw.pending) >= fw.debounce
			if fire {
				fw.pending = time.Time{}
			}
			fw.mu.Unlock()

			if fire {
				fw.logger.Info("file changed", zap.String("path", fw.path))
				fw.onChange(fw.path)
			}
		}
	}
}

// Close stops watching and waits for the worker goroutines to exit.
func (fw *FileWatcher) Close() error {
	if fw.cancel != nil {
		fw.cancel()
	}
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}
