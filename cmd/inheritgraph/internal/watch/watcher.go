// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-triggers work when source files change.
//
// A Watcher follows every directory under its roots with fsnotify, keeps
// events for files with a watched extension, and hands the changed paths
// to a handler once no new event has arrived for the debounce window.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoRoots indicates a Watcher was created without roots.
var ErrNoRoots = errors.New("watch: no roots given")

// Handler receives the sorted, de-duplicated paths changed in one batch.
type Handler func(ctx context.Context, paths []string)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for quiet before calling the handler.
	// Default: 200ms
	Debounce time.Duration

	// Extensions limits the files that trigger a batch. Empty means any file.
	Extensions []string

	// IgnoreDirs are directory base names that are not watched.
	IgnoreDirs []string

	// BufferSize is the capacity of the event channel.
	// Default: 256
	BufferSize int

	// Logger receives watch errors. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns a 200ms debounce with no filters.
func DefaultOptions() Options {
	return Options{
		Debounce:   200 * time.Millisecond,
		BufferSize: 256,
	}
}

// Watcher watches source roots and batches changes.
//
// # Thread Safety
//
// Run must be called once. The handler runs on the goroutine that called
// Run, never concurrently with itself.
type Watcher struct {
	roots    []string
	fsw      *fsnotify.Watcher
	opts     Options
	exts     map[string]bool
	ignore   map[string]bool
	changes  chan string
	done     chan struct{}
	logger   *slog.Logger
	stopOnce sync.Once
}

// New creates a Watcher and registers every directory under roots. File
// roots watch their directory.
//
// # Outputs
//
//   - *Watcher: Call Run to start and Close when done.
//   - error: ErrNoRoots, a missing root, or an fsnotify setup error.
func New(roots []string, opts Options) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	defaults := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		roots:   append([]string(nil), roots...),
		fsw:     fsw,
		opts:    opts,
		exts:    make(map[string]bool),
		ignore:  make(map[string]bool),
		changes: make(chan string, opts.BufferSize),
		done:    make(chan struct{}),
		logger:  logger,
	}
	for _, e := range opts.Extensions {
		w.exts[strings.ToLower(e)] = true
	}
	for _, d := range opts.IgnoreDirs {
		w.ignore[d] = true
	}
	for _, root := range w.roots {
		if err := w.addRecursive(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run delivers batches to handler until ctx is cancelled or Close is
// called.
func (w *Watcher) Run(ctx context.Context, handler Handler) {
	go w.processEvents(ctx)
	w.debounceLoop(ctx, handler)
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// Watched returns the directories currently watched, sorted.
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	sort.Strings(list)
	return list
}

// addRecursive watches root and every directory below it.
func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignore[d.Name()] {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// relevant reports whether a change to path should trigger a batch.
// Ignored directories are never watched, so only the extension matters.
func (w *Watcher) relevant(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// processEvents forwards relevant fsnotify events to the debounce loop.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New directories are watched as they appear.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.ignore[info.Name()] {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("watch new directory failed", slog.String("path", event.Name), slog.String("error", err.Error()))
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				// A full buffer already guarantees a pending batch.
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// debounceLoop collects changes and calls handler after a quiet window.
func (w *Watcher) debounceLoop(ctx context.Context, handler Handler) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case path := <-w.changes:
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			if handler != nil {
				handler(ctx, paths)
			}
		}
	}
}
