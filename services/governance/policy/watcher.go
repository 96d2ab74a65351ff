// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher is a Provider that hot-reloads a policy file on change.
//
// The active table sits behind an atomic pointer: readers never block
// on a reload, and a reload that fails validation keeps the previous
// table active. A bad edit can therefore degrade freshness but never
// leave the process without a valid policy.
//
// Thread Safety: Safe for concurrent use.
type Watcher struct {
	path    string
	current atomic.Pointer[Table]
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
}

// NewWatcher loads the policy file and begins watching it for changes.
//
// Description:
//
//	The initial load is mandatory: if the file does not parse, the
//	watcher is not created. The parent directory is watched (editors
//	commonly replace files via rename), and any event touching the
//	target path triggers a reload attempt.
//
// Inputs:
//
//	path - Policy file to load and watch.
//	logger - Logger for reload outcomes. Must not be nil.
//
// Outputs:
//
//	*Watcher - The running watcher. Call Close() on shutdown.
//	error - Non-nil if the initial load or watch setup fails.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}

	table, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &ConfigError{Reason: "create policy watcher", Err: err}
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, &ConfigError{Reason: "watch policy directory", Err: err}
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		logger:  logger,
		done:    make(chan struct{}),
	}
	w.current.Store(table)
	go w.run()
	return w, nil
}

// Current implements Provider.
func (w *Watcher) Current() *Table {
	return w.current.Load()
}

// Close stops watching and releases the underlying notifier.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("policy watcher error", "error", err.Error())
		}
	}
}

// reload attempts to swap in the file's current contents. Failures
// keep the previous table active.
func (w *Watcher) reload() {
	table, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("policy reload rejected, keeping previous table",
			"path", w.path,
			"error", err.Error(),
		)
		return
	}
	w.current.Store(table)
	w.logger.Info("policy table reloaded",
		"path", w.path,
		"content_types", len(table.ContentTypes()),
	)
}
