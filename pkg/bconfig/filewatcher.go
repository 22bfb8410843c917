// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package bconfig

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/panichandler"
	"github.com/fsnotify/fsnotify"
)

type SettingsHandler func(settings SettingsType)

// Watcher keeps the current settings and re-reads settings.json when it changes
type Watcher struct {
	lock        *sync.Mutex
	configDir   string
	watcher     *fsnotify.Watcher
	settings    SettingsType
	subscribers []SettingsHandler
	started     bool
}

func MakeWatcher(configDir string) (*Watcher, error) {
	settings, err := ReadSettings(configDir)
	if err != nil {
		log.Printf("[config] %v (using defaults)\n", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// watch the dir, editors replace files rather than writing in place
	err = fsw.Add(configDir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to add path %s to watcher: %w", configDir, err)
	}
	return &Watcher{
		lock:      &sync.Mutex{},
		configDir: configDir,
		watcher:   fsw,
		settings:  settings,
	}, nil
}

// Subscribe registers fn to receive every settings change.  Start sends the initial value.
func (w *Watcher) Subscribe(fn SettingsHandler) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.subscribers = append(w.subscribers, fn)
}

func (w *Watcher) GetSettings() SettingsType {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.settings
}

func (w *Watcher) Start() {
	w.lock.Lock()
	if w.started || w.watcher == nil {
		w.lock.Unlock()
		return
	}
	w.started = true
	fsw := w.watcher
	w.lock.Unlock()

	log.Printf("[config] starting file watcher on %s\n", w.configDir)
	w.broadcast()
	go func() {
		defer func() {
			panichandler.PanicHandler("config:watcher", recover())
		}()
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watcher error: %v\n", err)
			}
		}
	}()
}

func (w *Watcher) Close() {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
		log.Printf("[config] file watcher closed\n")
	}
}

func (w *Watcher) broadcast() {
	w.lock.Lock()
	settings := w.settings
	subs := make([]SettingsHandler, len(w.subscribers))
	copy(subs, w.subscribers)
	w.lock.Unlock()
	for _, fn := range subs {
		fn(settings)
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if filepath.Base(event.Name) != SettingsFile {
		return
	}
	w.Reload()
}

// Reload re-reads settings.json and notifies subscribers.  a broken file keeps the last good settings.
func (w *Watcher) Reload() {
	settings, err := ReadSettings(w.configDir)
	if err != nil {
		log.Printf("[config] %v (keeping previous settings)\n", err)
		return
	}
	w.lock.Lock()
	w.settings = settings
	w.lock.Unlock()
	log.Printf("[config] settings reloaded\n")
	w.broadcast()
}

// RegistryUpdater returns a handler that applies component overrides to reg
func RegistryUpdater(reg *compfactory.Registry) SettingsHandler {
	return func(settings SettingsType) {
		reg.ApplyOverrides(settings.Components)
	}
}
