// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import "sync"

type HandlerFn = func(event VDomEvent)

type handlerEntry struct {
	Id int64
	Fn HandlerFn
}

// per-element handler lists, keyed by event name.  entries keep registration order.
type HandlerSet struct {
	lock     *sync.Mutex
	nextId   int64
	handlers map[string][]handlerEntry
}

func MakeHandlerSet() *HandlerSet {
	return &HandlerSet{
		lock:     &sync.Mutex{},
		handlers: make(map[string][]handlerEntry),
	}
}

func (hs *HandlerSet) add(eventName string, fn HandlerFn) int64 {
	hs.lock.Lock()
	defer hs.lock.Unlock()
	hs.nextId++
	hs.handlers[eventName] = append(hs.handlers[eventName], handlerEntry{Id: hs.nextId, Fn: fn})
	return hs.nextId
}

func (hs *HandlerSet) remove(eventName string, id int64) bool {
	if hs == nil {
		return false
	}
	hs.lock.Lock()
	defer hs.lock.Unlock()
	entries := hs.handlers[eventName]
	for idx, entry := range entries {
		if entry.Id != id {
			continue
		}
		newEntries := make([]handlerEntry, 0, len(entries)-1)
		newEntries = append(newEntries, entries[:idx]...)
		newEntries = append(newEntries, entries[idx+1:]...)
		if len(newEntries) == 0 {
			delete(hs.handlers, eventName)
		} else {
			hs.handlers[eventName] = newEntries
		}
		return true
	}
	return false
}

func (hs *HandlerSet) snapshot(eventName string) []HandlerFn {
	if hs == nil {
		return nil
	}
	hs.lock.Lock()
	defer hs.lock.Unlock()
	entries := hs.handlers[eventName]
	if len(entries) == 0 {
		return nil
	}
	rtn := make([]HandlerFn, len(entries))
	for idx, entry := range entries {
		rtn[idx] = entry.Fn
	}
	return rtn
}

func (hs *HandlerSet) eventNames() []string {
	if hs == nil {
		return nil
	}
	hs.lock.Lock()
	defer hs.lock.Unlock()
	var rtn []string
	for name := range hs.handlers {
		rtn = append(rtn, name)
	}
	return rtn
}

func (hs *HandlerSet) clear() {
	if hs == nil {
		return
	}
	hs.lock.Lock()
	defer hs.lock.Unlock()
	hs.handlers = make(map[string][]handlerEntry)
}

// AddHandler registers fn for eventName and returns a registration id for RemoveHandler
func (e *VElem) AddHandler(eventName string, fn HandlerFn) int64 {
	if e.handlers == nil {
		e.handlers = MakeHandlerSet()
	}
	return e.handlers.add(eventName, fn)
}

func (e *VElem) RemoveHandler(eventName string, id int64) bool {
	return e.handlers.remove(eventName, id)
}

// GetHandlers returns the handlers for eventName in registration order.
// the returned slice is a copy, handlers bound while it is being run are not included.
func (e *VElem) GetHandlers(eventName string) []HandlerFn {
	return e.handlers.snapshot(eventName)
}

func (e *VElem) HandlerCount(eventName string) int {
	return len(e.handlers.snapshot(eventName))
}

func (e *VElem) BoundEvents() []string {
	return e.handlers.eventNames()
}
