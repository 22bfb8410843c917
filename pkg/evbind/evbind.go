// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package evbind attaches event handlers to visual elements.
//
// Handlers bound to the same (element, event) fire in the order they were bound,
// every registration fires (binding the same func twice runs it twice).  Bind returns
// a Binding whose Dispose removes just that registration.  Element liveness is not
// checked, binding to a destroyed element is the caller's problem.
package evbind

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agencyforge/pagebuilder/pkg/panichandler"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

type Event = vdom.VDomEvent
type Handler = vdom.HandlerFn

const (
	Event_Click      = "click"
	Event_DblClick   = "dblclick"
	Event_Input      = "input"
	Event_Change     = "change"
	Event_Submit     = "submit"
	Event_Focus      = "focus"
	Event_Blur       = "blur"
	Event_KeyDown    = "keydown"
	Event_DragStart  = "dragstart"
	Event_DragOver   = "dragover"
	Event_Drop       = "drop"
	Event_DragEnd    = "dragend"
	Event_MouseEnter = "mouseenter"
	Event_MouseLeave = "mouseleave"
)

var KnownEvents = map[string]bool{
	Event_Click:      true,
	Event_DblClick:   true,
	Event_Input:      true,
	Event_Change:     true,
	Event_Submit:     true,
	Event_Focus:      true,
	Event_Blur:       true,
	Event_KeyDown:    true,
	Event_DragStart:  true,
	Event_DragOver:   true,
	Event_Drop:       true,
	Event_DragEnd:    true,
	Event_MouseEnter: true,
	Event_MouseLeave: true,
}

// NormalizeEventName maps React style prop names ("onClick", "onDragStart") and
// mixed case names to DOM event names ("click", "dragstart")
func NormalizeEventName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 2 && strings.HasPrefix(name, "on") && name[2] >= 'A' && name[2] <= 'Z' {
		return strings.ToLower(name[2:])
	}
	lname := strings.ToLower(name)
	if strings.HasPrefix(lname, "on") && KnownEvents[lname[2:]] {
		return lname[2:]
	}
	return lname
}

type Binding struct {
	lock      *sync.Mutex
	elem      *vdom.VElem
	eventName string
	id        int64
	disposed  bool
}

func (b *Binding) EventName() string {
	return b.eventName
}

func (b *Binding) Elem() *vdom.VElem {
	return b.elem
}

// Dispose removes this registration.  safe to call more than once.
func (b *Binding) Dispose() {
	if b == nil {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.disposed {
		return
	}
	b.disposed = true
	b.elem.RemoveHandler(b.eventName, b.id)
}

func (b *Binding) IsDisposed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.disposed
}

// Bind registers handler to run on every future eventName event on elem
func Bind(elem *vdom.VElem, eventName string, handler Handler) *Binding {
	eventName = NormalizeEventName(eventName)
	id := elem.AddHandler(eventName, handler)
	return &Binding{
		lock:      &sync.Mutex{},
		elem:      elem,
		eventName: eventName,
		id:        id,
	}
}

// BindingGroup collects bindings so a host can dispose them together (e.g. when a session closes).
// bindings are kept per element id, so a removed subtree can release just its own.
type BindingGroup struct {
	lock   *sync.Mutex
	byElem map[string][]*Binding
	count  int
}

func MakeBindingGroup() *BindingGroup {
	return &BindingGroup{lock: &sync.Mutex{}, byElem: make(map[string][]*Binding)}
}

func (g *BindingGroup) Bind(elem *vdom.VElem, eventName string, handler Handler) *Binding {
	b := Bind(elem, eventName, handler)
	g.lock.Lock()
	defer g.lock.Unlock()
	g.byElem[elem.Id] = append(g.byElem[elem.Id], b)
	g.count++
	return b
}

func (g *BindingGroup) Len() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.count
}

// DisposeElem disposes and forgets every binding the group holds for elemId.  returns how many.
func (g *BindingGroup) DisposeElem(elemId string) int {
	g.lock.Lock()
	bindings := g.byElem[elemId]
	delete(g.byElem, elemId)
	g.count -= len(bindings)
	g.lock.Unlock()
	for _, b := range bindings {
		b.Dispose()
	}
	return len(bindings)
}

// DisposeTree releases the bindings of root and all its descendants
func (g *BindingGroup) DisposeTree(root *vdom.VElem) int {
	total := 0
	root.Walk(func(elem *vdom.VElem, _ *vdom.VElem) bool {
		if elem.Id != "" {
			total += g.DisposeElem(elem.Id)
		}
		return true
	})
	return total
}

func (g *BindingGroup) DisposeAll() {
	g.lock.Lock()
	byElem := g.byElem
	g.byElem = make(map[string][]*Binding)
	g.count = 0
	g.lock.Unlock()
	for _, bindings := range byElem {
		for _, b := range bindings {
			b.Dispose()
		}
	}
}

// Trigger runs every handler bound for event.EventType on elem, in registration order.
// returns the number of handlers run.  a panicking handler does not stop the ones after it,
// the panics are returned joined into the error.
func Trigger(elem *vdom.VElem, event Event) (int, error) {
	if elem == nil {
		return 0, nil
	}
	event.EventType = NormalizeEventName(event.EventType)
	if event.ElemId == "" {
		event.ElemId = elem.Id
	}
	handlers := elem.GetHandlers(event.EventType)
	var errs []error
	for idx, handler := range handlers {
		if err := runHandler(handler, event, idx); err != nil {
			errs = append(errs, err)
		}
	}
	return len(handlers), errors.Join(errs...)
}

func runHandler(handler Handler, event Event, idx int) (rtnErr error) {
	defer func() {
		rtnErr = panichandler.PanicHandler(fmt.Sprintf("event handler %s[%d] on %s", event.EventType, idx, event.ElemId), recover())
	}()
	handler(event)
	return nil
}
