// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package evbind

import (
	"strings"
	"testing"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

func TestNormalizeEventName(t *testing.T) {
	cases := map[string]string{
		"click":       "click",
		"onClick":     "click",
		"onDragStart": "dragstart",
		"onclick":     "click",
		" Input ":     "input",
		"online":      "online",
		"custom:save": "custom:save",
	}
	for in, expected := range cases {
		if out := NormalizeEventName(in); out != expected {
			t.Errorf("NormalizeEventName(%q) = %q, expected %q", in, out, expected)
		}
	}
}

func TestTriggerOrder(t *testing.T) {
	elem := vdom.NewElem("button")
	var calls []string
	for _, name := range []string{"h1", "h2", "h3", "h4"} {
		name := name
		Bind(elem, "click", func(Event) { calls = append(calls, name) })
	}
	for round := 0; round < 3; round++ {
		calls = nil
		count, err := Trigger(elem, Event{EventType: "click"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 4 {
			t.Fatalf("expected 4 handlers run, got %d", count)
		}
		if strings.Join(calls, ",") != "h1,h2,h3,h4" {
			t.Fatalf("bad handler order %v", calls)
		}
	}
}

func TestSameHandlerTwice(t *testing.T) {
	elem := vdom.NewElem("button")
	count := 0
	handler := func(Event) { count++ }
	Bind(elem, "click", handler)
	Bind(elem, "onClick", handler)
	Trigger(elem, Event{EventType: "click"})
	if count != 2 {
		t.Fatalf("expected 2 invocations, got %d", count)
	}
}

func TestEventsAreIsolated(t *testing.T) {
	a := vdom.NewElem("button")
	b := vdom.NewElem("button")
	var aClicks, aInputs, bClicks int
	Bind(a, "click", func(Event) { aClicks++ })
	Bind(a, "input", func(Event) { aInputs++ })
	Bind(b, "click", func(Event) { bClicks++ })
	Trigger(a, Event{EventType: "click"})
	if aClicks != 1 || aInputs != 0 || bClicks != 0 {
		t.Fatalf("unexpected counts a:%d/%d b:%d", aClicks, aInputs, bClicks)
	}
	n, _ := Trigger(b, Event{EventType: "submit"})
	if n != 0 {
		t.Fatalf("no submit handlers expected, ran %d", n)
	}
}

func TestEventFieldsPassed(t *testing.T) {
	elem := vdom.NewElem("input")
	var got Event
	Bind(elem, "input", func(ev Event) { got = ev })
	Trigger(elem, Event{EventType: "onInput", EventData: "hello"})
	if got.ElemId != elem.Id || got.EventType != "input" || got.EventData != "hello" {
		t.Fatalf("bad event passed to handler %#v", got)
	}
}

func TestDispose(t *testing.T) {
	elem := vdom.NewElem("button")
	var calls []int
	b1 := Bind(elem, "click", func(Event) { calls = append(calls, 1) })
	Bind(elem, "click", func(Event) { calls = append(calls, 2) })
	b1.Dispose()
	b1.Dispose()
	if !b1.IsDisposed() {
		t.Fatalf("expected disposed")
	}
	Trigger(elem, Event{EventType: "click"})
	if len(calls) != 1 || calls[0] != 2 {
		t.Fatalf("disposed handler still ran: %v", calls)
	}
}

func TestDisposeDuringTrigger(t *testing.T) {
	elem := vdom.NewElem("button")
	count := 0
	var b2 *Binding
	Bind(elem, "click", func(Event) {
		count++
		b2.Dispose()
	})
	b2 = Bind(elem, "click", func(Event) { count++ })
	// handler list is snapshotted, so b2 still runs for this trigger
	Trigger(elem, Event{EventType: "click"})
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	count = 0
	Trigger(elem, Event{EventType: "click"})
	if count != 1 {
		t.Fatalf("expected 1 after dispose, got %d", count)
	}
}

func TestPanickingHandler(t *testing.T) {
	elem := vdom.NewElem("button")
	ran := false
	Bind(elem, "click", func(Event) { panic("boom") })
	Bind(elem, "click", func(Event) { ran = true })
	count, err := Trigger(elem, Event{EventType: "click"})
	if count != 2 {
		t.Fatalf("expected 2 handlers, got %d", count)
	}
	if !ran {
		t.Fatalf("handler after panic should still run")
	}
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic error, got %v", err)
	}
}

func TestBindingGroup(t *testing.T) {
	a := vdom.NewElem("button")
	b := vdom.NewElem("input")
	group := MakeBindingGroup()
	count := 0
	group.Bind(a, "click", func(Event) { count++ })
	group.Bind(b, "input", func(Event) { count++ })
	Bind(a, "click", func(Event) { count += 10 })
	if group.Len() != 2 {
		t.Fatalf("expected 2 bindings")
	}
	group.DisposeAll()
	Trigger(a, Event{EventType: "click"})
	Trigger(b, Event{EventType: "input"})
	if count != 10 {
		t.Fatalf("only the ungrouped handler should run, count=%d", count)
	}
}

func TestDestroyDropsBindings(t *testing.T) {
	parent := vdom.NewElem("div")
	child := vdom.NewElem("button")
	parent.AppendChild(child)
	count := 0
	Bind(child, "click", func(Event) { count++ })
	parent.Destroy()
	n, _ := Trigger(child, Event{EventType: "click"})
	if n != 0 || count != 0 {
		t.Fatalf("destroyed element should have no handlers")
	}
}

func TestBindingGroupDisposeTree(t *testing.T) {
	parent := vdom.NewElem("div")
	child := vdom.NewElem("button")
	other := vdom.NewElem("button")
	parent.AppendChild(child)
	group := MakeBindingGroup()
	count := 0
	group.Bind(parent, "click", func(Event) { count++ })
	group.Bind(child, "click", func(Event) { count++ })
	group.Bind(child, "input", func(Event) { count++ })
	group.Bind(other, "click", func(Event) { count += 10 })
	if group.Len() != 4 {
		t.Fatalf("expected 4 bindings, got %d", group.Len())
	}
	if n := group.DisposeTree(parent); n != 3 {
		t.Fatalf("expected 3 disposed, got %d", n)
	}
	if group.Len() != 1 {
		t.Fatalf("expected 1 binding left, got %d", group.Len())
	}
	Trigger(child, Event{EventType: "click"})
	Trigger(other, Event{EventType: "click"})
	if count != 10 {
		t.Fatalf("only the binding outside the tree should run, count=%d", count)
	}
	if n := group.DisposeElem(child.Id); n != 0 {
		t.Fatalf("second dispose should find nothing, got %d", n)
	}
}
