// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"fmt"

	"github.com/google/uuid"
)

func MakeElemId() string {
	return uuid.New().String()
}

// NewElem returns a detached element with a fresh id
func NewElem(tag string) *VElem {
	return &VElem{Id: MakeElemId(), Tag: tag}
}

func TextElem(text string) *VElem {
	return &VElem{Tag: TextTag, Text: text}
}

func (e *VElem) Key() string {
	keyVal, ok := e.Props[KeyPropKey]
	if !ok {
		return ""
	}
	keyStr, ok := keyVal.(string)
	if ok {
		return keyStr
	}
	return ""
}

func (e *VElem) IsText() bool {
	return e != nil && e.Tag == TextTag
}

func (e *VElem) CanHaveChildren() bool {
	if e == nil || e.IsText() {
		return false
	}
	return !IsVoidTag(e.Tag)
}

func (e *VElem) SetText(text string) {
	e.Text = text
}

func (e *VElem) SetStyle(prop string, val string) {
	if e.Style == nil {
		e.Style = make(map[string]string)
	}
	if val == "" {
		delete(e.Style, prop)
		return
	}
	e.Style[prop] = val
}

// nil removes the prop
func (e *VElem) SetProp(name string, val any) {
	if val == nil {
		delete(e.Props, name)
		return
	}
	if e.Props == nil {
		e.Props = make(map[string]any)
	}
	e.Props[name] = val
}

func (e *VElem) GetPropString(name string) string {
	val, ok := e.Props[name]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", val)
}

func (e *VElem) AppendChild(child *VElem) {
	if child == nil {
		return
	}
	e.Children = append(e.Children, child)
}

// index < 0 or past the end appends
func (e *VElem) InsertChild(index int, child *VElem) {
	if child == nil {
		return
	}
	if index < 0 || index >= len(e.Children) {
		e.Children = append(e.Children, child)
		return
	}
	e.Children = append(e.Children, nil)
	copy(e.Children[index+1:], e.Children[index:])
	e.Children[index] = child
}

func (e *VElem) ChildIndex(id string) int {
	for idx, child := range e.Children {
		if child != nil && child.Id == id {
			return idx
		}
	}
	return -1
}

// removes a direct child, returns nil if id is not a direct child
func (e *VElem) RemoveChild(id string) *VElem {
	idx := e.ChildIndex(id)
	if idx == -1 {
		return nil
	}
	child := e.Children[idx]
	e.Children = append(e.Children[:idx], e.Children[idx+1:]...)
	return child
}

// preorder walk, stops descending when fn returns false
func (e *VElem) Walk(fn func(elem *VElem, parent *VElem) bool) {
	walkElem(e, nil, fn)
}

func walkElem(e *VElem, parent *VElem, fn func(*VElem, *VElem) bool) {
	if e == nil {
		return
	}
	if !fn(e, parent) {
		return
	}
	for _, child := range e.Children {
		walkElem(child, e, fn)
	}
}

// Find returns the element with the given id and its parent
func (e *VElem) Find(id string) (*VElem, *VElem) {
	if id == "" {
		return nil, nil
	}
	var found, foundParent *VElem
	e.Walk(func(elem *VElem, parent *VElem) bool {
		if found != nil {
			return false
		}
		if elem.Id == id {
			found = elem
			foundParent = parent
			return false
		}
		return true
	})
	return found, foundParent
}

func (e *VElem) Contains(id string) bool {
	found, _ := e.Find(id)
	return found != nil
}

// Clone deep copies the element tree with new ids.  event bindings are not copied.
func (e *VElem) Clone() *VElem {
	if e == nil {
		return nil
	}
	rtn := &VElem{Tag: e.Tag, CompType: e.CompType, Text: e.Text}
	if !e.IsText() {
		rtn.Id = MakeElemId()
	}
	if e.Props != nil {
		rtn.Props = make(map[string]any, len(e.Props))
		for k, v := range e.Props {
			rtn.Props[k] = v
		}
	}
	if e.Style != nil {
		rtn.Style = make(map[string]string, len(e.Style))
		for k, v := range e.Style {
			rtn.Style[k] = v
		}
	}
	for _, child := range e.Children {
		rtn.Children = append(rtn.Children, child.Clone())
	}
	return rtn
}

// Destroy drops all event bindings on this element and its descendants.
// the element should not be used after it is destroyed.
func (e *VElem) Destroy() {
	e.Walk(func(elem *VElem, _ *VElem) bool {
		elem.handlers.clear()
		elem.handlers = nil
		return true
	})
}
