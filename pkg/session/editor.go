// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"log"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"github.com/agencyforge/pagebuilder/pkg/evbind"
	"github.com/agencyforge/pagebuilder/pkg/util/utilfn"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

// payload of a drop event, the dragged element lands under the event target
type DropData struct {
	DragId string `json:"dragid"`
	Index  *int   `json:"index,omitempty"`
}

type InputData struct {
	Value string `json:"value"`
}

var textBearingTypes = map[string]bool{
	compfactory.CompType_Button: true,
	compfactory.CompType_Header: true,
	compfactory.CompType_Text:   true,
	compfactory.CompType_Link:   true,
}

func isTextBearing(elem *vdom.VElem) bool {
	return textBearingTypes[elem.CompType]
}

func isDropTarget(elem *vdom.VElem) bool {
	return elem.CompType == doctree.RootCompType || elem.CompType == compfactory.CompType_Container
}

// bindTree binds the editor handlers to every component in the subtree.
// handlers run inside Dispatch (session lock held), they must not lock.
func (s *Session) bindTree(root *vdom.VElem) {
	root.Walk(func(elem *vdom.VElem, _ *vdom.VElem) bool {
		if elem.CompType == "" {
			return true
		}
		s.bindings.Bind(elem, evbind.Event_Click, s.handleSelect)
		if isTextBearing(elem) {
			s.bindings.Bind(elem, evbind.Event_Input, s.handleInput)
		}
		if isDropTarget(elem) {
			s.bindings.Bind(elem, evbind.Event_Drop, s.handleDrop)
		}
		return true
	})
}

func (s *Session) setHandlerErr(err error) {
	log.Printf("[session] doc %s: %v\n", s.doc.OID, err)
	if s.handlerErr == nil {
		s.handlerErr = err
	}
}

func (s *Session) handleSelect(event evbind.Event) {
	s.selectedId = event.ElemId
}

func (s *Session) handleInput(event evbind.Event) {
	elem := s.doc.Find(event.ElemId)
	if elem == nil {
		return
	}
	var text string
	switch data := event.EventData.(type) {
	case string:
		text = data
	case nil:
		text = ""
	default:
		var input InputData
		if err := utilfn.DoMapStructure(&input, data); err != nil {
			s.setHandlerErr(fmt.Errorf("bad input event data: %w", err))
			return
		}
		text = input.Value
	}
	elem.SetText(text)
	s.dirty = true
}

func (s *Session) handleDrop(event evbind.Event) {
	var drop DropData
	if err := utilfn.DoMapStructure(&drop, event.EventData); err != nil {
		s.setHandlerErr(fmt.Errorf("bad drop event data: %w", err))
		return
	}
	if drop.DragId == "" {
		s.setHandlerErr(fmt.Errorf("drop event missing dragid"))
		return
	}
	index := -1
	if drop.Index != nil {
		index = *drop.Index
	}
	if err := s.doc.Move(drop.DragId, event.ElemId, index); err != nil {
		s.setHandlerErr(err)
		return
	}
	s.dirty = true
}
