// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session hosts live documents for the editor.  each open document gets the
// editor handlers (select on click, edit text on input, move on drop) bound to its
// components, and all changes go through the session lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"github.com/agencyforge/pagebuilder/pkg/evbind"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

var ErrSessionNotFound = errors.New("session not found")

// DocStore is the persistence a session needs (satisfied by *bstore.Store)
type DocStore interface {
	Insert(ctx context.Context, doc *doctree.Document) error
	Update(ctx context.Context, doc *doctree.Document) error
	Get(ctx context.Context, oid string, reg *compfactory.Registry) (*doctree.Document, error)
	Delete(ctx context.Context, oid string) error
}

type Session struct {
	lock       *sync.Mutex
	doc        *doctree.Document
	factory    *compfactory.Factory
	store      DocStore
	bindings   *evbind.BindingGroup
	selectedId string
	dirty      bool
	handlerErr error // set by editor handlers during a Dispatch
}

func makeSession(doc *doctree.Document, factory *compfactory.Factory, store DocStore) *Session {
	s := &Session{
		lock:     &sync.Mutex{},
		doc:      doc,
		factory:  factory,
		store:    store,
		bindings: evbind.MakeBindingGroup(),
	}
	s.bindTree(doc.Root)
	return s
}

func (s *Session) DocId() string {
	return s.doc.OID
}

func (s *Session) SelectedId() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.selectedId
}

func (s *Session) IsDirty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.dirty
}

func (s *Session) BindingCount() int {
	return s.bindings.Len()
}

// Dispatch runs the handlers bound on the event's target element.  returns the number of handlers run.
func (s *Session) Dispatch(event vdom.VDomEvent) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	elem := s.doc.Find(event.ElemId)
	if elem == nil {
		return 0, fmt.Errorf("event target %q: %w", event.ElemId, doctree.ErrElemNotFound)
	}
	s.handlerErr = nil
	count, err := evbind.Trigger(elem, event)
	if s.handlerErr != nil {
		err = errors.Join(s.handlerErr, err)
		s.handlerErr = nil
	}
	return count, err
}

// AddComponent creates a component and inserts it under parentId (empty for the root) at index
func (s *Session) AddComponent(compType string, config map[string]any, parentId string, index int) (*vdom.VElem, error) {
	elem, err := s.factory.Create(compType, config)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.doc.Insert(parentId, index, elem); err != nil {
		return nil, err
	}
	s.bindTree(elem)
	s.dirty = true
	return elem, nil
}

func (s *Session) RemoveElement(elemId string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	removed, err := s.doc.Remove(elemId)
	if err != nil {
		return err
	}
	s.bindings.DisposeTree(removed)
	if s.selectedId != "" && (s.selectedId == elemId || removed.Contains(s.selectedId)) {
		s.selectedId = ""
	}
	s.dirty = true
	return nil
}

func (s *Session) MoveElement(elemId string, parentId string, index int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.doc.Move(elemId, parentId, index); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Save persists the document, inserting it if it was never stored
func (s *Session) Save(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	var err error
	if s.doc.Version == 0 {
		err = s.store.Insert(ctx, s.doc)
	} else {
		err = s.store.Update(ctx, s.doc)
	}
	if err != nil {
		return fmt.Errorf("saving document %s: %w", s.doc.OID, err)
	}
	s.dirty = false
	log.Printf("[session] saved document %s version %d\n", s.doc.OID, s.doc.Version)
	return nil
}

// Snapshot returns the encoded document
func (s *Session) Snapshot() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return doctree.Encode(s.doc)
}

func (s *Session) RenderHTML() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return doctree.RenderHTML(s.doc)
}

func (s *Session) RenderPage() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return doctree.RenderPage(s.doc)
}

// WithDoc runs fn with the document under the session lock.  fn must not keep the pointer.
func (s *Session) WithDoc(fn func(doc *doctree.Document) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(s.doc)
}

func (s *Session) close() {
	s.bindings.DisposeAll()
	s.lock.Lock()
	defer s.lock.Unlock()
	s.doc.Close()
}
