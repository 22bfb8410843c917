// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
)

// Manager keeps the open sessions, keyed by document id
type Manager struct {
	lock     *sync.Mutex
	factory  *compfactory.Factory
	store    DocStore
	sessions map[string]*Session
}

func MakeManager(factory *compfactory.Factory, store DocStore) *Manager {
	if factory == nil {
		factory = compfactory.MakeFactory(nil)
	}
	return &Manager{
		lock:     &sync.Mutex{},
		factory:  factory,
		store:    store,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Factory() *compfactory.Factory {
	return m.factory
}

// Create makes a new document, stores it, and opens a session for it
func (m *Manager) Create(ctx context.Context, name string, kind string, agencyId string, subAccountId string) (*Session, error) {
	if kind != "" && !doctree.IsValidKind(kind) {
		return nil, fmt.Errorf("invalid document kind %q", kind)
	}
	doc := doctree.MakeDocument(name, kind)
	doc.AgencyId = agencyId
	doc.SubAccountId = subAccountId
	if err := m.store.Insert(ctx, doc); err != nil {
		return nil, err
	}
	sess := makeSession(doc, m.factory, m.store)
	m.lock.Lock()
	defer m.lock.Unlock()
	m.sessions[doc.OID] = sess
	log.Printf("[session] created document %s (%s)\n", doc.OID, doc.Kind)
	return sess, nil
}

// Open returns the live session for docId, loading the document from the store if needed
func (m *Manager) Open(ctx context.Context, docId string) (*Session, error) {
	if sess := m.Get(docId); sess != nil {
		return sess, nil
	}
	doc, err := m.store.Get(ctx, docId, m.factory.Registry)
	if err != nil {
		return nil, err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	// lost a race with another Open
	if sess, ok := m.sessions[docId]; ok {
		return sess, nil
	}
	sess := makeSession(doc, m.factory, m.store)
	m.sessions[docId] = sess
	return sess, nil
}

// Get returns the live session for docId (nil if not open)
func (m *Manager) Get(docId string) *Session {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.sessions[docId]
}

func (m *Manager) OpenIds() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	rtn := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		rtn = append(rtn, id)
	}
	sort.Strings(rtn)
	return rtn
}

// Close drops the session and all of its bindings (unsaved changes are discarded)
func (m *Manager) Close(docId string) bool {
	m.lock.Lock()
	sess, ok := m.sessions[docId]
	delete(m.sessions, docId)
	m.lock.Unlock()
	if !ok {
		return false
	}
	sess.close()
	return true
}

// Delete closes any session for docId and removes it from the store
func (m *Manager) Delete(ctx context.Context, docId string) error {
	m.Close(docId)
	return m.store.Delete(ctx, docId)
}

// SaveAll saves every dirty session, returns the first error
func (m *Manager) SaveAll(ctx context.Context) error {
	m.lock.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.lock.Unlock()
	var firstErr error
	for _, sess := range sessions {
		if !sess.IsDirty() {
			continue
		}
		if err := sess.Save(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) CloseAll() {
	for _, id := range m.OpenIds() {
		m.Close(id)
	}
}
