// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package docbus fans document updates out to every editor connection watching a document.
package docbus

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
)

const SubscriberBufferSize = 50

var ErrQueueFull = errors.New("document update queue full")

const (
	UpdateReason_Event  = "event"
	UpdateReason_Add    = "add"
	UpdateReason_Remove = "remove"
	UpdateReason_Save   = "save"
)

type DocUpdate struct {
	DocId    string          `json:"oid"`
	Origin   string          `json:"origin,omitempty"` // subscriber id that caused the update, "" for http
	Reason   string          `json:"reason"`
	Document json.RawMessage `json:"document,omitempty"`
}

type Bus struct {
	lock    *sync.Mutex
	subs    map[string]map[string]chan DocUpdate
	dropped int64
	closed  bool
}

func MakeBus() *Bus {
	return &Bus{
		lock: &sync.Mutex{},
		subs: make(map[string]map[string]chan DocUpdate),
	}
}

// Subscribe returns a channel receiving every update published for docId.
// the channel is closed by Unsubscribe (or Close).  re-subscribing the same subId replaces the old channel.
func (b *Bus) Subscribe(docId string, subId string) <-chan DocUpdate {
	b.lock.Lock()
	defer b.lock.Unlock()
	ch := make(chan DocUpdate, SubscriberBufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	docSubs := b.subs[docId]
	if docSubs == nil {
		docSubs = make(map[string]chan DocUpdate)
		b.subs[docId] = docSubs
	}
	if oldCh, ok := docSubs[subId]; ok {
		close(oldCh)
	}
	docSubs[subId] = ch
	return ch
}

func (b *Bus) Unsubscribe(docId string, subId string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	docSubs := b.subs[docId]
	ch, ok := docSubs[subId]
	if !ok {
		return
	}
	close(ch)
	delete(docSubs, subId)
	if len(docSubs) == 0 {
		delete(b.subs, docId)
	}
}

func (b *Bus) SubscriberCount(docId string) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.subs[docId])
}

// Publish never blocks.  slow subscribers miss the update (they get the next full document anyway).
// returns the number of subscribers the update was delivered to.
func (b *Bus) Publish(update DocUpdate) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	delivered := 0
	for subId, ch := range b.subs[update.DocId] {
		if err := sendNonBlocking(ch, update); err != nil {
			b.dropped++
			log.Printf("[docbus] dropped update doc:%s sub:%s: %v\n", update.DocId, subId, err)
			continue
		}
		delivered++
	}
	return delivered
}

func (b *Bus) DroppedCount() int64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.dropped
}

// Close closes every subscriber channel, later subscriptions get a closed channel
func (b *Bus) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	for docId, docSubs := range b.subs {
		for _, ch := range docSubs {
			close(ch)
		}
		delete(b.subs, docId)
	}
}

func sendNonBlocking(ch chan DocUpdate, update DocUpdate) error {
	select {
	case ch <- update:
		return nil
	default:
		return ErrQueueFull
	}
}
