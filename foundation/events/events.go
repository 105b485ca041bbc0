// Package events allows for the registering and receiving of ledger events
// by websocket subscribers.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// ViewerPrefix marks events that are meant for websocket subscribers. Any
// other event is only written to the logs.
const ViewerPrefix = "viewer:"

// messageBuffer is the number of events held for a subscriber that is not
// ready to receive. Events beyond this are dropped for that subscriber.
const messageBuffer = 100

// Events maintains a mapping of subscriber id and channels so goroutines
// can register and receive events.
type Events struct {
	mu sync.RWMutex
	m  map[string]chan string
}

// New constructs an events value for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a subscriber id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.m[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	evt.m[id] = ch

	return ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Count returns the number of active subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals a viewer event to every registered channel with the viewer
// prefix removed. Send will not block waiting for a receiver on any given
// channel and reports if the event was a viewer event.
func (evt *Events) Send(s string) bool {
	msg, ok := strings.CutPrefix(s, ViewerPrefix)
	if !ok {
		return false
	}
	msg = strings.TrimSpace(msg)

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- msg:
		default:
		}
	}

	return true
}
