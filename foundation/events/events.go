// Package events fans chain events, such as mining progress, out to any
// number of receivers.
package events

import (
	"fmt"
	"sync"
)

// DefaultBuffer is the number of events held for a slow receiver before
// events start being dropped for it.
const DefaultBuffer = 100

// Events holds one buffered channel per receiver id.
type Events struct {
	m      map[string]chan string
	mu     sync.RWMutex
	buffer int
}

// New returns an empty registry. Every receiver channel holds up to buffer
// events.
func New(buffer int) *Events {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Events{
		m:      make(map[string]chan string),
		buffer: buffer,
	}
}

// Shutdown closes every receiver channel so receivers see the end of the
// stream.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire returns the channel for the id, registering it on first use.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.m[id]; exists {
		return ch
	}

	ch := make(chan string, evt.buffer)
	evt.m[id] = ch

	return ch
}

// Release closes the channel of the id and forgets it.
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

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send offers the event to every receiver. A receiver whose buffer is
// full misses the event, Send never blocks.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}
