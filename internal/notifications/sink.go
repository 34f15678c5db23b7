// Package notifications provides the keyed warning sink the UI polls to
// render advancement warnings. The engine only ever writes to it.
package notifications

import (
	"sort"
	"sync"
)

// Notification levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is one UI-facing message.
type Notification struct {
	Category string `json:"category"`
	Section  string `json:"section"`
	Level    string `json:"level"`
	Message  string `json:"message"`
}

// Sink is a keyed collection of notifications. Setting the same key twice
// replaces the earlier entry, so recomputes stay idempotent.
type Sink struct {
	mu      sync.RWMutex
	entries map[string]Notification
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{entries: make(map[string]Notification)}
}

// Set records a notification under a key.
func (s *Sink) Set(key string, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = n
}

// Delete removes the notification under a key.
func (s *Sink) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Get returns the notification under a key.
func (s *Sink) Get(key string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.entries[key]
	return n, ok
}

// Len returns the number of notifications held.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns the held keys in sorted order.
func (s *Sink) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns every notification in key order.
func (s *Sink) All() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Notification, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.entries[k])
	}
	return out
}

// Clear removes every notification.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Notification)
}
