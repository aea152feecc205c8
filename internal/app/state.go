// Package app provides application state, configuration, and events.
package app

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoSuchImage is returned when an index is outside the gallery.
var ErrNoSuchImage = errors.New("no such image")

// State holds the gallery of image URLs and which one is open in the viewer.
type State struct {
	mu sync.RWMutex

	urls    []string
	current int // -1 when the viewer is closed

	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventGalleryChanged EventType = iota
	EventImageOpened
	EventViewerClosed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState() *State {
	return &State{
		current:   -1,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// URLs returns a copy of the gallery.
func (s *State) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.urls...)
}

// Len returns the number of images in the gallery.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}

// URL returns the image at index i.
func (s *State) URL(i int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.urls) {
		return "", ErrNoSuchImage
	}
	return s.urls[i], nil
}

// AddURLs appends URLs that are not already in the gallery and returns how
// many were added.
func (s *State) AddURLs(urls ...string) int {
	s.mu.Lock()
	seen := make(map[string]bool, len(s.urls))
	for _, u := range s.urls {
		seen[u] = true
	}
	added := 0
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		s.urls = append(s.urls, u)
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.Emit(EventGalleryChanged, added)
	}
	return added
}

// Remove deletes the image at index i. Removing the open image closes the
// viewer.
func (s *State) Remove(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.urls) {
		s.mu.Unlock()
		return ErrNoSuchImage
	}
	s.urls = append(s.urls[:i], s.urls[i+1:]...)
	closed := false
	switch {
	case s.current == i:
		s.current = -1
		closed = true
	case s.current > i:
		s.current--
	}
	s.mu.Unlock()

	if closed {
		s.Emit(EventViewerClosed, nil)
	}
	s.Emit(EventGalleryChanged, -1)
	return nil
}

// Current returns the index of the image open in the viewer, or -1.
func (s *State) Current() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Open marks image i as shown and emits EventImageOpened with its URL.
func (s *State) Open(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.urls) {
		s.mu.Unlock()
		return ErrNoSuchImage
	}
	s.current = i
	url := s.urls[i]
	s.mu.Unlock()

	s.Emit(EventImageOpened, url)
	return nil
}

// Close marks the viewer as closed. It is a no-op when nothing is open.
func (s *State) Close() {
	s.mu.Lock()
	if s.current < 0 {
		s.mu.Unlock()
		return
	}
	s.current = -1
	s.mu.Unlock()

	s.Emit(EventViewerClosed, nil)
}
