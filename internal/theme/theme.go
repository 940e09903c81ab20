// Package theme models the host page's light/dark display mode and the
// change notifications other components subscribe to.
package theme

import (
	"strings"
	"sync"
)

// Mode is the display mode of the host.
type Mode int

const (
	Light Mode = iota
	Dark
)

// ParseMode maps "dark" to Dark. Anything else, including an unset value,
// is Light.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "dark") {
		return Dark
	}
	return Light
}

func (m Mode) String() string {
	if m == Dark {
		return "dark"
	}
	return "light"
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Signal holds the current mode and notifies subscribers when it changes.
type Signal struct {
	mu     sync.Mutex
	mode   Mode
	nextID int
	subs   map[int]func(Mode)
}

// NewSignal creates a Signal starting at initial.
func NewSignal(initial Mode) *Signal {
	return &Signal{
		mode: initial,
		subs: make(map[int]func(Mode)),
	}
}

// Mode returns the current mode.
func (s *Signal) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set updates the mode. Subscribers run synchronously on the caller's
// goroutine, and only when the value actually changes.
func (s *Signal) Set(m Mode) {
	s.mu.Lock()
	if s.mode == m {
		s.mu.Unlock()
		return
	}
	s.mode = m
	fns := make([]func(Mode), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}

// Subscribe registers fn and returns a func that removes it.
func (s *Signal) Subscribe(fn func(Mode)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
