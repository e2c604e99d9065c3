package lifecycle

import (
	"context"
	"sync"
)

// Switcher is an in-process Signal implementation driven by its own transition
// requests. It exists for environments without a host platform reporting
// surface changes: the CLI asks for a switch and the switcher walks the state
// machine on the caller's behalf.
type Switcher struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewSwitcher creates a Switcher settled in the given initial state.
func NewSwitcher(initial State) *Switcher {
	return &Switcher{
		state:     initial,
		listeners: make(map[int]func(State)),
	}
}

// State returns the current state.
func (s *Switcher) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// MoveToForeground walks through InTransitionToForeground and settles in Foreground.
func (s *Switcher) MoveToForeground(ctx context.Context) error {
	return s.transition(ctx, InTransitionToForeground, Foreground)
}

// MoveToBackground walks through InTransitionToBackground and settles in Background.
func (s *Switcher) MoveToBackground(ctx context.Context) error {
	return s.transition(ctx, InTransitionToBackground, Background)
}

func (s *Switcher) transition(ctx context.Context, via, target State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == target {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.set(via)

	// A host platform would confirm asynchronously; the in-process switcher
	// settles immediately, still emitting both notifications.
	if err := ctx.Err(); err != nil {
		return err
	}
	s.set(target)
	return nil
}

// set updates the state and notifies listeners outside the lock.
func (s *Switcher) set(state State) {
	s.mu.Lock()
	s.state = state
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// OnStateChange registers a listener invoked for every state change.
func (s *Switcher) OnStateChange(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
