// Package lifecycle models which playback surface currently owns the user's attention.
//
// Foreground means the local on-screen surface is displayed; background means
// the remote renderer is the presentation surface. Transitions are asynchronous
// and pass through an explicit in-transition state before settling.
package lifecycle

import "context"

// State enumerates the surface ownership states reported by a Signal.
type State int

const (
	Foreground State = iota
	Background
	InTransitionToForeground
	InTransitionToBackground
)

// String returns a human-readable label for the state.
func (s State) String() string {
	switch s {
	case Foreground:
		return "foreground"
	case Background:
		return "background"
	case InTransitionToForeground:
		return "inTransitionToForeground"
	case InTransitionToBackground:
		return "inTransitionToBackground"
	default:
		return "unknown"
	}
}

// IsBackgroundish reports whether the state hands presentation to the remote side.
// Both the settled background state and the transition into it count: once the
// switch is requested, the remote side is already authoritative for time.
func (s State) IsBackgroundish() bool {
	return s == Background || s == InTransitionToBackground
}

// Signal reports the current surface state and accepts transition requests.
// Implementations must deliver state-change notifications for every state the
// signal passes through, including the transitional ones.
type Signal interface {
	// State returns the most recently settled or transitional state.
	State() State

	// MoveToForeground requests a transition to the local surface.
	MoveToForeground(ctx context.Context) error

	// MoveToBackground requests a transition to the remote surface.
	MoveToBackground(ctx context.Context) error

	// OnStateChange registers a listener invoked for every state change.
	// The returned function removes the listener.
	OnStateChange(fn func(State)) (unsubscribe func())
}
