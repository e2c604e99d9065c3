// Package playback implements the dual-playback coordinator: the facade that
// keeps the local engine and the remote renderer consistent and decides which
// one is authoritative for time and play-state at any moment.
package playback

import "github.com/duocast-cli/duocast/lifecycle"

// Mode identifies which playback side is currently authoritative.
// Exactly one mode is active at a time; it mirrors the lifecycle signal.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
	ModeTransitioningToLocal
	ModeTransitioningToRemote
)

// String returns a human-readable label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	case ModeTransitioningToLocal:
		return "transitioning to local"
	case ModeTransitioningToRemote:
		return "transitioning to remote"
	default:
		return "unknown"
	}
}

// IsRemote reports whether the remote side owns time and play-state.
// The transition into remote already counts: once the switch is requested
// the renderer must be treated as authoritative.
func (m Mode) IsRemote() bool {
	return m == ModeRemote || m == ModeTransitioningToRemote
}

// modeFor maps a lifecycle state onto the corresponding playback mode.
func modeFor(s lifecycle.State) Mode {
	switch s {
	case lifecycle.Background:
		return ModeRemote
	case lifecycle.InTransitionToBackground:
		return ModeTransitioningToRemote
	case lifecycle.InTransitionToForeground:
		return ModeTransitioningToLocal
	default:
		return ModeLocal
	}
}
