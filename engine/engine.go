// Package engine defines the local playback engine abstraction and its mpv-backed implementation.
// The engine renders directly to an on-screen surface and is driven over mpv's JSON-IPC interface.
package engine

import (
	"context"

	"github.com/duocast-cli/duocast/drm"
)

// Engine encapsulates the required capabilities of the local playback side.
// It mirrors a media-element-like surface: position, pause state, duration and
// playback rate, plus a stream of playback events.
type Engine interface {
	// Load opens the given URL in the engine, spawning the underlying process if needed.
	Load(ctx context.Context, url string) error

	// Play resumes playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Paused retrieves the current suspension state.
	Paused() (bool, error)

	// Position retrieves the current absolute playback position in seconds.
	Position() (float64, error)

	// Seek transitions the playback position to a specific absolute timestamp in seconds.
	Seek(seconds float64) error

	// Duration retrieves the total temporal length of the active media in seconds.
	Duration() (float64, error)

	// PlaybackRate retrieves the current playback speed multiplier.
	PlaybackRate() (float64, error)

	// SetPlaybackRate adjusts the playback speed multiplier.
	SetPlaybackRate(rate float64) error

	// SelectAudio requests an audio track by language criteria.
	SelectAudio(lang string) error

	// SelectText requests a subtitle track by language criteria.
	SelectText(lang string) error

	// SetTextVisibility toggles subtitle rendering.
	SetTextVisibility(visible bool) error

	// Events returns the engine's playback event stream. The channel is closed on Close.
	Events() <-chan Event

	// Close terminates the playback engine and releases all associated system resources.
	Close() error
}

// DRMConfigurable is an optional capability for engines that negotiate DRM licenses themselves.
// Engines lacking the capability rely on the caller to run the license exchange out of band.
type DRMConfigurable interface {
	ConfigureDRM(cfg drm.Config) error
}

// EventType discriminates the playback events emitted by an Engine.
type EventType int

const (
	EventTimeUpdate EventType = iota
	EventPlay
	EventPause
	EventSeeking
	EventSeeked
	EventEnded
	EventError
	EventWaiting
	EventCanPlay
	EventLoadedMetadata
)

// String returns a human-readable label for the event type.
func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "timeupdate"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventSeeking:
		return "seeking"
	case EventSeeked:
		return "seeked"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	case EventWaiting:
		return "waiting"
	case EventCanPlay:
		return "canplay"
	case EventLoadedMetadata:
		return "loadedmetadata"
	default:
		return "unknown"
	}
}

// Event is a single playback notification from the engine.
type Event struct {
	Type EventType

	// Position carries the current playback position for timeupdate events.
	Position float64

	// Duration carries the media length for loadedmetadata events.
	Duration float64

	// Err carries the engine-native failure detail for error events.
	Err error
}
