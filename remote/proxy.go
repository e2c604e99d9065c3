// Package remote provides the remote playback proxy: a handle to playback
// happening on a separate renderer device, synchronized through a cloud
// connector service.
package remote

import "context"

// Track describes a single audio or text track exposed by the remote renderer.
type Track struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Role     string `json:"role"`
	Kind     string `json:"kind"`
	Active   bool   `json:"active"`
}

// Proxy encapsulates the operations a remote renderer accepts and the events it reports.
//
// Position reads are served from the proxy's last known snapshot, never a
// network round trip; SetPosition is fire-and-forget. The renderer remains
// the source of truth and corrects the snapshot through its own events.
type Proxy interface {
	// Load asks the renderer to open the given URL. It returns once the
	// renderer acknowledges the load or ctx expires.
	Load(ctx context.Context, url string) error

	// Play starts remote playback. The takeover flag tells the renderer to
	// claim the presentation surface.
	Play(takeover bool) error

	// Pause suspends remote playback.
	Pause() error

	// Position returns the last known remote playback position in seconds.
	Position() float64

	// SetPosition updates the renderer's playback position.
	SetPosition(seconds float64)

	// Duration returns the last known media length in seconds.
	Duration() float64

	// Paused returns the last known suspension state of the renderer.
	Paused() bool

	// PlaybackRate returns the last known playback speed multiplier.
	PlaybackRate() float64

	// AudioTracks lists the renderer's audio tracks from the last snapshot.
	AudioTracks() []Track

	// TextTracks lists the renderer's text tracks from the last snapshot.
	TextTracks() []Track

	// SelectAudioTrack requests an audio track by id.
	SelectAudioTrack(id string) error

	// SelectTextTrack requests a text track by language criteria.
	SelectTextTrack(lang string) error

	// SetTextTrackVisibility toggles subtitle rendering on the renderer.
	SetTextTrackVisibility(visible bool) error

	// AssetURI returns the URI the renderer currently has loaded.
	AssetURI() string

	// Events returns the proxy's event stream. The channel is closed on Close.
	Events() <-chan Event

	// Close tears down the connection to the renderer.
	Close() error
}

// EventType discriminates the events emitted by a Proxy.
type EventType int

const (
	EventTimeUpdate EventType = iota
	EventEnded
	EventError
	EventLicenseRequest
)

// String returns a human-readable label for the event type.
func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "timeupdate"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	case EventLicenseRequest:
		return "license-request"
	default:
		return "unknown"
	}
}

// LicenseRequest carries a renderer's DRM license request and the callback
// used to deliver the license server's answer, successful or not.
type LicenseRequest struct {
	// Payload is the base64-encoded license request emitted by the renderer's CDM.
	Payload string

	// Respond writes the license server's status and body back to the renderer.
	// It must be called exactly once per request, including for failures.
	Respond func(status int, body []byte) error
}

// Event is a single notification from the remote renderer.
type Event struct {
	Type     EventType
	Position float64
	Err      error
	License  *LicenseRequest
}
