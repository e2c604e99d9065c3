package remote

import (
	"context"
	"sync"
)

// NullProxy is a Proxy with no renderer behind it, used for local-only
// playback. Commands succeed without effect and no events are ever emitted.
type NullProxy struct {
	mu     sync.Mutex
	pos    float64
	events chan Event
	once   sync.Once
}

// NewNullProxy returns a proxy that accepts every command and does nothing.
func NewNullProxy() *NullProxy {
	return &NullProxy{events: make(chan Event)}
}

func (n *NullProxy) Load(context.Context, string) error { return nil }
func (n *NullProxy) Play(bool) error                    { return nil }
func (n *NullProxy) Pause() error                       { return nil }

func (n *NullProxy) Position() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos
}

func (n *NullProxy) SetPosition(seconds float64) {
	n.mu.Lock()
	n.pos = seconds
	n.mu.Unlock()
}

func (n *NullProxy) Duration() float64                 { return 0 }
func (n *NullProxy) Paused() bool                      { return true }
func (n *NullProxy) PlaybackRate() float64             { return 1 }
func (n *NullProxy) AudioTracks() []Track              { return nil }
func (n *NullProxy) TextTracks() []Track               { return nil }
func (n *NullProxy) SelectAudioTrack(string) error     { return nil }
func (n *NullProxy) SelectTextTrack(string) error      { return nil }
func (n *NullProxy) SetTextTrackVisibility(bool) error { return nil }
func (n *NullProxy) AssetURI() string                  { return "" }
func (n *NullProxy) Events() <-chan Event              { return n.events }

func (n *NullProxy) Close() error {
	n.once.Do(func() { close(n.events) })
	return nil
}
