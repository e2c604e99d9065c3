package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

// frame is the JSON envelope exchanged with the cloud connector in both directions.
type frame struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	Event     string  `json:"event,omitempty"`
	Error     string  `json:"error,omitempty"`
	URL       string  `json:"url,omitempty"`
	Position  float64 `json:"position,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Rate      float64 `json:"rate,omitempty"`
	Paused    bool    `json:"paused,omitempty"`
	Takeover  bool    `json:"takeover,omitempty"`
	Visible   *bool   `json:"visible,omitempty"`
	TrackID   string  `json:"track_id,omitempty"`
	Language  string  `json:"language,omitempty"`
	AssetURI  string  `json:"asset_uri,omitempty"`
	Audio     []Track `json:"audio_tracks,omitempty"`
	Text      []Track `json:"text_tracks,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	Payload   string  `json:"payload,omitempty"`
	Status    int     `json:"status,omitempty"`
	Body      string  `json:"body,omitempty"`
}

// snapshot is the last renderer state reported by the connector.
type snapshot struct {
	position float64
	duration float64
	rate     float64
	paused   bool
	assetURI string
	audio    []Track
	text     []Track
}

// Connector is a Proxy backed by a WebSocket session to the cloud connector
// service, which relays commands to a single renderer device.
type Connector struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.RWMutex
	state   snapshot
	pending map[string]chan error

	events chan Event
	done   chan struct{}
	closed sync.Once
}

// Dial opens a session to the renderer identified by device through the
// configured cloud connector, authenticating with the stored token.
func Dial(ctx context.Context, device Device, token string) (*Connector, error) {
	endpoint, err := sessionURL(viper.GetString(key.RemoteConnectorURL), device.ID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connector handshake: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("connector handshake: %w", err)
	}

	c := &Connector{
		conn:    conn,
		pending: make(map[string]chan error),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		state:   snapshot{rate: 1},
	}

	go c.readPump()
	return c, nil
}

// sessionURL derives the WebSocket session endpoint from the connector base URL.
func sessionURL(base, deviceID string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("remote connector URL is not configured (set %s)", key.RemoteConnectorURL)
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse connector URL: %w", err)
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/devices/" + url.PathEscape(deviceID)
	return u.String(), nil
}

// Load implements Proxy. It blocks until the connector acknowledges the load
// or ctx expires.
func (c *Connector) Load(ctx context.Context, mediaURL string) error {
	id := uuid.NewString()
	ack := make(chan error, 1)

	c.mu.Lock()
	c.pending[id] = ack
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.send(frame{Type: "load", ID: id, URL: mediaURL}); err != nil {
		return err
	}

	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return fmt.Errorf("remote load: %w", ctx.Err())
	case <-c.done:
		return fmt.Errorf("remote load: session closed")
	}
}

// Play implements Proxy.
func (c *Connector) Play(takeover bool) error {
	return c.send(frame{Type: "play", Takeover: takeover})
}

// Pause implements Proxy.
func (c *Connector) Pause() error {
	return c.send(frame{Type: "pause"})
}

// Position implements Proxy.
func (c *Connector) Position() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.position
}

// SetPosition implements Proxy. The command is fire-and-forget; the renderer
// confirms through a later timeupdate event.
func (c *Connector) SetPosition(seconds float64) {
	c.mu.Lock()
	c.state.position = seconds
	c.mu.Unlock()

	if err := c.send(frame{Type: "seek", Position: seconds}); err != nil {
		log.Warnf("remote seek failed: %v", err)
	}
}

// Duration implements Proxy.
func (c *Connector) Duration() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.duration
}

// Paused implements Proxy.
func (c *Connector) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.paused
}

// PlaybackRate implements Proxy.
func (c *Connector) PlaybackRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.rate
}

// AudioTracks implements Proxy.
func (c *Connector) AudioTracks() []Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Track(nil), c.state.audio...)
}

// TextTracks implements Proxy.
func (c *Connector) TextTracks() []Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Track(nil), c.state.text...)
}

// SelectAudioTrack implements Proxy.
func (c *Connector) SelectAudioTrack(id string) error {
	return c.send(frame{Type: "select-audio", TrackID: id})
}

// SelectTextTrack implements Proxy.
func (c *Connector) SelectTextTrack(lang string) error {
	return c.send(frame{Type: "select-text", Language: lang})
}

// SetTextTrackVisibility implements Proxy.
func (c *Connector) SetTextTrackVisibility(visible bool) error {
	return c.send(frame{Type: "text-visibility", Visible: &visible})
}

// AssetURI implements Proxy.
func (c *Connector) AssetURI() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.assetURI
}

// Events implements Proxy.
func (c *Connector) Events() <-chan Event {
	return c.events
}

// Close implements Proxy. Safe to call more than once.
func (c *Connector) Close() error {
	var err error
	c.closed.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// send marshals and writes a single frame. Writes are serialized because
// gorilla/websocket allows at most one concurrent writer.
func (c *Connector) send(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("send %q: %w", f.Type, err)
	}
	return nil
}

// readPump consumes frames from the connector until the session ends,
// updating the state snapshot along the way.
func (c *Connector) readPump() {
	defer close(c.events)

	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			select {
			case <-c.done:
			default:
				log.Warnf("remote session read: %v", err)
				c.emit(Event{Type: EventError, Err: err})
			}
			return
		}

		c.handleFrame(f)
	}
}

func (c *Connector) handleFrame(f frame) {
	switch f.Type {
	case "ack":
		c.mu.Lock()
		ack, ok := c.pending[f.ID]
		c.mu.Unlock()
		if !ok {
			log.Tracef("remote ack for unknown command %s", f.ID)
			return
		}
		if f.Error != "" {
			ack <- fmt.Errorf("remote: %s", f.Error)
		} else {
			ack <- nil
		}

	case "state":
		c.mu.Lock()
		c.state = snapshot{
			position: f.Position,
			duration: f.Duration,
			rate:     f.Rate,
			paused:   f.Paused,
			assetURI: f.AssetURI,
			audio:    f.Audio,
			text:     f.Text,
		}
		if c.state.rate == 0 {
			c.state.rate = 1
		}
		c.mu.Unlock()

	case "event":
		c.handleEvent(f)

	default:
		log.Tracef("remote: unhandled frame type %q", f.Type)
	}
}

func (c *Connector) handleEvent(f frame) {
	switch f.Event {
	case "timeupdate":
		c.mu.Lock()
		c.state.position = f.Position
		if f.Duration > 0 {
			c.state.duration = f.Duration
		}
		c.mu.Unlock()
		c.emit(Event{Type: EventTimeUpdate, Position: f.Position})

	case "ended":
		c.emit(Event{Type: EventEnded})

	case "error":
		c.emit(Event{Type: EventError, Err: fmt.Errorf("remote renderer: %s", f.Error)})

	case "license-request":
		requestID := f.RequestID
		c.emit(Event{
			Type: EventLicenseRequest,
			License: &LicenseRequest{
				Payload: f.Payload,
				Respond: func(status int, body []byte) error {
					return c.send(frame{
						Type:      "license-response",
						RequestID: requestID,
						Status:    status,
						Body:      base64.StdEncoding.EncodeToString(body),
					})
				},
			},
		})

	default:
		log.Tracef("remote: unhandled event %q", f.Event)
	}
}

// emit delivers an event without blocking the read pump. A slow consumer
// loses events rather than stalling the session.
func (c *Connector) emit(e Event) {
	select {
	case c.events <- e:
	default:
		log.Tracef("remote: dropping event %s, consumer is behind", e.Type)
	}
}
