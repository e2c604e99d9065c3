package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duocast-cli/duocast/key"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

var upgrader = websocket.Upgrader{}

// fakeConnector runs a minimal cloud connector endpoint driven by handle.
func fakeConnector(t *testing.T, handle func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ws/devices/") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
}

func dialFake(t *testing.T, server *httptest.Server) *Connector {
	t.Helper()
	viper.Set(key.RemoteConnectorURL, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := Dial(ctx, Device{ID: "living-room"}, "secret")
	So(err, ShouldBeNil)
	return conn
}

func TestSessionURL(t *testing.T) {
	Convey("Deriving the session endpoint", t, func() {
		Convey("Upgrades https to wss", func() {
			u, err := sessionURL("https://connector.example.com", "tv-1")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "wss://connector.example.com/ws/devices/tv-1")
		})

		Convey("Keeps plain http on ws", func() {
			u, err := sessionURL("http://127.0.0.1:8080/base/", "tv 2")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "ws://127.0.0.1:8080/base/ws/devices/tv%202")
		})

		Convey("Fails without a configured URL", func() {
			_, err := sessionURL("", "tv-1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestConnectorLoad(t *testing.T) {
	Convey("Loading an asset on the renderer", t, func() {
		Convey("Resolves once the connector acknowledges", func() {
			server := fakeConnector(t, func(conn *websocket.Conn) {
				var f frame
				if err := conn.ReadJSON(&f); err != nil {
					t.Errorf("read load frame: %v", err)
					return
				}
				if f.Type != "load" || f.URL != "https://cdn.example.com/movie.mpd" || f.ID == "" {
					t.Errorf("unexpected load frame: %+v", f)
				}
				_ = conn.WriteJSON(frame{Type: "ack", ID: f.ID})
			})
			defer server.Close()

			c := dialFake(t, server)
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			So(c.Load(ctx, "https://cdn.example.com/movie.mpd"), ShouldBeNil)
		})

		Convey("Propagates the connector's error", func() {
			server := fakeConnector(t, func(conn *websocket.Conn) {
				var f frame
				if err := conn.ReadJSON(&f); err != nil {
					t.Errorf("read load frame: %v", err)
					return
				}
				_ = conn.WriteJSON(frame{Type: "ack", ID: f.ID, Error: "renderer is busy"})
			})
			defer server.Close()

			c := dialFake(t, server)
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := c.Load(ctx, "https://cdn.example.com/movie.mpd")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "renderer is busy")
		})

		Convey("Gives up when the context expires first", func() {
			server := fakeConnector(t, func(conn *websocket.Conn) {
				var f frame
				_ = conn.ReadJSON(&f)
				// Never acknowledge.
				time.Sleep(200 * time.Millisecond)
			})
			defer server.Close()

			c := dialFake(t, server)
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			err := c.Load(ctx, "https://cdn.example.com/movie.mpd")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "deadline")
		})
	})
}

func TestConnectorState(t *testing.T) {
	Convey("Tracking the renderer's reported state", t, func() {
		ready := make(chan struct{})
		server := fakeConnector(t, func(conn *websocket.Conn) {
			_ = conn.WriteJSON(frame{
				Type:     "state",
				Position: 42.5,
				Duration: 3600,
				Rate:     1.5,
				AssetURI: "https://cdn.example.com/movie.mpd",
				Audio:    []Track{{ID: "a1", Language: "en", Active: true}},
				Text:     []Track{{ID: "t1", Language: "de"}},
			})
			_ = conn.WriteJSON(frame{Type: "event", Event: "timeupdate", Position: 43.1})
			close(ready)
			time.Sleep(100 * time.Millisecond)
		})
		defer server.Close()

		c := dialFake(t, server)
		defer c.Close()

		<-ready
		var ev Event
		select {
		case ev = <-c.Events():
		case <-time.After(2 * time.Second):
			t.Fatal("no event received")
		}

		So(ev.Type, ShouldEqual, EventTimeUpdate)
		So(ev.Position, ShouldEqual, 43.1)
		So(c.Position(), ShouldEqual, 43.1)
		So(c.PlaybackRate(), ShouldEqual, 1.5)
		So(c.AssetURI(), ShouldEqual, "https://cdn.example.com/movie.mpd")
		So(c.AudioTracks(), ShouldHaveLength, 1)
		So(c.AudioTracks()[0].Language, ShouldEqual, "en")
		So(c.TextTracks(), ShouldHaveLength, 1)
	})
}

func TestConnectorLicenseRelay(t *testing.T) {
	Convey("Relaying a license request", t, func() {
		payload := base64.StdEncoding.EncodeToString([]byte("challenge"))
		answered := make(chan frame, 1)

		server := fakeConnector(t, func(conn *websocket.Conn) {
			_ = conn.WriteJSON(frame{
				Type:      "event",
				Event:     "license-request",
				RequestID: "req-7",
				Payload:   payload,
			})

			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				t.Errorf("read license response: %v", err)
				return
			}
			answered <- f
		})
		defer server.Close()

		c := dialFake(t, server)
		defer c.Close()

		var ev Event
		select {
		case ev = <-c.Events():
		case <-time.After(2 * time.Second):
			t.Fatal("no license request received")
		}

		So(ev.Type, ShouldEqual, EventLicenseRequest)
		So(ev.License, ShouldNotBeNil)
		So(ev.License.Payload, ShouldEqual, payload)

		So(ev.License.Respond(200, []byte("license-blob")), ShouldBeNil)

		var answer frame
		select {
		case answer = <-answered:
		case <-time.After(2 * time.Second):
			t.Fatal("no license response received by connector")
		}

		So(answer.Type, ShouldEqual, "license-response")
		So(answer.RequestID, ShouldEqual, "req-7")
		So(answer.Status, ShouldEqual, 200)
		decoded, err := base64.StdEncoding.DecodeString(answer.Body)
		So(err, ShouldBeNil)
		So(string(decoded), ShouldEqual, "license-blob")
	})
}

func TestDevices(t *testing.T) {
	Convey("Listing devices over the connector API", t, func() {
		Convey("Decodes the device list", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/devices" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				if r.Header.Get("Authorization") != "Bearer secret" {
					t.Errorf("missing bearer token")
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode([]Device{
					{ID: "tv-1", Name: "Living Room TV", Online: true},
					{ID: "tv-2", Name: "Bedroom TV"},
				})
			}))
			defer server.Close()

			viper.Set(key.RemoteConnectorURL, server.URL)
			devices, err := Devices(context.Background(), "secret")
			So(err, ShouldBeNil)
			So(devices, ShouldHaveLength, 2)
			So(devices[0].Name, ShouldEqual, "Living Room TV")
		})

		Convey("Surfaces a non-200 status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "token expired", http.StatusUnauthorized)
			}))
			defer server.Close()

			viper.Set(key.RemoteConnectorURL, server.URL)
			_, err := Devices(context.Background(), "stale")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "token expired")
		})
	})
}

func TestFind(t *testing.T) {
	devices := []Device{
		{ID: "tv-1", Name: "Living Room TV"},
		{ID: "tv-2", Name: "Bedroom TV"},
		{ID: "tv-3", Name: "Kitchen Display"},
	}

	Convey("Resolving a device by name", t, func() {
		Convey("Exact name match wins regardless of case", func() {
			d, err := Find(devices, "bedroom tv")
			So(err, ShouldBeNil)
			So(d.ID, ShouldEqual, "tv-2")
		})

		Convey("An id is accepted in place of a name", func() {
			d, err := Find(devices, "tv-3")
			So(err, ShouldBeNil)
			So(d.Name, ShouldEqual, "Kitchen Display")
		})

		Convey("Fuzzy matching tolerates partial input", func() {
			d, err := Find(devices, "living")
			So(err, ShouldBeNil)
			So(d.ID, ShouldEqual, "tv-1")
		})

		Convey("An unmatchable name suggests the closest one", func() {
			_, err := Find(devices, "Bathroom TQ")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "Bedroom TV")
		})

		Convey("An empty device list is an error", func() {
			_, err := Find(nil, "anything")
			So(err, ShouldNotBeNil)
		})
	})
}
