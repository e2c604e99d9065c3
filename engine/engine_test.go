package engine

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/duocast-cli/duocast/where"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts https URLs", func() {
			out, err := sanitizeMediaTarget("https://example.com/a.mpd")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "https://example.com/a.mpd")
		})

		Convey("Rejects empty input", func() {
			_, err := sanitizeMediaTarget("  ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects flag-like input", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects control characters", func() {
			_, err := sanitizeMediaTarget("https://example.com/a.mpd\n--script=x")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects non-http schemes", func() {
			_, err := sanitizeMediaTarget("ftp://example.com/a.mpd")
			So(err, ShouldNotBeNil)
		})

		Convey("Cleans local paths", func() {
			out, err := sanitizeMediaTarget("videos/../movie.mp4")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "movie.mp4")
		})
	})
}

func TestPropertyMapping(t *testing.T) {
	Convey("Property change mapping", t, func() {
		events := make(chan Event, 16)
		pl := newPropertyListener("", make(chan struct{}), events)

		drain := func() (out []Event) {
			for {
				select {
				case ev := <-events:
					out = append(out, ev)
				default:
					return
				}
			}
		}

		Convey("time-pos becomes timeupdate with position", func() {
			pl.emitPropertyChange("time-pos", 12.5)
			got := drain()
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, EventTimeUpdate)
			So(got[0].Position, ShouldEqual, 12.5)
		})

		Convey("nil time-pos is ignored", func() {
			pl.emitPropertyChange("time-pos", nil)
			So(drain(), ShouldBeEmpty)
		})

		Convey("pause toggles play/pause", func() {
			pl.emitPropertyChange("pause", true)
			pl.emitPropertyChange("pause", false)
			got := drain()
			So(got, ShouldHaveLength, 2)
			So(got[0].Type, ShouldEqual, EventPause)
			So(got[1].Type, ShouldEqual, EventPlay)
		})

		Convey("seeking toggles seeking/seeked", func() {
			pl.emitPropertyChange("seeking", true)
			pl.emitPropertyChange("seeking", false)
			got := drain()
			So(got[0].Type, ShouldEqual, EventSeeking)
			So(got[1].Type, ShouldEqual, EventSeeked)
		})

		Convey("eof-reached emits ended only when true", func() {
			pl.emitPropertyChange("eof-reached", false)
			pl.emitPropertyChange("eof-reached", true)
			got := drain()
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, EventEnded)
		})

		Convey("paused-for-cache toggles waiting/canplay", func() {
			pl.emitPropertyChange("paused-for-cache", true)
			pl.emitPropertyChange("paused-for-cache", false)
			got := drain()
			So(got[0].Type, ShouldEqual, EventWaiting)
			So(got[1].Type, ShouldEqual, EventCanPlay)
		})

		Convey("duration emits loadedmetadata", func() {
			pl.emitPropertyChange("duration", 600.0)
			got := drain()
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, EventLoadedMetadata)
			So(got[0].Duration, ShouldEqual, 600)
		})

		Convey("end-file error line emits error event", func() {
			pl.processLine(`{"event":"end-file","reason":"error","file_error":"loading failed"}`)
			got := drain()
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, EventError)
			So(got[0].Err.Error(), ShouldEqual, "loading failed")
		})

		Convey("unparseable lines are skipped", func() {
			pl.processLine("not json")
			So(drain(), ShouldBeEmpty)
		})
	})
}

func TestSocketPath(t *testing.T) {
	Convey("IPC socket path", t, func() {
		path, err := newSocketPath()
		So(err, ShouldBeNil)

		Convey("Lives inside the temp directory swept at startup", func() {
			So(strings.HasPrefix(path, where.Temp()), ShouldBeTrue)
			So(path, ShouldEndWith, ".sock")
		})

		Convey("Is unique per engine instance", func() {
			other, err := newSocketPath()
			So(err, ShouldBeNil)
			So(other, ShouldNotEqual, path)
		})
	})
}

func TestListenerStop(t *testing.T) {
	Convey("Listener stop", t, func() {
		Convey("Joins the read loop so the event channel can be closed", func() {
			for i := 0; i < 50; i++ {
				events := make(chan Event, 1)
				client, server := net.Pipe()
				pl := newPropertyListener("", make(chan struct{}), events)
				pl.conn = client
				pl.listening = true
				go pl.readLoop()

				flood := make(chan struct{})
				go func() {
					line := []byte(`{"event":"property-change","name":"time-pos","data":1.5}` + "\n")
					for {
						select {
						case <-flood:
							return
						default:
						}
						_ = server.SetWriteDeadline(time.Now().Add(10 * time.Millisecond))
						if _, err := server.Write(line); err != nil {
							return
						}
					}
				}()

				pl.stop()
				close(events) // panics if the read loop can still emit
				close(flood)
				server.Close()
			}
		})

		Convey("Is a no-op when the listener never started", func() {
			pl := newPropertyListener("", make(chan struct{}), make(chan Event, 1))
			pl.stop() // must not block on the read-loop join
		})
	})
}

func TestEventTypeString(t *testing.T) {
	Convey("EventType String", t, func() {
		So(EventTimeUpdate.String(), ShouldEqual, "timeupdate")
		So(EventEnded.String(), ShouldEqual, "ended")
		So(EventType(99).String(), ShouldEqual, "unknown")
	})
}
