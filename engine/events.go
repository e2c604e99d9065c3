package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/duocast-cli/duocast/log"
)

// propertyListener provides real-time mpv event monitoring via observe_property.
// Observed property changes are translated into Engine events and pushed onto
// the engine's event channel.
type propertyListener struct {
	socketPath string
	conn       net.Conn
	exited     <-chan struct{}
	events     chan<- Event
	stopCh     chan struct{}
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

func newPropertyListener(socketPath string, exited <-chan struct{}, events chan<- Event) *propertyListener {
	return &propertyListener{
		socketPath: socketPath,
		exited:     exited,
		events:     events,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// start sets up property observers and starts a dedicated read loop.
func (pl *propertyListener) start() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.listening {
		return nil
	}

	// Subscribe to property change events via IPC.
	// observe_property <id> <property> — mpv sends notifications when they change.
	properties := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},
		{2, "pause"},
		{3, "seeking"},
		{4, "eof-reached"},
		{5, "paused-for-cache"},
		{6, "duration"},
	}

	for _, prop := range properties {
		_, err := doSendCommand(pl.socketPath, []interface{}{"observe_property", prop.id, prop.name})
		if err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	// Open a persistent connection for the event read loop
	conn, err := net.Dial("unix", pl.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	pl.conn = conn
	pl.listening = true

	go pl.readLoop()

	log.Infof("engine event listener started on %s", pl.socketPath)
	return nil
}

// stop terminates the event listener and waits for the read loop to
// return, so the engine's event channel can be closed safely afterwards.
func (pl *propertyListener) stop() {
	pl.mu.Lock()
	if !pl.listening {
		pl.mu.Unlock()
		return
	}

	close(pl.stopCh)
	if pl.conn != nil {
		pl.conn.Close()
	}
	pl.listening = false
	pl.mu.Unlock()

	<-pl.done
}

// readLoop continuously reads events from the persistent mpv connection.
// mpv sends newline-delimited JSON events when observed properties change.
func (pl *propertyListener) readLoop() {
	defer close(pl.done)
	defer func() {
		pl.mu.Lock()
		pl.listening = false
		pl.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-pl.stopCh:
			return
		case <-pl.exited:
			return
		default:
		}

		// Set read deadline to avoid blocking forever
		if err := pl.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := pl.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue // timeout is normal, keep listening
			}
			select {
			case <-pl.stopCh:
				// conn was closed by stop, not an error
			default:
				log.Warnf("engine event listener read error: %v", err)
			}
			return
		}

		// mpv sends multiple JSON objects separated by newlines
		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			pl.processLine(line)
		}
	}
}

// processLine parses a single mpv event JSON line and emits the corresponding engine event.
func (pl *propertyListener) processLine(line string) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return // Skip unparseable lines
	}

	eventType, _ := raw["event"].(string)
	switch eventType {
	case "property-change":
		name, _ := raw["name"].(string)
		pl.emitPropertyChange(name, raw["data"])
	case "end-file":
		if reason, _ := raw["reason"].(string); reason == "error" {
			detail, _ := raw["file_error"].(string)
			pl.emit(Event{Type: EventError, Err: errors.New(detail)})
		}
	case "playback-restart":
		pl.emit(Event{Type: EventSeeked})
	}
}

// emitPropertyChange maps a single observed property change onto the engine event model.
func (pl *propertyListener) emitPropertyChange(name string, data interface{}) {
	switch name {
	case "time-pos":
		if pos, ok := data.(float64); ok {
			pl.emit(Event{Type: EventTimeUpdate, Position: pos})
		}
	case "pause":
		if paused, ok := data.(bool); ok {
			if paused {
				pl.emit(Event{Type: EventPause})
			} else {
				pl.emit(Event{Type: EventPlay})
			}
		}
	case "seeking":
		if seeking, ok := data.(bool); ok {
			if seeking {
				pl.emit(Event{Type: EventSeeking})
			} else {
				pl.emit(Event{Type: EventSeeked})
			}
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			pl.emit(Event{Type: EventEnded})
		}
	case "paused-for-cache":
		if starved, ok := data.(bool); ok {
			if starved {
				pl.emit(Event{Type: EventWaiting})
			} else {
				pl.emit(Event{Type: EventCanPlay})
			}
		}
	case "duration":
		if duration, ok := data.(float64); ok && duration > 0 {
			pl.emit(Event{Type: EventLoadedMetadata, Duration: duration})
		}
	}
}

// emit pushes an event without ever blocking the read loop.
// Dropping a stale timeupdate is preferable to stalling IPC reads.
func (pl *propertyListener) emit(ev Event) {
	select {
	case pl.events <- ev:
	default:
		log.Tracef("engine event dropped: %s", ev.Type)
	}
}
