package playback

import "sync"

// EventType discriminates the coordinator's unified events, normalized from
// whichever side produced them.
type EventType int

const (
	TimeUpdated EventType = iota
	Ended
	ErrorOccurred
	CanPlay
	Waiting
	Seeking
	Seeked
	LoadedMetadata
	ModeChanged
)

// String returns a human-readable label for the event type.
func (t EventType) String() string {
	switch t {
	case TimeUpdated:
		return "timeupdate"
	case Ended:
		return "ended"
	case ErrorOccurred:
		return "error"
	case CanPlay:
		return "canplay"
	case Waiting:
		return "waiting"
	case Seeking:
		return "seeking"
	case Seeked:
		return "seeked"
	case LoadedMetadata:
		return "loadedmetadata"
	case ModeChanged:
		return "modechanged"
	default:
		return "unknown"
	}
}

// Event is a single unified playback notification.
type Event struct {
	Type     EventType
	Position float64
	Duration float64
	Mode     Mode
	Err      error
}

// bus fans unified events out to subscribers. Subscriptions are keyed so
// detaching is deterministic, never a closure-identity comparison.
type bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func newBus() *bus {
	return &bus{subs: make(map[int]func(Event))}
}

// subscribe registers fn and returns its removal function.
func (b *bus) subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// publish delivers e to every subscriber. Handlers run outside the bus lock
// so they may subscribe or unsubscribe reentrantly.
func (b *bus) publish(e Event) {
	b.mu.Lock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(e)
	}
}

// clear drops every subscription.
func (b *bus) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[int]func(Event))
}
