package playback

import (
	"context"
	"sync"
	"time"

	"github.com/duocast-cli/duocast/drm"
	"github.com/duocast-cli/duocast/engine"
	"github.com/duocast-cli/duocast/history"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/lifecycle"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/remote"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Coordinator mediates between the local engine, the remote proxy and the
// lifecycle signal. It holds both collaborators by composition and exposes its
// own surface; it never wraps or extends either engine.
//
// Callbacks arrive from engine, proxy and signal goroutines, so the mode and
// the position mirrors are guarded by a mutex. Callers must not assume
// atomicity across blocking calls: a lifecycle change can land between two
// steps of a handoff.
type Coordinator struct {
	engine engine.Engine
	proxy  remote.Proxy
	signal lifecycle.Signal

	mu       sync.Mutex
	mode     Mode
	localPos float64
	duration float64
	assetURI string
	exchange mo.Option[*drm.Exchange]

	lastMirror      time.Time
	lastHistorySave time.Time

	bus         *bus
	unsubSignal func()
	saveHistory bool
	title       string

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option adjusts a Coordinator at construction time.
type Option func(*Coordinator)

// WithHistory enables persisting resume positions from the unified
// timeupdate stream. The title labels the asset in the saved history.
func WithHistory(title string) Option {
	return func(c *Coordinator) {
		c.saveHistory = true
		c.title = title
	}
}

// New wires a coordinator to its three collaborators. The initial mode is
// seeded from the signal's reported state. Close detaches everything New
// registers; it does not close the collaborators themselves.
func New(e engine.Engine, p remote.Proxy, s lifecycle.Signal, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine: e,
		proxy:  p,
		signal: s,
		mode:   modeFor(s.State()),
		bus:    newBus(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.unsubSignal = s.OnStateChange(c.onLifecycleChange)

	c.wg.Add(2)
	go c.localPump()
	go c.remotePump()

	return c
}

// Mode returns the currently active playback mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsInRemotePlayback reports whether the remote side is authoritative, i.e.
// the most recent lifecycle state is background or in transition to it.
func (c *Coordinator) IsInRemotePlayback() bool {
	return c.Mode().IsRemote()
}

// OnEvent subscribes to the unified event stream and returns the
// unsubscribe function.
func (c *Coordinator) OnEvent(fn func(Event)) (unsubscribe func()) {
	return c.bus.subscribe(fn)
}

// Load opens url on both sides, best effort. The configured order decides
// which side is attempted first; each failure is logged independently and
// none is surfaced to the caller, so a double failure silently degrades.
func (c *Coordinator) Load(ctx context.Context, url string) {
	c.mu.Lock()
	c.assetURI = url
	c.mu.Unlock()

	loadRemote := func() {
		loadCtx := ctx
		if seconds := viper.GetInt(key.RemoteLoadTimeout); seconds > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
			defer cancel()
		}
		if err := c.proxy.Load(loadCtx, url); err != nil {
			log.Errorf("remote load of %q failed: %v", url, err)
		}
	}
	loadLocal := func() {
		if err := c.engine.Load(ctx, url); err != nil {
			log.Errorf("local load of %q failed: %v", url, err)
		}
	}

	if viper.GetString(key.PlaybackLoadOrder) == "local-first" {
		loadLocal()
		loadRemote()
	} else {
		loadRemote()
		loadLocal()
	}
}

// Play starts the local engine, then issues the remote play call with the
// takeover flag so the renderer claims the presentation surface. Both sides
// are attempted regardless of individual failures.
func (c *Coordinator) Play() error {
	var firstErr error

	if err := c.engine.Play(); err != nil {
		log.Errorf("local play failed: %v", err)
		firstErr = err
	}
	if err := c.proxy.Play(true); err != nil {
		log.Errorf("remote play failed: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Pause suspends local playback. While the remote side is authoritative it is
// a warning no-op: the local engine was already paused on the transition into
// background, and the renderer keeps presenting.
func (c *Coordinator) Pause() error {
	if c.IsInRemotePlayback() {
		log.Warn("pause ignored while remote playback is active")
		return nil
	}
	return c.engine.Pause()
}

// Position returns the remote time while remote playback is active, the local
// engine's time otherwise.
func (c *Coordinator) Position() float64 {
	if c.IsInRemotePlayback() {
		return c.proxy.Position()
	}

	pos, err := c.engine.Position()
	if err != nil {
		c.mu.Lock()
		pos = c.localPos
		c.mu.Unlock()
	}
	return pos
}

// Seek moves the local playback position. Remote seek is intentionally
// unsupported: while remote playback is active this is a warning no-op.
func (c *Coordinator) Seek(seconds float64) error {
	if c.IsInRemotePlayback() {
		log.Warn("seek ignored while remote playback is active")
		return nil
	}
	return c.engine.Seek(seconds)
}

// Duration returns the authoritative side's media length.
func (c *Coordinator) Duration() float64 {
	if c.IsInRemotePlayback() {
		if d := c.proxy.Duration(); d > 0 {
			return d
		}
	} else if d, err := c.engine.Duration(); err == nil && d > 0 {
		return d
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Paused returns the authoritative side's suspension state.
func (c *Coordinator) Paused() bool {
	if c.IsInRemotePlayback() {
		return c.proxy.Paused()
	}

	paused, err := c.engine.Paused()
	if err != nil {
		log.Warnf("read local pause state: %v", err)
		return false
	}
	return paused
}

// PlaybackRate returns the authoritative side's speed multiplier.
func (c *Coordinator) PlaybackRate() float64 {
	if c.IsInRemotePlayback() {
		return c.proxy.PlaybackRate()
	}

	rate, err := c.engine.PlaybackRate()
	if err != nil {
		return 1
	}
	return rate
}

// SetPlaybackRate adjusts the local engine's speed. The renderer's rate is
// not adjustable through the connector.
func (c *Coordinator) SetPlaybackRate(rate float64) error {
	return c.engine.SetPlaybackRate(rate)
}

// AssetURI returns the most recently loaded media reference.
func (c *Coordinator) AssetURI() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assetURI
}

// MoveToLocalPlayback starts local playback and requests the foreground
// transition that makes the local engine authoritative.
func (c *Coordinator) MoveToLocalPlayback(ctx context.Context) error {
	if err := c.engine.Play(); err != nil {
		log.Errorf("starting local playback for handoff: %v", err)
	}
	return c.signal.MoveToForeground(ctx)
}

// MoveToRemotePlayback hands playback to the renderer. The local position is
// copied into the remote proxy strictly before the background transition is
// requested: the transition is asynchronous and the renderer must already
// hold the resume position when it becomes authoritative.
func (c *Coordinator) MoveToRemotePlayback(ctx context.Context) error {
	pos, err := c.engine.Position()
	if err != nil {
		c.mu.Lock()
		pos = c.localPos
		c.mu.Unlock()
		log.Warnf("read local position for handoff: %v, using mirror %.2f", err, pos)
	}
	c.proxy.SetPosition(pos)

	return c.signal.MoveToBackground(ctx)
}

// ConfigureDRM installs the license server mapping on both sides. The local
// engine gets the configuration directly when it supports DRM; the remote
// proxy's license-request events are answered by the coordinator through a
// single HTTP exchange per request, filters applied, with failures written
// back rather than dropped.
func (c *Coordinator) ConfigureDRM(server string, requestFilter drm.RequestFilter, responseFilter drm.ResponseFilter) error {
	c.mu.Lock()
	c.exchange = mo.Some(drm.NewExchange(server, requestFilter, responseFilter))
	c.mu.Unlock()

	if configurable, ok := c.engine.(engine.DRMConfigurable); ok {
		return configurable.ConfigureDRM(drm.Config{
			LicenseServer:  server,
			RequestFilter:  requestFilter,
			ResponseFilter: responseFilter,
		})
	}

	log.Infof("local engine does not negotiate DRM, relaying licenses for the remote side only")
	return nil
}

// SelectAudio issues the audio selection to both sides with the same language
// criteria. Convergence to the same internal track id is not guaranteed.
func (c *Coordinator) SelectAudio(lang string) error {
	var firstErr error

	if err := c.engine.SelectAudio(lang); err != nil {
		log.Warnf("local audio selection %q: %v", lang, err)
		firstErr = err
	}

	if track, ok := audioTrackByLanguage(c.proxy.AudioTracks(), lang); ok {
		if err := c.proxy.SelectAudioTrack(track.ID); err != nil {
			log.Warnf("remote audio selection %q: %v", lang, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	} else {
		log.Warnf("remote side reports no audio track for language %q", lang)
	}

	return firstErr
}

// SelectText issues the subtitle selection to both sides.
func (c *Coordinator) SelectText(lang string) error {
	var firstErr error

	if err := c.engine.SelectText(lang); err != nil {
		log.Warnf("local text selection %q: %v", lang, err)
		firstErr = err
	}
	if err := c.proxy.SelectTextTrack(lang); err != nil {
		log.Warnf("remote text selection %q: %v", lang, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// SetTextVisibility toggles subtitles on both sides.
func (c *Coordinator) SetTextVisibility(visible bool) error {
	var firstErr error

	if err := c.engine.SetTextVisibility(visible); err != nil {
		log.Warnf("local text visibility: %v", err)
		firstErr = err
	}
	if err := c.proxy.SetTextTrackVisibility(visible); err != nil {
		log.Warnf("remote text visibility: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Close detaches the lifecycle subscription, drops every event subscriber and
// waits for the pumps to drain. The engine and proxy are not closed here;
// whoever constructed them owns their shutdown, which also ends the pumps.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.unsubSignal()
		c.bus.clear()
	})
	c.wg.Wait()
}

func audioTrackByLanguage(tracks []remote.Track, lang string) (remote.Track, bool) {
	for _, t := range tracks {
		if t.Language == lang {
			return t, true
		}
	}
	return remote.Track{}, false
}

// onLifecycleChange keeps the mode in lockstep with the lifecycle signal.
// Entering background pauses the local engine before the remote side is
// marked authoritative; returning to foreground never resumes implicitly.
func (c *Coordinator) onLifecycleChange(state lifecycle.State) {
	c.mu.Lock()
	was := c.mode
	next := modeFor(state)
	c.mu.Unlock()

	if next == was {
		return
	}

	if next.IsRemote() && !was.IsRemote() {
		if err := c.engine.Pause(); err != nil {
			log.Warnf("pausing local engine on background transition: %v", err)
		}
	}

	c.mu.Lock()
	c.mode = next
	c.mu.Unlock()

	log.Debugf("playback mode %s -> %s", was, next)
	c.bus.publish(Event{Type: ModeChanged, Mode: next})
}

// localPump consumes the local engine's events: mirrors into the remote side
// while local playback is active and republishes on the unified stream.
func (c *Coordinator) localPump() {
	defer c.wg.Done()

	for ev := range c.engine.Events() {
		remoteActive := c.IsInRemotePlayback()

		switch ev.Type {
		case engine.EventTimeUpdate:
			c.mu.Lock()
			c.localPos = ev.Position
			c.mu.Unlock()

			if !remoteActive {
				c.mirrorPositionToRemote(ev.Position)
				c.recordProgress(ev.Position)
				c.bus.publish(Event{Type: TimeUpdated, Position: ev.Position})
			}

		case engine.EventPlay:
			if !remoteActive {
				if err := c.proxy.Play(false); err != nil {
					log.Warnf("mirroring play to remote: %v", err)
				}
			}

		case engine.EventPause:
			if !remoteActive {
				if err := c.proxy.Pause(); err != nil {
					log.Warnf("mirroring pause to remote: %v", err)
				}
			}

		case engine.EventSeeked:
			if !remoteActive {
				if pos, err := c.engine.Position(); err == nil {
					c.proxy.SetPosition(pos)
				}
			}
			c.bus.publish(Event{Type: Seeked})

		case engine.EventSeeking:
			c.bus.publish(Event{Type: Seeking})

		case engine.EventEnded:
			if !remoteActive {
				c.finishHistory()
				c.bus.publish(Event{Type: Ended})
			}

		case engine.EventError:
			c.bus.publish(Event{Type: ErrorOccurred, Err: ev.Err})

		case engine.EventWaiting:
			c.bus.publish(Event{Type: Waiting})

		case engine.EventCanPlay:
			c.bus.publish(Event{Type: CanPlay})

		case engine.EventLoadedMetadata:
			c.mu.Lock()
			if ev.Duration > 0 {
				c.duration = ev.Duration
			}
			c.mu.Unlock()
			c.bus.publish(Event{Type: LoadedMetadata, Duration: ev.Duration})
		}
	}
}

// remotePump consumes the proxy's events: mirrors time into the local engine
// while remote playback is active, answers license requests and republishes.
func (c *Coordinator) remotePump() {
	defer c.wg.Done()

	for ev := range c.proxy.Events() {
		remoteActive := c.IsInRemotePlayback()

		switch ev.Type {
		case remote.EventTimeUpdate:
			if remoteActive {
				c.mirrorPositionToLocal(ev.Position)
				c.recordProgress(ev.Position)
				c.bus.publish(Event{Type: TimeUpdated, Position: ev.Position})
			}

		case remote.EventEnded:
			c.finishHistory()
			c.bus.publish(Event{Type: Ended})

		case remote.EventError:
			c.bus.publish(Event{Type: ErrorOccurred, Err: ev.Err})

		case remote.EventLicenseRequest:
			if ev.License != nil {
				c.answerLicenseRequest(ev.License)
			}
		}
	}
}

// mirrorPositionToRemote opportunistically copies the local time into the
// remote proxy, throttled so the renderer is not flooded with seeks.
func (c *Coordinator) mirrorPositionToRemote(pos float64) {
	if !c.shouldMirror() {
		return
	}
	c.proxy.SetPosition(pos)
}

// mirrorPositionToLocal opportunistically copies the remote time into the
// paused local engine so a handoff back resumes close to the live position.
func (c *Coordinator) mirrorPositionToLocal(pos float64) {
	if !c.shouldMirror() {
		return
	}
	if err := c.engine.Seek(pos); err != nil {
		log.Tracef("mirroring position into local engine: %v", err)
	}
}

func (c *Coordinator) shouldMirror() bool {
	interval := time.Duration(viper.GetInt(key.PlaybackMirrorInterval)) * time.Second
	if interval <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastMirror) < interval {
		return false
	}
	c.lastMirror = time.Now()
	return true
}

// answerLicenseRequest runs one HTTP exchange for a renderer license request
// and writes the outcome back, non-200 included. A transport failure is
// written back as status 0 so the renderer's own error path fires.
func (c *Coordinator) answerLicenseRequest(req *remote.LicenseRequest) {
	c.mu.Lock()
	exchange, ok := c.exchange.Get()
	c.mu.Unlock()

	if !ok {
		log.Warn("license request received but no DRM server is configured")
		if err := req.Respond(0, nil); err != nil {
			log.Errorf("writing unconfigured-DRM response: %v", err)
		}
		return
	}

	status, body, err := exchange.Post(req.Payload)
	if err != nil {
		log.Errorf("license exchange with %s failed: %v", exchange.Server(), err)
		if werr := req.Respond(0, nil); werr != nil {
			log.Errorf("writing failed license response: %v", werr)
		}
		return
	}

	if err := req.Respond(status, body); err != nil {
		log.Errorf("writing license response: %v", err)
	}
}

// recordProgress persists the resume position, throttled to one write per
// few seconds of playback.
func (c *Coordinator) recordProgress(pos float64) {
	if !c.saveHistory || !viper.GetBool(key.HistorySaveOnWatch) {
		return
	}

	c.mu.Lock()
	if time.Since(c.lastHistorySave) < 5*time.Second {
		c.mu.Unlock()
		return
	}
	c.lastHistorySave = time.Now()
	uri := c.assetURI
	duration := c.duration
	mode := c.mode
	c.mu.Unlock()

	if uri == "" {
		return
	}
	if duration <= 0 {
		duration = c.Duration()
	}

	if err := history.Save(&history.SavedAsset{
		URI:      uri,
		Title:    c.title,
		Position: pos,
		Duration: duration,
		LastMode: mode.String(),
	}); err != nil {
		log.Warnf("saving playback history: %v", err)
	}
}

// finishHistory clears the resume entry once the asset played to the end,
// honoring the configured completion threshold.
func (c *Coordinator) finishHistory() {
	if !c.saveHistory || !viper.GetBool(key.HistorySaveOnWatch) {
		return
	}

	c.mu.Lock()
	uri := c.assetURI
	c.mu.Unlock()
	if uri == "" {
		return
	}

	record, err := history.Find(uri)
	if err != nil || record == nil {
		return
	}

	threshold := viper.GetFloat64(key.PlaybackCompletionPercentage)
	if threshold <= 0 {
		threshold = 80
	}
	if record.WatchedPercentage < threshold {
		return
	}

	if err := history.Remove(record); err != nil {
		log.Warnf("clearing finished asset from history: %v", err)
	}
}
