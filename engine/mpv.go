package engine

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/where"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond

	eventBufferSize = 64
)

// MPV implements the Engine interface using mpv's JSON-IPC protocol.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	events     chan Event
	listener   *propertyListener
	loaded     bool
	mu         sync.Mutex // Protects socket writes and process state
}

// NewMPV creates a new MPV engine instance (does not spawn the process).
func NewMPV() *MPV {
	return &MPV{
		exited: make(chan struct{}),
		events: make(chan Event, eventBufferSize),
	}
}

// Load opens the given URL in mpv. The first call spawns the process with the
// IPC server enabled; subsequent calls replace the current file via IPC.
func (m *MPV) Load(ctx context.Context, rawURL string) error {
	// Sanitize the URL to prevent flag injection
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.mu.Lock()
	running := m.loaded && m.isAlive()
	m.mu.Unlock()

	if running {
		_, err := m.sendCommand([]interface{}{"loadfile", safeURL, "replace"})
		if err != nil {
			return fmt.Errorf("load into running engine: %w", err)
		}
		return nil
	}

	if err := m.spawn(ctx, safeURL); err != nil {
		return err
	}

	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()

	m.listener = newPropertyListener(m.socketPath, m.exited, m.events)
	if err := m.listener.start(); err != nil {
		log.Warnf("engine event listener unavailable: %v", err)
	}

	return nil
}

// spawn starts the mpv process and waits for its IPC socket to accept connections.
func (m *MPV) spawn(ctx context.Context, safeURL string) error {
	if m.socketPath == "" {
		path, err := newSocketPath()
		if err != nil {
			return err
		}
		m.socketPath = path
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
	}
	args = append(args, viper.GetStringSlice(key.EngineExtraFlags)...)
	args = append(args, safeURL)

	binary := viper.GetString(key.EngineBinary)
	if binary == "" {
		binary = "mpv"
	}
	// Deliberately not CommandContext: the process must outlive the load call's context.
	m.cmd = exec.Command(binary, args...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()

	// Disable standard pipes to prevent resource leaks.
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	// Background goroutine to reap the process and prevent zombies
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(ctx); err != nil {
		// If socket never became ready, kill the orphaned process
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
				// Already exited
			default:
				log.Warnf("killing engine process: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("engine socket not ready: %w", err)
	}

	return nil
}

// newSocketPath picks a random IPC socket path inside the application's
// temp directory, where startup cleanup reaps sockets left by crashed runs.
func newSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(where.Temp(), fmt.Sprintf("engine-%x.sock", randomBytes)), nil
}

// Wait returns a channel that is closed when the engine process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return fmt.Errorf("engine exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.setProperty("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.setProperty("pause", true)
}

// Paused returns whether playback is currently paused.
func (m *MPV) Paused() (bool, error) {
	data, err := m.sendCommand([]interface{}{"get_property", "pause"})
	if err != nil {
		return false, err
	}
	paused, ok := data.(bool)
	if !ok {
		return false, nil
	}
	return paused, nil
}

// Position returns the current playback position in seconds.
func (m *MPV) Position() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// Duration returns the total duration of the current media in seconds.
func (m *MPV) Duration() (float64, error) {
	return m.getFloatProperty("duration")
}

// PlaybackRate returns the current playback speed multiplier.
func (m *MPV) PlaybackRate() (float64, error) {
	return m.getFloatProperty("speed")
}

// SetPlaybackRate adjusts the playback speed multiplier.
func (m *MPV) SetPlaybackRate(rate float64) error {
	return m.setProperty("speed", rate)
}

// SelectAudio requests an audio track by language criteria.
// The engine resolves the criteria to a concrete track id on its own.
func (m *MPV) SelectAudio(lang string) error {
	return m.setProperty("alang", lang)
}

// SelectText requests a subtitle track by language criteria.
func (m *MPV) SelectText(lang string) error {
	return m.setProperty("slang", lang)
}

// SetTextVisibility toggles subtitle rendering.
func (m *MPV) SetTextVisibility(visible bool) error {
	return m.setProperty("sub-visibility", visible)
}

// Events returns the engine's playback event stream.
func (m *MPV) Events() <-chan Event {
	return m.events
}

// isAlive reports whether the engine process is still running. Caller holds mu.
func (m *MPV) isAlive() bool {
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	m.mu.Lock()
	alive := m.isAlive()
	m.mu.Unlock()
	if !alive {
		return false
	}

	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.stop()
	}

	if m.socketPath == "" {
		close(m.events)
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand([]interface{}{"quit"})

	// Wait for process to exit (with timeout)
	select {
	case <-m.exited:
		// Clean exit
	case <-time.After(3 * time.Second):
		// Force kill if graceful quit didn't work
		_ = killProcess(m.cmd)
	}

	// Clean up the socket file
	_ = os.Remove(m.socketPath)

	close(m.events)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) setProperty(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to the engine binary.
// Prevents flag injection from untrusted input.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	// Reject control characters
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	// If it contains "://", validate as URL
	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}
