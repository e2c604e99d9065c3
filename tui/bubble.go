// Package tui implements the now-playing terminal interface driving the
// dual-playback coordinator.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/duocast-cli/duocast/internal/ui"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/playback"
	"github.com/duocast-cli/duocast/util"
	"github.com/spf13/viper"
)

// eventMsg wraps a coordinator event for the Bubble Tea loop.
type eventMsg playback.Event

// bubble is the now-playing screen model. Coordinator events are injected
// into the loop via program.Send from the subscription callback.
type bubble struct {
	coordinator *playback.Coordinator
	options     *Options
	program     *tea.Program
	unsubscribe func()

	keymap    *keymap
	progressC progress.Model
	helpC     help.Model
	noticeC   ui.Model

	position  float64
	duration  float64
	mode      playback.Mode
	subtitles bool
	lastErr   error
	waiting   bool
	ended     bool

	width int
}

func newBubble(coordinator *playback.Coordinator, options *Options) *bubble {
	b := &bubble{
		coordinator: coordinator,
		options:     options,
		keymap:      newKeymap(),
		progressC:   progress.New(progress.WithDefaultGradient()),
		helpC:       help.New(),
		mode:        coordinator.Mode(),
		subtitles:   true,
	}

	b.progressC.Width = progressWidth(0)

	b.unsubscribe = coordinator.OnEvent(func(e playback.Event) {
		if b.program != nil {
			b.program.Send(eventMsg(e))
		}
	})

	return b
}

// detach removes the coordinator subscription once the loop has exited.
func (b *bubble) detach() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// Init implements tea.Model. Playback starts from here so the screen is
// already up when the first events arrive.
func (b *bubble) Init() tea.Cmd {
	return func() tea.Msg {
		if b.options.StartPosition > 0 {
			util.Ignore(func() error { return b.coordinator.Seek(b.options.StartPosition) })
		}
		util.Ignore(b.coordinator.Play)
		return nil
	}
}

// progressWidth resolves the configured bar width against the window.
func progressWidth(window int) int {
	width := viper.GetInt(key.TUIProgressWidth)
	if width <= 0 {
		width = 40
	}
	if window > 0 {
		width = util.Clamp(width, 10, util.Max(10, window-4))
	}
	return width
}
