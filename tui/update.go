// Package tui implements the now-playing terminal interface driving the
// dual-playback coordinator.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/duocast-cli/duocast/internal/ui"
	dkey "github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/playback"
	"github.com/duocast-cli/duocast/util"
	"github.com/spf13/viper"
)

// Update implements tea.Model.
func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.helpC.Width = msg.Width
		b.progressC.Width = progressWidth(msg.Width)
		return b, nil

	case tea.KeyMsg:
		return b.handleKey(msg)

	case eventMsg:
		return b.handleEvent(playback.Event(msg))

	case ui.NotificationMsg, ui.ClearNotificationMsg:
		return b, b.noticeC.Update(msg)
	}

	return b, nil
}

func (b *bubble) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.forceQuit), key.Matches(msg, b.keymap.quit):
		return b, tea.Quit

	case key.Matches(msg, b.keymap.playPause):
		if b.coordinator.Paused() {
			util.Ignore(b.coordinator.Play)
		} else {
			util.Ignore(b.coordinator.Pause)
		}

	case key.Matches(msg, b.keymap.seekForward):
		util.Ignore(func() error { return b.coordinator.Seek(b.position + seekStep()) })

	case key.Matches(msg, b.keymap.seekBack):
		util.Ignore(func() error { return b.coordinator.Seek(util.Max(0, b.position-seekStep())) })

	case key.Matches(msg, b.keymap.toRemote):
		if !b.coordinator.IsInRemotePlayback() {
			return b, tea.Batch(
				b.handoff(b.coordinator.MoveToRemotePlayback),
				ui.Notify("handing playback off..."),
			)
		}

	case key.Matches(msg, b.keymap.toLocal):
		if b.coordinator.IsInRemotePlayback() {
			return b, tea.Batch(
				b.handoff(b.coordinator.MoveToLocalPlayback),
				ui.Notify("bringing playback back..."),
			)
		}

	case key.Matches(msg, b.keymap.subtitles):
		b.subtitles = !b.subtitles
		util.Ignore(func() error { return b.coordinator.SetTextVisibility(b.subtitles) })
		if b.subtitles {
			return b, ui.Notify("subtitles on")
		}
		return b, ui.Notify("subtitles off")

	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return b, nil
}

// handoff runs a playback transfer off the update loop; the resulting mode
// change comes back as a coordinator event.
func (b *bubble) handoff(move func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := move(context.Background()); err != nil {
			log.Errorf("playback handoff: %v", err)
		}
		return nil
	}
}

func (b *bubble) handleEvent(e playback.Event) (tea.Model, tea.Cmd) {
	switch e.Type {
	case playback.TimeUpdated:
		b.position = e.Position
		if d := b.coordinator.Duration(); d > 0 {
			b.duration = d
		}

	case playback.LoadedMetadata:
		if e.Duration > 0 {
			b.duration = e.Duration
		}

	case playback.ModeChanged:
		b.mode = e.Mode
		if e.Mode.IsRemote() {
			return b, ui.Notify("playing on " + b.deviceLabel())
		}
		return b, ui.Notify("playing locally")

	case playback.Waiting:
		b.waiting = true

	case playback.CanPlay:
		b.waiting = false

	case playback.ErrorOccurred:
		b.lastErr = e.Err

	case playback.Ended:
		b.ended = true
		return b, tea.Quit
	}

	return b, nil
}

func seekStep() float64 {
	step := viper.GetFloat64(dkey.TUISeekStep)
	if step <= 0 {
		step = 10
	}
	return step
}
