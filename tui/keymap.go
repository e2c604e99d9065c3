// Package tui implements the now-playing terminal interface driving the
// dual-playback coordinator.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keymap defines the keyboard interactions available on the now-playing screen.
type keymap struct {
	quit, forceQuit,
	playPause,
	seekForward, seekBack,
	toRemote, toLocal,
	subtitles,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "seek forward"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "seek back"),
		),
		toRemote: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "hand off to device"),
		),
		toLocal: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bring playback back"),
		),
		subtitles: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle subtitles"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.toRemote, k.toLocal, k.quit, k.showHelp}
}

// FullHelp implements help.KeyMap.
func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.seekForward, k.seekBack, k.subtitles},
		{k.toRemote, k.toLocal},
		{k.quit, k.forceQuit},
	}
}
