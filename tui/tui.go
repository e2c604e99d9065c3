// Package tui implements the now-playing terminal interface driving the
// dual-playback coordinator.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/duocast-cli/duocast/playback"
)

// Options encapsulates the runtime configuration for the now-playing screen.
type Options struct {
	// Title labels the asset in the header.
	Title string

	// Device is the name of the connected remote renderer.
	Device string

	// StartPosition seeks to this offset once playback starts, used by resume.
	StartPosition float64
}

// Run executes the Bubble Tea loop until the user quits or playback ends.
func Run(coordinator *playback.Coordinator, options *Options) error {
	if options == nil {
		options = &Options{}
	}

	b := newBubble(coordinator, options)

	program := tea.NewProgram(b, tea.WithAltScreen())
	b.program = program

	_, err := program.Run()
	b.detach()
	return err
}
