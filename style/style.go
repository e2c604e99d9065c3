// Package style is a small functional layer over lipgloss: helpers return
// string-to-string renderers so call sites stay one-liners.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/duocast-cli/duocast/color"
)

// New returns an empty lipgloss.Style to compose on.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored builds a style with the given foreground and background.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer that colors a string's foreground.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders the padded header banner used at the top of screens.
var Title = func(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

// Tag returns a renderer for short padded badges, like the playback mode
// indicator.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(fg, bg).Padding(0, 1).Render(s) }
}
