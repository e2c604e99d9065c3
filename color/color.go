// Package color names the terminal colors used across the CLI output.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps a raw ANSI or hex value as a lipgloss.Color.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
	Black  = New("8")
)

var (
	HiRed    = New("9")
	HiGreen  = New("10")
	HiYellow = New("11")
	HiBlue   = New("12")
	HiPurple = New("13")
	HiCyan   = New("14")
	HiWhite  = New("15")
	HiBlack  = New("16")
)

var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
)
