// Package tui implements the now-playing terminal interface driving the
// dual-playback coordinator.
package tui

import (
	"fmt"
	"strings"

	"github.com/duocast-cli/duocast/color"
	"github.com/duocast-cli/duocast/icon"
	dkey "github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/style"
	"github.com/duocast-cli/duocast/util"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/viper"
)

// View implements tea.Model.
func (b *bubble) View() string {
	var sb strings.Builder

	title := b.options.Title
	if title == "" {
		title = "Now Playing"
	}
	sb.WriteString(style.Title(title))
	sb.WriteString("\n\n")

	sb.WriteString(b.modeBadge())
	if notice := b.noticeC.View(); notice != "" {
		sb.WriteString("  ")
		sb.WriteString(style.Faint(notice))
	}
	sb.WriteString("\n\n")

	percent := 0.0
	if b.duration > 0 {
		percent = util.Clamp(b.position/b.duration, 0, 1)
	}
	sb.WriteString(b.progressC.ViewAs(percent))
	sb.WriteString(fmt.Sprintf(
		"  %s / %s",
		util.FormatClock(b.position),
		util.FormatClock(b.duration),
	))
	sb.WriteString("\n")

	if b.waiting {
		sb.WriteString(style.Faint("buffering..."))
		sb.WriteString("\n")
	}

	if viper.GetBool(dkey.TUIShowAssetURI) && b.coordinator.AssetURI() != "" {
		uri := b.coordinator.AssetURI()
		if b.width > 0 {
			uri = wrap.String(uri, b.width)
		}
		sb.WriteString(style.Faint(uri))
		sb.WriteString("\n")
	}

	if b.lastErr != nil {
		sb.WriteString("\n")
		sb.WriteString(style.Fg(color.Red)(fmt.Sprintf("%s %v", icon.Get(icon.Fail), b.lastErr)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(b.helpC.View(b.keymap))
	sb.WriteString("\n")

	return sb.String()
}

func (b *bubble) modeBadge() string {
	if b.mode.IsRemote() {
		badge := fmt.Sprintf("%s playing on %s", icon.Get(icon.Remote), b.deviceLabel())
		return style.Tag(color.New("230"), color.Purple)(badge)
	}

	badge := fmt.Sprintf("%s playing locally", icon.Get(icon.Local))
	return style.Tag(color.New("230"), color.Blue)(badge)
}

func (b *bubble) deviceLabel() string {
	if b.options.Device != "" {
		return b.options.Device
	}
	return "remote device"
}
