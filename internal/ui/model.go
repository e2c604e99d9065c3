// Package ui provides internal state management and rendering utilities for ephemeral terminal notifications.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Model encapsulates the state for displaying non-blocking terminal alerts.
type Model struct {
	notification string
	notifiedAt   time.Time
}

// ClearNotificationMsg is a Bubbletea message used to reset the visual notification state.
type ClearNotificationMsg struct{}

// NotificationMsg carries a transient alert to display.
type NotificationMsg string

// Notify returns a tea.Cmd that flashes the given message.
func Notify(message string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg(message)
	}
}

// ClearNotification returns a delayed tea.Cmd that clears the current notification after a fixed duration.
func ClearNotification() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return ClearNotificationMsg{}
	})
}

// Update processes incoming messages to modify the notification state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.notification = string(msg)
		m.notifiedAt = time.Now()
		return ClearNotification()
	case ClearNotificationMsg:
		if time.Since(m.notifiedAt) >= 3*time.Second {
			m.notification = ""
		}
	}
	return nil
}

// View renders the active notification line, if one is present.
func (m *Model) View() string {
	if strings.TrimSpace(m.notification) == "" {
		return ""
	}
	return m.notification
}
