// Package cmd implements the command-line interface for duocast.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/duocast-cli/duocast/color"
	"github.com/duocast-cli/duocast/icon"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd verifies the playback prerequisites and reports the outcome.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the local playback engine is installed",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()
		fmt.Printf(
			"%s %s found in PATH\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			engineBinary(),
		)
	},
}

func engineBinary() string {
	binary := viper.GetString(key.EngineBinary)
	if binary == "" {
		binary = "mpv"
	}
	return binary
}

// CheckDependencies verifies the availability of required system dependencies.
// The configured engine binary must be present in the system PATH.
func CheckDependencies() {
	binary := engineBinary()
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install " + dep
	case "linux":
		installCmd = "sudo apt install " + dep
	case "windows":
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
