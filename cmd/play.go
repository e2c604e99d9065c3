// Package cmd implements the command-line interface for duocast.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/duocast-cli/duocast/auth"
	"github.com/duocast-cli/duocast/drm"
	"github.com/duocast-cli/duocast/engine"
	"github.com/duocast-cli/duocast/history"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/lifecycle"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/playback"
	"github.com/duocast-cli/duocast/remote"
	"github.com/duocast-cli/duocast/tui"
	"github.com/duocast-cli/duocast/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("device", "d", "", "Remote device to attach, by name or id")
	playCmd.Flags().StringP("title", "t", "", "Title shown on the now-playing screen")
	playCmd.Flags().BoolP("continue", "c", false, "Resume from the saved position for this URL")
	playCmd.Flags().String("audio-lang", "", "Audio track language to select on both sides")
	playCmd.Flags().String("text-lang", "", "Subtitle language to select on both sides")
	playCmd.Flags().Bool("local-only", false, "Skip the remote side entirely and play locally")
}

// playCmd is the playback harness: it assembles the local engine, the remote
// proxy and the lifecycle signal around a coordinator and runs the TUI.
var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Play a stream locally with remote handoff available",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		var (
			url       = args[0]
			deviceArg = lo.Must(cmd.Flags().GetString("device"))
			title     = lo.Must(cmd.Flags().GetString("title"))
			resume    = lo.Must(cmd.Flags().GetBool("continue"))
			audioLang = lo.Must(cmd.Flags().GetString("audio-lang"))
			textLang  = lo.Must(cmd.Flags().GetString("text-lang"))
			localOnly = lo.Must(cmd.Flags().GetBool("local-only"))
		)

		if title == "" {
			title = filepath.Base(url)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var (
			proxy      remote.Proxy
			deviceName string
		)
		if localOnly {
			proxy = remote.NewNullProxy()
		} else {
			token, err := auth.GetToken()
			if err != nil {
				log.Warnf("no connector token stored: %v", err)
			}

			device, err := pickDevice(ctx, deviceArg, token)
			handleErr(err)
			deviceName = device.Name

			connector, err := remote.Dial(ctx, device, token)
			handleErr(err)
			proxy = connector
		}

		localEngine := engine.NewMPV()
		signal := lifecycle.NewSwitcher(lifecycle.Foreground)

		coordinator := playback.New(localEngine, proxy, signal, playback.WithHistory(title))
		defer func() {
			_ = localEngine.Close()
			_ = proxy.Close()
			coordinator.Close()
		}()

		if server := viper.GetString(key.DrmLicenseServer); server != "" {
			requestFilter, responseFilter, err := drmFilters()
			handleErr(err)
			handleErr(coordinator.ConfigureDRM(server, requestFilter, responseFilter))
		}

		coordinator.Load(ctx, url)

		if audioLang != "" {
			lo.Must0(coordinator.SelectAudio(audioLang))
		}
		if textLang != "" {
			lo.Must0(coordinator.SelectText(textLang))
		}

		options := tui.Options{
			Title:  title,
			Device: deviceName,
		}
		if resume {
			if record, err := history.Find(url); err == nil && record != nil {
				options.StartPosition = record.Position
			} else {
				log.Warnf("no saved position for %q", url)
			}
		}

		handleErr(tui.Run(coordinator, &options))
	},
}

// pickDevice resolves the renderer to attach: the explicit flag, the
// configured default, a lone registered device, or an interactive choice.
func pickDevice(ctx context.Context, name, token string) (remote.Device, error) {
	devices, err := remote.Devices(ctx, token)
	if err != nil {
		return remote.Device{}, err
	}

	if name == "" {
		name = viper.GetString(key.RemoteDefaultDevice)
	}
	if name != "" {
		return remote.Find(devices, name)
	}

	switch len(devices) {
	case 0:
		return remote.Device{}, errors.New("no devices registered with the connector")
	case 1:
		return devices[0], nil
	}

	names := make([]string, len(devices))
	for i, d := range devices {
		label := d.Name
		if !d.Online {
			label += " (offline)"
		}
		names[i] = label
	}

	var picked int
	prompt := &survey.Select{
		Message: "Play on which device?",
		Options: names,
	}
	if err := survey.AskOne(prompt, &picked); err != nil {
		return remote.Device{}, fmt.Errorf("device selection: %w", err)
	}

	return devices[picked], nil
}

// drmFilters loads the configured Lua filter script, if any.
func drmFilters() (drm.RequestFilter, drm.ResponseFilter, error) {
	name := viper.GetString(key.DrmFilterScript)
	if name == "" {
		return nil, nil, nil
	}

	script, err := drm.LoadScript(filepath.Join(where.Filters(), name))
	if err != nil {
		return nil, nil, fmt.Errorf("load DRM filter script %q: %w", name, err)
	}

	return script.RequestFilter(), script.ResponseFilter(), nil
}
