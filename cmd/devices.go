// Package cmd implements the command-line interface for duocast.
package cmd

import (
	"context"
	"fmt"

	"github.com/duocast-cli/duocast/auth"
	"github.com/duocast-cli/duocast/color"
	"github.com/duocast-cli/duocast/icon"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/open"
	"github.com/duocast-cli/duocast/remote"
	"github.com/duocast-cli/duocast/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().BoolP("open", "o", false, "Open the connector dashboard in the browser")
}

// devicesCmd lists the renderer devices registered with the cloud connector.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the remote devices registered with the connector",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(viper.GetString(key.RemoteConnectorURL)))
			return
		}

		token, err := auth.GetToken()
		if err != nil {
			log.Warnf("no connector token stored: %v", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		devices, err := remote.Devices(ctx, token)
		handleErr(err)

		if len(devices) == 0 {
			fmt.Printf("%s no devices registered\n", icon.Get(icon.Warning))
			return
		}

		defaultName := viper.GetString(key.RemoteDefaultDevice)
		for _, device := range devices {
			status := style.Fg(color.Red)("offline")
			if device.Online {
				status = style.Fg(color.Green)("online")
			}

			marker := " "
			if device.Name == defaultName {
				marker = style.Fg(color.Yellow)("*")
			}

			fmt.Printf(
				"%s %s %s %s %s\n",
				marker,
				icon.Get(icon.Remote),
				style.Bold(device.Name),
				style.Faint(device.Model),
				status,
			)
		}
	},
}
