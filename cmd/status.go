// Package cmd implements the command-line interface for duocast.
package cmd

import (
	"context"
	"encoding/json"
	"os/exec"
	"runtime"

	"github.com/duocast-cli/duocast/auth"
	"github.com/duocast-cli/duocast/constant"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/remote"
	"github.com/duocast-cli/duocast/where"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Status is the machine-readable environment snapshot printed by the status command.
type Status struct {
	Version      string          `json:"version" jsonschema:"description=Application version"`
	Platform     string          `json:"platform" jsonschema:"description=Operating system and architecture"`
	ConfigPath   string          `json:"config_path" jsonschema:"description=Directory the configuration is read from"`
	EngineBinary string          `json:"engine_binary" jsonschema:"description=Local playback engine binary"`
	EngineFound  bool            `json:"engine_found" jsonschema:"description=Whether the engine binary is present in PATH"`
	ConnectorURL string          `json:"connector_url" jsonschema:"description=Configured cloud connector base URL"`
	TokenStored  bool            `json:"token_stored" jsonschema:"description=Whether a connector token is stored in the keyring"`
	Devices      []remote.Device `json:"devices,omitempty" jsonschema:"description=Devices registered with the connector"`
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json-schema", false, "Print the JSON schema of the status output instead")
	statusCmd.Flags().BoolP("devices", "d", false, "Include the connector's device list")
}

// statusCmd prints a JSON snapshot of the playback environment.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a JSON snapshot of the playback environment",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		if lo.Must(cmd.Flags().GetBool("json-schema")) {
			handleErr(encoder.Encode(jsonschema.Reflect(&Status{})))
			return
		}

		binary := viper.GetString(key.EngineBinary)
		_, lookErr := exec.LookPath(binary)
		_, tokenErr := auth.GetToken()

		status := Status{
			Version:      constant.Version,
			Platform:     runtime.GOOS + "/" + runtime.GOARCH,
			ConfigPath:   where.Config(),
			EngineBinary: binary,
			EngineFound:  lookErr == nil,
			ConnectorURL: viper.GetString(key.RemoteConnectorURL),
			TokenStored:  tokenErr == nil,
		}

		if lo.Must(cmd.Flags().GetBool("devices")) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			token, _ := auth.GetToken()
			devices, err := remote.Devices(ctx, token)
			handleErr(err)
			status.Devices = devices
		}

		handleErr(encoder.Encode(status))
	},
}
