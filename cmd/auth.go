// Package cmd implements the command-line interface for duocast.
package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/duocast-cli/duocast/auth"
	"github.com/duocast-cli/duocast/color"
	"github.com/duocast-cli/duocast/icon"
	"github.com/duocast-cli/duocast/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().StringP("token", "t", "", "Connector access token (prompted for when omitted)")

	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// authCmd groups connector credential management.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the connector access token in the system keyring",
}

// authLoginCmd stores the connector access token.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the connector access token",
	Run: func(cmd *cobra.Command, args []string) {
		token := lo.Must(cmd.Flags().GetString("token"))

		if token == "" {
			prompt := &survey.Password{Message: "Connector access token:"}
			handleErr(survey.AskOne(prompt, &token))
		}

		if token == "" {
			handleErr(errors.New("empty token"))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

// authStatusCmd reports whether a token is stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a connector token is stored",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := auth.GetToken(); err != nil {
			fmt.Printf("%s no token stored\n", icon.Get(icon.Warning))
			return
		}

		fmt.Printf("%s %s\n", icon.Get(icon.Lock), style.Fg(color.Green)("token stored"))
	},
}

// authLogoutCmd removes the stored token.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored connector token",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
