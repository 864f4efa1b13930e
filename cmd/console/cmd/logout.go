package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"backoffice/console/internal/usecase/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and remove the persisted token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, cmd.ErrOrStderr(), session.Hooks{})
		if err != nil {
			return err
		}
		defer a.Close()

		if _, ok := a.session.Credential(); !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No active session.")
			return nil
		}
		a.session.EndSession()
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
