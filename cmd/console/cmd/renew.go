package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "backoffice/console/internal/domain/session"
)

var renewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Exchange the current token for a fresh one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, cmd.ErrOrStderr(), sessionHooksFor(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		a.session.Start()
		if err := a.session.ContinueSession(cmd.Context()); err != nil {
			if errors.Is(err, domain.ErrNoCredential) {
				return errors.New("no active session, run \"console login\" first")
			}
			return err
		}

		cred, ok := a.session.Credential()
		if !ok {
			return errors.New("session ended during renewal")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session renewed, expires at %s.\n", cred.ExpiresAt.Local().Format(time.DateTime))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renewCmd)
}
