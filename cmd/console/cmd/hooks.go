package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "backoffice/console/internal/domain/session"
	"backoffice/console/internal/usecase/session"
)

// sessionHooksFor reports session ends of one-shot commands on stderr.
func sessionHooksFor(cmd *cobra.Command) session.Hooks {
	return session.Hooks{
		SessionEnded: func(r domain.EndReason) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Session ended: %s.\n", r)
		},
	}
}
