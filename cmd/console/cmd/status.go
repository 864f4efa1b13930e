package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "backoffice/console/internal/domain/session"
	"backoffice/console/internal/infrastructure/authclient"
	"backoffice/console/internal/usecase/session"
)

var (
	statusVerify bool
	statusJSON   bool
)

type statusReport struct {
	Phase            string    `json:"phase"`
	ExpiresAt        time.Time `json:"expires_at,omitzero"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	CountdownSeconds int       `json:"countdown_seconds,omitempty"`
	User             string    `json:"user,omitempty"`
	EndReason        string    `json:"end_reason,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the persisted session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusVerify, "verify", false, "Ask the server whether the token is still accepted")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	var report statusReport
	hooks := session.Hooks{
		SessionEnded: func(r domain.EndReason) { report.EndReason = string(r) },
	}
	a, err := newApp(cfg, cmd.ErrOrStderr(), hooks)
	if err != nil {
		return err
	}
	defer a.Close()

	// an expired credential is cleared here through the logout path
	a.session.Start()

	if statusVerify {
		if token, ok := a.session.Token(); ok {
			user, err := a.client.Me(cmd.Context(), token)
			switch {
			case err == nil && user != nil:
				report.User = user.Email
			case errors.Is(err, authclient.ErrUnauthorized):
				// the unauthorized handler already ended the session
			case err != nil:
				return fmt.Errorf("verify session: %w", err)
			}
		}
	}

	view := a.session.View()
	report.Phase = view.Phase.String()
	if cred, ok := a.session.Credential(); ok {
		report.ExpiresAt = cred.ExpiresAt
		report.RemainingSeconds = int64(time.Until(cred.ExpiresAt).Seconds())
		report.CountdownSeconds = view.CountdownSeconds
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	switch view.Phase {
	case domain.PhaseActive, domain.PhaseWarning:
		fmt.Fprintf(out, "Session %s, expires at %s (%s left).\n",
			report.Phase,
			report.ExpiresAt.Local().Format(time.DateTime),
			(time.Duration(report.RemainingSeconds) * time.Second).String())
		if report.User != "" {
			fmt.Fprintf(out, "Server accepts the token for %s.\n", report.User)
		}
	default:
		if report.EndReason != "" {
			fmt.Fprintf(out, "No active session (ended: %s).\n", report.EndReason)
		} else {
			fmt.Fprintln(out, "No active session.")
		}
	}
	return nil
}
