package cmd

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	domain "backoffice/console/internal/domain/session"
	"backoffice/console/internal/ui"
	"backoffice/console/internal/usecase/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive console that warns before the session expires",
	Long: `Opens the interactive console. When the session enters its warning
window a dialog counts down to the forced logout and offers to continue
the session or end it. Logs go to LOG_FILE when set.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}
	hooks := session.Hooks{
		Changed:      func(v domain.View) { send(ui.ViewMsg{View: v}) },
		SessionEnded: func(r domain.EndReason) { send(ui.EndedMsg{Reason: r}) },
		ToLogin:      func() { send(ui.ToLoginMsg{}) },
	}

	a, err := newApp(cfg, io.Discard, hooks)
	if err != nil {
		return err
	}
	defer a.Close()

	login := func(ctx context.Context, email, password string) (string, time.Duration, error) {
		res, err := a.client.Login(ctx, email, password)
		if err != nil {
			return "", 0, err
		}
		return res.Token, res.TTL, nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	model := ui.New(ctx, a.session, login)
	p = tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	a.logger.Info("console started", "api", cfg.APIBaseURL, "warning_window", cfg.WarningWindow)
	_, err = p.Run()
	return err
}
