package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"backoffice/console/internal/config"
)

var (
	configPath string
	apiURL     string
	cfg        config.Console
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Backoffice console session client",
	Long: `Signs in to the backoffice API and keeps the session alive.

The session token is persisted locally and expires after the lifetime the
server grants it. "console watch" shows a warning before that happens and
lets you renew the session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := os.Setenv("CONSOLE_CONFIG", configPath); err != nil {
				return err
			}
		}
		loaded, err := config.LoadConsole()
		if err != nil {
			return err
		}
		if apiURL != "" {
			loaded.APIBaseURL = apiURL
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to console.toml (default ~/.backoffice/console.toml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backoffice API base URL (overrides API_BASE_URL)")
}
