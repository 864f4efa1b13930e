package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session token",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		fmt.Fprint(out, "Email: ")
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password, err := readPassword(cmd, in)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr(), sessionHooksFor(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.session.Establish(res.Token, res.TTL); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	cred, _ := a.session.Credential()
	who := email
	if res.User != nil && res.User.Name != "" {
		who = res.User.Name + " <" + res.User.Email + ">"
	}
	fmt.Fprintf(out, "Signed in as %s. Session expires at %s.\n", who, cred.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if !loginPasswordStdin {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			raw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(raw), nil
		}
	}
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}
