package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xwatch/pkg/auth"
)

var authToken string

// authCmd groups the bearer-token management commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored X API bearer token",
	Long: `Manage the app-only bearer token used to call the X API.

The token is looked up in this order: the X_BEARER_TOKEN environment
variable, the system keychain, then an encrypted file under the user config
directory. 'auth login' stores into the first writable backend.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a bearer token",
	Example: `  # Prompt for the token (input is hidden)
  xwatch auth login

  # Non-interactive
  xwatch auth login --token "$X_BEARER_TOKEN"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(authToken)
		if token == "" {
			var err error
			token, err = promptForToken()
			if err != nil {
				return err
			}
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}

		mgr, err := auth.NewManager()
		if err != nil {
			return err
		}
		if err := mgr.Store(token); err != nil {
			return err
		}

		fmt.Println("Token stored.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the bearer token would be read from",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := auth.NewManager()
		if err != nil {
			return err
		}

		source, err := mgr.Source()
		if err != nil {
			fmt.Println("No bearer token configured.")
			fmt.Printf("Set %s or run 'xwatch auth login'.\n", auth.EnvTokenVar)
			return nil
		}

		fmt.Printf("Bearer token available from: %s\n", source)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := auth.NewManager()
		if err != nil {
			return err
		}

		if err := mgr.Delete(); err != nil {
			if err == auth.ErrTokenNotFound {
				fmt.Println("No stored token to remove.")
				return nil
			}
			return err
		}

		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	authLoginCmd.Flags().StringVar(&authToken, "token", "", "bearer token (prompted for when omitted)")
}

// promptForToken reads the token without echoing when stdin is a terminal
func promptForToken() (string, error) {
	fmt.Print("Bearer token: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	// Piped input
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
