package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dcbackup/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Discord token",
	Long: `Manage the Discord user token used for archiving.

The token is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - DISCORD_TOKEN environment variable (read-only fallback)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the Discord token securely",
	Long: `Store the Discord user token in the system keychain or an encrypted file.

To find your token:
1. Log into Discord in your browser
2. Open Developer Tools (F12) and go to the Network tab
3. Reload, pick any request to discord.com/api
4. Copy the value of the "authorization" request header`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	if existing, err := manager.Retrieve(); err == nil && existing != "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("A token is already stored. Replace it? (y/N): ")
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Discord token (input hidden): ")
	token, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return errors.New("token must not be empty")
	}

	if err := manager.Store(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Println("Token stored.")
	fmt.Println("\nRun a backup with:")
	fmt.Println("  dcbackup backup")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	if err := manager.Delete(); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	fmt.Println("Token removed.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	token, err := manager.Retrieve()
	if err != nil {
		fmt.Println("No token stored. Run 'dcbackup auth login' to add one.")
		return nil
	}

	fmt.Printf("Token available (%s)\n", sanitizeToken(token))
	return nil
}

// readSecret reads a line from stdin without echoing when attached to a
// terminal, falling back to plain input otherwise.
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// sanitizeToken shows just enough of the token to recognize it
func sanitizeToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
