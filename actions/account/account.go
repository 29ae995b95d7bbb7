package account

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	appcli "github.com/sobhan-h/subpanel-client/internal/cli"
)

// LoginCommand authenticates against the panel and persists the session.
var LoginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to the subscription panel",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Panel username",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Panel password (not recommended, use interactive prompt)",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: loginAction,
}

// LogoutCommand invalidates the session server-side and clears local state.
var LogoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out and clear the stored session",
	Action: logoutAction,
}

// SeenCommand acknowledges the update prompt.
var SeenCommand = &cli.Command{
	Name:   "seen",
	Usage:  "Mark the update prompt as seen",
	Action: seenAction,
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	app, err := appcli.Bootstrap(cmd.Root().Version, cmd.Bool("debug"))
	if err != nil {
		return err
	}

	username := cmd.String("username")
	if username == "" {
		username, err = promptInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password := cmd.String("password")
	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	fmt.Println("Logging in...")

	if _, err := app.Auth.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", username)
	fmt.Printf("  State: %s\n", app.Store.Path())
	return nil
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	app, err := appcli.Bootstrap(cmd.Root().Version, false)
	if err != nil {
		return err
	}

	token, err := app.SessionToken()
	if err != nil {
		fmt.Println("Not currently logged in")
		return nil
	}

	// Logout clears the local token even when the server call fails.
	if err := app.Auth.Logout(ctx, token); err != nil {
		fmt.Printf("⚠ Warning: server logout failed: %v\n", err)
	}

	fmt.Println("✓ Logged out")
	return nil
}

func seenAction(ctx context.Context, cmd *cli.Command) error {
	app, err := appcli.Bootstrap(cmd.Root().Version, false)
	if err != nil {
		return err
	}

	token, err := app.SessionToken()
	if err != nil {
		return err
	}

	if err := app.Auth.UpdatePromptSeen(ctx, token); err != nil {
		return fmt.Errorf("failed to acknowledge update prompt: %w", err)
	}

	fmt.Println("✓ Update prompt marked as seen")
	return nil
}

// promptInput prompts for user input
func promptInput(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptPassword prompts for password input (hidden)
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	// Fallback to regular input if not a terminal
	return promptInput("")
}
