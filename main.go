package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sobhan-h/subpanel-client/actions/account"
	"github.com/sobhan-h/subpanel-client/actions/status"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "0.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "subctl",
		Usage:   "Subscription panel client",
		Version: version,
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("subctl - use 'subctl help' for available commands")
			return nil
		},
		Commands: []*cli.Command{
			account.LoginCommand,
			account.LogoutCommand,
			account.SeenCommand,
			status.StatusCommand,
			status.KeepaliveCommand,
			status.SyncCommand,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
