package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dukerupert/streek/internal/config"
)

var cli struct {
	Version kong.VersionFlag

	Serve     serveCmd     `cmd:"" default:"1" help:"Run the Streek API server."`
	History   historyCmd   `cmd:"" help:"Print activity history and stats for a date range."`
	Backup    backupCmd    `cmd:"" help:"Manage encrypted database backups."`
	VAPIDKeys vapidKeysCmd `cmd:"" name:"vapid-keys" help:"Generate a VAPID key pair for Web Push."`
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := kong.Parse(&cli,
		kong.Name("streek"),
		kong.Description("Fitness accountability tracker: challenges, history, rewards and profile."),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)
	// Backup subcommands read their shared flags from the parent.
	if err := ctx.Run(&cli.Backup); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
