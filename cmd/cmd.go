package main

import (
	"github.com/urfave/cli/v3"
)

// register returns the command tree wired to the Runner's actions.
func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		r.setupCommand(),
		r.syncCommand(),
		r.browseCommand(),
		r.libraryCommand(),
	}
}

func (r *Runner) setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the library database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "init-config",
				Usage: "Write a starter config file before setting up the database",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path for the generated config file",
				Value: "config.toml",
			},
		},
		Action: r.Setup,
	}
}

func (r *Runner) syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync a provider's catalog into the local library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "Provider identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name for the provider",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Provider kind: file or api",
				Value: "file",
			},
			&cli.StringFlag{
				Name:  "root-folder",
				Usage: "Root folder id for file providers",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Provider access token",
				Sources: cli.EnvVars("MUSEBOX_TOKEN"),
			},
			&cli.StringFlag{
				Name:  "token-expiry",
				Usage: "Token expiry as RFC 3339",
			},
			&cli.StringFlag{
				Name:  "last-synced",
				Usage: "Previous completed sync time as RFC 3339",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Sync even if the last sync was recent",
			},
		},
		Action: r.Sync,
	}
}

func (r *Runner) browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "List a file provider's root folders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "Provider identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Provider access token",
				Sources: cli.EnvVars("MUSEBOX_TOKEN"),
			},
		},
		Action: r.Browse,
	}
}

func (r *Runner) libraryCommand() *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "List synced albums or export tracks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Filter albums by provider identifier",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of albums to list",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Export all tracks as CSV instead of listing albums",
			},
		},
		Action: r.Library,
	}
}
