// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Owner username",
		Required: true,
	}
}

// reportFlags are the shared output options for the pipeline commands.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (plain, markdown or json)",
			Value:   "plain",
		},
		&cli.StringFlag{
			Name:  "save",
			Usage: "Also write the report to the given file",
		},
	}
}

// setupCommand handles database and configuration bootstrap.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database, run migrations and create config.toml",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles the OAuth2 authorization dance.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize an owner with YouTube using OAuth2",
		Flags:  []cli.Flag{configFlag(), userFlag()},
		Action: r.Auth,
	}
}

// userCommand handles owner registration and inspection.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage owners",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a new owner",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "email",
						Usage: "Owner email address",
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:  "list",
				Usage: "List registered owners",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.UserList,
			},
		},
	}
}

// pullCommand runs the read half of the pipeline for one owner.
func pullCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Read the liked feed into the local catalog and assign playlist slots",
		Flags: append([]cli.Flag{configFlag(), userFlag()}, reportFlags()...),
		Action: r.Pull,
	}
}

// pushCommand runs the write half of the pipeline for one owner.
func pushCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Publish pending playlist and membership changes to YouTube",
		Flags: append([]cli.Flag{configFlag(), userFlag()}, reportFlags()...),
		Action: r.Push,
	}
}

// syncCommand runs pull then push, for one owner or every opted-in catalog.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run pull then push",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Owner username",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Sync every catalog opted into updates",
			},
		}, reportFlags()...),
		Action: r.Sync,
	}
}

// statusCommand prints an owner's catalog state.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show an owner's song counts by sync state",
		Flags: []cli.Flag{
			configFlag(),
			userFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (plain, markdown or json)",
				Value:   "plain",
			},
		},
		Action: r.Status,
	}
}

// serveCommand starts the HTTP trigger surface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve HTTP endpoints that trigger pull, push and sync",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// tuiCommand launches the read-only catalog browser.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse an owner's playlists and songs interactively",
		Flags:   []cli.Flag{configFlag(), userFlag()},
		Action:  r.TUI,
	}
}
