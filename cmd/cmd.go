// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes configuration and the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the database schema",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// serveCommand runs the webhook consumer and lookup API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the billing webhook consumer and account lookup API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// usersCommand handles operator account lookups and exports
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "users",
		Aliases: []string{"u"},
		Usage:   "Account store operations",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Look up a user by email, id, or billing customer id",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "email",
						Usage: "Email to look up",
					},
					&cli.IntFlag{
						Name:  "id",
						Usage: "User id to look up",
					},
					&cli.StringFlag{
						Name:  "customer-id",
						Usage: "Billing customer id to look up",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.UserGet,
			},
			{
				Name:  "create",
				Usage: "Create a user (no-op if the email already exists)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email for the new user",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "alias",
						Usage: "Display alias for the new user",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.UserCreate,
			},
			{
				Name:  "export",
				Usage: "Export all users",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, markdown, or text",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to stdout)",
					},
				},
				Action: r.UserExport,
			},
		},
	}
}
