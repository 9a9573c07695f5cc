// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
		Sources: cli.EnvVars("TOPLIST_CONFIG"),
	}
}

// serveCommand runs the web server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (host:port), overrides [server] host and port",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in the default browser once listening",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: r.Serve,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Create or validate the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigInit,
			},
			{
				Name:   "check",
				Usage:  "Validate the configuration and environment",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigCheck,
			},
		},
	}
}

// dbCommand manages the sqlite session store schema
func dbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Manage the sqlite session store",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.DBMigrate,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the latest migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.DBRollback,
			},
		},
	}
}
