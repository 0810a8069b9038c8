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

func typeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Content type: artist, album, or song",
		Value:   "artist",
	}
}

// setupCommand initializes configuration and the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml, initialize the database, and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// searchCommand fans a query out to all configured providers
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search all configured providers",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			typeFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// detailsCommand looks up one item from one provider
func detailsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "details",
		Usage: "Look up one item's full record from a single provider",
		Flags: []cli.Flag{
			typeFlag(),
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "Provider name: spotify or discogs",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Provider item ID",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Details,
	}
}

// createCommand merges provider records and materializes a content node
func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Merge provider records and create a content node",
		Flags: []cli.Flag{
			typeFlag(),
			&cli.StringSliceFlag{
				Name:    "from",
				Aliases: []string{"f"},
				Usage:   "Source record as provider:id (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "pick",
				Usage: "Field source as field=provider (repeatable; defaults to first provider with a value)",
			},
		},
		Action: r.Create,
	}
}

// tuiCommand launches the interactive flow
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive search, compare, and create",
		Flags:  []cli.Flag{typeFlag()},
		Action: r.TUI,
	}
}

// migrateCommand applies or rolls back database migrations
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run pending database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Migrate,
	}
}
