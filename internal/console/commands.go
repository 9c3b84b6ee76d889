// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package console

import (
	"context"

	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/logging"
	"github.com/urfave/cli/v3"
)

type action func(ctx context.Context, cmd *cli.Command, app *App) error

// withApp opens the process session around fn.
func withApp(fn action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)
		root := cmd.Root()
		logging.Setup(root.ErrWriter, cfg.Log.Level, cfg.Log.Format)

		app, err := Open(ctx, cfg, root.Writer)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		return fn(ctx, cmd, app)
	}
}

// NewRoot returns the command tree. serve runs the web server.
func NewRoot(version string, serve cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:    "dailygrind",
		Usage:   "Daily Grind web client and command-line tool",
		Version: version,
		Flags:   config.Flags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web application",
				Flags:  config.ServerFlags(),
				Action: serve,
			},
			registerCommand(),
			loginCommand(),
			{
				Name:   "logout",
				Usage:  "Forget the stored credential",
				Action: withApp(logout),
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Action: withApp(whoami),
			},
			profileCommand(),
			ticketsCommand(),
		},
	}
}
