package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authd/cmd/app/commands"
	"github.com/allisson/authd/internal/app"
	"github.com/allisson/authd/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "check",
			Usage: "Verify the consistency of the authorization graph",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				core, err := container.AuthUseCase()
				if err != nil {
					return err
				}

				return commands.RunCheck(ctx, core, container.Logger(), commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "reset",
			Usage: "Wipe all roles, users and the activity index",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "yes",
					Aliases: []string{"y"},
					Value:   false,
					Usage:   "Confirm the wipe without prompting",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				core, err := container.AuthUseCase()
				if err != nil {
					return err
				}

				return commands.RunReset(
					ctx,
					core,
					container.Logger(),
					commands.DefaultIO(),
					cmd.Bool("yes"),
				)
			},
		},
	}
}
