package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authd/cmd/app/commands"
	"github.com/allisson/authd/internal/app"
	"github.com/allisson/authd/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "add-role",
			Usage: "Create a role with a list of activities",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Role name",
				},
				&cli.StringSliceFlag{
					Name:    "activity",
					Aliases: []string{"a"},
					Usage:   "Activity label the role grants (repeatable)",
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

				return commands.RunAddRole(
					ctx,
					core,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.StringSlice("activity"),
				)
			},
		},
		{
			Name:  "add-user",
			Usage: "Create a user with a password and role assignments",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Username",
				},
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Initial password",
				},
				&cli.StringSliceFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Usage:   "Role to assign (repeatable, must exist)",
				},
				&cli.BoolFlag{
					Name:  "root",
					Value: false,
					Usage: "Grant the root bypass (use sparingly)",
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

				return commands.RunAddUser(
					ctx,
					core,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("password"),
					cmd.StringSlice("role"),
					cmd.Bool("root"),
				)
			},
		},
	}
}
