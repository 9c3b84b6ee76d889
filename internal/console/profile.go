// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package console

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"codeberg.org/dailygrind/web/internal/models"
	"github.com/urfave/cli/v3"
)

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Change the signed-in user's profile",
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Change display name or email address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "display-name"},
					&cli.StringFlag{Name: "email"},
				},
				Action: withApp(updateProfile),
			},
			{
				Name:      "picture",
				Usage:     "Upload a profile picture",
				ArgsUsage: "<file>",
				Action:    withApp(uploadPicture),
			},
		},
	}
}

func updateProfile(ctx context.Context, cmd *cli.Command, app *App) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	patch := &models.UserPatch{}
	if cmd.IsSet("display-name") {
		v := cmd.String("display-name")
		patch.DisplayName = &v
	}
	if cmd.IsSet("email") {
		v := cmd.String("email")
		patch.Email = &v
	}
	if patch.IsEmpty() {
		return errors.New("nothing to update, pass --display-name or --email")
	}

	if _, err := app.Session.UpdateProfile(ctx, patch); err != nil {
		return err
	}
	user := app.Session.User()
	app.printf("Profile updated: %s <%s>\n", user.Name(), user.Email)
	return nil
}

func uploadPicture(ctx context.Context, cmd *cli.Command, app *App) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}
	path := cmd.Args().First()
	if path == "" {
		return errors.New("missing picture file")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open picture: %w", err)
	}
	defer f.Close()

	upload := models.Upload{
		Body:        f,
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}
	if _, err := app.Session.UploadProfilePicture(ctx, upload); err != nil {
		return err
	}
	app.printf("Profile picture updated: %s\n", app.Session.User().ProfilePicture)
	return nil
}
