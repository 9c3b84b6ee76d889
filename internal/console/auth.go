// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package console

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"
)

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "display-name", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Prompted for when omitted"},
		},
		Action: withApp(register),
	}
}

func register(ctx context.Context, cmd *cli.Command, app *App) error {
	pw, err := password(cmd)
	if err != nil {
		return err
	}
	user, err := app.Session.Register(ctx, cmd.String("email"), pw, cmd.String("display-name"))
	if err != nil {
		return err
	}
	app.printf("Registered and signed in as %s\n", user.Name())
	return nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email and password, or with Google",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "password", Usage: "Prompted for when omitted"},
			&cli.BoolFlag{Name: "google", Usage: "Print the Google sign-in URL"},
			&cli.StringFlag{Name: "token", Usage: "Complete a Google sign-in with the token from the callback URL"},
		},
		Action: withApp(login),
	}
}

func login(ctx context.Context, cmd *cli.Command, app *App) error {
	switch {
	case cmd.Bool("google"):
		app.printf("Open this URL in your browser:\n%s\n", app.Session.LoginWithGoogle())
		app.printf("Then run: login --token <token from the callback URL>\n")
		return nil

	case cmd.IsSet("token"):
		user, err := app.Session.HandleAuthCallback(ctx, cmd.String("token"))
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New("sign-in did not complete")
		}
		app.printf("Signed in as %s\n", user.Name())
		return nil
	}

	email := cmd.String("email")
	if email == "" {
		return errors.New("--email is required")
	}
	pw, err := password(cmd)
	if err != nil {
		return err
	}
	user, err := app.Session.Login(ctx, email, pw)
	if err != nil {
		return err
	}
	app.printf("Signed in as %s\n", user.Name())
	return nil
}

func logout(ctx context.Context, _ *cli.Command, app *App) error {
	app.Session.LogOut(ctx)
	app.printf("Signed out\n")
	return nil
}

func whoami(_ context.Context, _ *cli.Command, app *App) error {
	user, err := app.RequireUser()
	if err != nil {
		return err
	}
	app.printf("%s %s\n", labelStyle.Render("Name: "), user.Name())
	app.printf("%s %s\n", labelStyle.Render("Email:"), user.Email)
	app.printf("%s %s\n", labelStyle.Render("ID:   "), user.ID)
	if user.ProfilePicture != "" {
		app.printf("%s %s\n", labelStyle.Render("Photo:"), user.ProfilePicture)
	}
	return nil
}

