// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/dailygrind/web/internal/guard"
	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/templates"
	"github.com/labstack/echo/v4"
)

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Login(templates.LoginForm{}))
}

// Login signs the user in with email and password.
func (h *Handlers) Login(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	email := formValue(c, "email")
	if _, err := ctrl.Login(c.Request().Context(), email, c.FormValue("password")); err != nil {
		form := templates.LoginForm{Email: email, Error: ctrl.State().Error}
		return Render(c, http.StatusUnprocessableEntity, templates.Login(form))
	}
	return redirect(c, guard.DashboardPath)
}

// RegisterPage renders the registration form.
func (h *Handlers) RegisterPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Register(templates.RegisterForm{}))
}

// Register creates an account and signs it in.
func (h *Handlers) Register(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	email := formValue(c, "email")
	displayName := formValue(c, "display_name")
	if _, err := ctrl.Register(c.Request().Context(), email, c.FormValue("password"), displayName); err != nil {
		form := templates.RegisterForm{Email: email, DisplayName: displayName, Error: ctrl.State().Error}
		return Render(c, http.StatusUnprocessableEntity, templates.Register(form))
	}
	return redirect(c, guard.DashboardPath)
}

// GoogleLogin sends the browser to the API's OAuth entry point.
func (h *Handlers) GoogleLogin(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, ctrl.LoginWithGoogle())
}

// AuthCallback completes an OAuth login with the token from the query string.
func (h *Handlers) AuthCallback(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := ctrl.HandleAuthCallback(ctx, c.QueryParam("token"))
	if err != nil || user == nil {
		form := templates.LoginForm{Error: i18n.T(ctx, "login_callback_failed")}
		return Render(c, http.StatusUnauthorized, templates.Login(form))
	}
	return c.Redirect(http.StatusSeeOther, guard.DashboardPath)
}

// Logout forgets the credential and returns to the home page.
func (h *Handlers) Logout(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}
	ctrl.LogOut(c.Request().Context())
	return redirect(c, "/")
}
