// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/htmx"
	"codeberg.org/dailygrind/web/internal/session"
	"codeberg.org/dailygrind/web/internal/templates"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

var errNoSession = errors.New("route is not session aware")

// Render renders a templ component with the given status code.
// Pending toasts of the browser are rendered into the layout; htmx fragment
// requests get the page content only.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	ctx := c.Request().Context()
	if cc := appcontext.From(c); cc != nil {
		ctx = templates.WithToasts(ctx, cc.Toasts.List())
		if cc.Htmx != nil && cc.Htmx.IsPartial() {
			ctx = templates.WithPartial(ctx)
		}
	}

	if err := component.Render(ctx, buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// redirect navigates the browser to url after a form submission.
func redirect(c echo.Context, url string) error {
	htmx.Redirect(c.Response(), c.Request(), url)
	return nil
}

// controller returns the session controller installed by LoadSession.
func controller(c echo.Context) (*session.Controller, error) {
	cc := appcontext.From(c)
	if cc == nil || cc.Session == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError).SetInternal(errNoSession)
	}
	return cc.Session, nil
}

func formValue(c echo.Context, name string) string {
	return strings.TrimSpace(c.FormValue(name))
}

func success(c echo.Context, message string) {
	if cc := appcontext.From(c); cc != nil && cc.Toasts != nil {
		cc.Toasts.Success(message)
	}
}
