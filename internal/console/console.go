// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package console implements the command-line client. The process is the
// application root: one credential store, auth client and session controller
// per invocation, with the credential kept in a local SQLite database.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/authclient"
	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/credential"
	"codeberg.org/dailygrind/web/internal/database"
	"codeberg.org/dailygrind/web/internal/guard"
	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/session"
	"codeberg.org/dailygrind/web/internal/toast"
	"github.com/charmbracelet/lipgloss"
	"github.com/vinovest/sqlx"
)

// ErrNotLoggedIn is returned by commands that need a signed-in user.
var ErrNotLoggedIn = errors.New("not logged in")

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// App holds the session of one command invocation.
type App struct {
	Session *session.Controller
	API     *apiclient.Client
	db      *sqlx.DB
	toasts  *toast.Queue
	out     io.Writer
}

// Open connects to the state database and resolves the stored credential.
func Open(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	db, err := database.Open(cfg.Client.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	api := apiclient.New(&cfg.API)
	store := credential.NewStore(ctx, credential.NewSQLitePersister(db), api)
	ctrl := session.New(authclient.New(api, store))

	if res := ctrl.Init(ctx); res.Outcome == authclient.OutcomeFailed {
		slog.Warn("session lookup failed", "error", res.Err)
	}

	return &App{
		Session: ctrl,
		API:     api,
		db:      db,
		toasts:  toast.NewQueue(0, printer{out: out}),
		out:     out,
	}, nil
}

// Close releases the state database.
func (a *App) Close() error {
	a.toasts.Close()
	return a.db.Close()
}

// RequireUser applies the protected-view guard to the process session.
func (a *App) RequireUser() (*models.User, error) {
	if guard.Decide(a.Session.State(), guard.Protected).Action != guard.Render {
		return nil, ErrNotLoggedIn
	}
	return a.Session.User(), nil
}

// Notifier reports ticket outcomes on the command output.
func (a *App) Notifier() *toast.Queue {
	return a.toasts
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// printer writes toasts as they are pushed.
type printer struct {
	out io.Writer
}

func (p printer) ToastAdded(t toast.Toast) {
	if t.Kind == toast.KindError {
		_, _ = fmt.Fprintln(p.out, errorStyle.Render("✗ "+t.Message))
		return
	}
	_, _ = fmt.Fprintln(p.out, successStyle.Render("✓ "+t.Message))
}

func (printer) ToastRemoved(string) {}
