// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, middleware and routes into the web
// client and runs it.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/assets"
	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/credential"
	"codeberg.org/dailygrind/web/internal/handlers"
	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/logging"
	"codeberg.org/dailygrind/web/internal/middleware"
	"codeberg.org/dailygrind/web/internal/sse"
	"codeberg.org/dailygrind/web/internal/support"
	"codeberg.org/dailygrind/web/internal/templates"
	"codeberg.org/dailygrind/web/internal/toast"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"api_url", cfg.API.BaseURL,
	)

	// i18n
	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.toasts.Close()

	return startWithGracefulShutdown(ctx, srv.echo, cfg)
}

type server struct {
	echo   *echo.Echo
	toasts *toast.Registry
}

// newServer builds the Echo instance with middleware and routes. Background
// work stops when ctx is cancelled; the caller closes the toast registry.
func newServer(ctx context.Context, cfg *config.Config) (*server, error) {
	codec, err := credential.NewCookieCodec(&cfg.Session, cfg.SecureCookies())
	if err != nil {
		return nil, fmt.Errorf("failed to set up credential cookie: %w", err)
	}

	var mailer handlers.SupportSender
	if cfg.SMTP.MailEnabled() {
		m, err := support.NewMailer(&cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("failed to set up support mail: %w", err)
		}
		mailer = m
	} else {
		slog.Info("support mail disabled")
	}

	hub := sse.NewHub()
	toasts := toast.NewRegistry(hub, cfg.Toast.Duration, templates.ToastHTML)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg, findAssets(), toasts)
	setupRoutes(e, routeDeps{
		handlers: handlers.New(mailer, toasts, hub),
		events:   handlers.NewSSEHandler(hub),
		api:      apiclient.New(&cfg.API),
		codec:    codec,
		limiter:  middleware.NewRateLimiter(ctx, rate.Limit(cfg.Auth.RateLimit), cfg.Auth.RateBurst),
	})

	return &server{echo: e, toasts: toasts}, nil
}

type routeDeps struct {
	handlers *handlers.Handlers
	events   *handlers.SSEHandler
	api      *apiclient.Client
	codec    *credential.CookieCodec
	limiter  *middleware.RateLimiter
}

func setupRoutes(e *echo.Echo, d routeDeps) {
	h := d.handlers

	// Route-level middleware instead of groups: a group registers catch-all
	// routes, which would put unknown URLs behind the auth guards.
	sess := middleware.LoadSession(d.api, d.codec)
	limit := d.limiter.Middleware()
	guest := []echo.MiddlewareFunc{sess, middleware.RequireGuest()}
	protected := []echo.MiddlewareFunc{sess, middleware.RequireAuth()}

	// Static files
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static", assets.FileServer())))

	e.GET("/health", h.Health)
	e.POST("/toasts/:id/dismiss", h.DismissToast)

	// Public pages
	e.GET("/", h.Home, sess)
	e.GET("/about", h.About, sess)
	e.GET("/features", h.Features, sess)
	e.GET("/pricing", h.Pricing, sess)
	e.GET("/blog", h.Blog, sess)
	e.GET("/support", h.SupportPage, sess)
	e.POST("/support", h.SubmitSupport, limit, sess)
	e.GET("/events", d.events.Events, sess)

	// Auth
	e.GET("/auth/login", h.LoginPage, guest...)
	e.POST("/auth/login", h.Login, append([]echo.MiddlewareFunc{limit}, guest...)...)
	e.GET("/auth/register", h.RegisterPage, guest...)
	e.POST("/auth/register", h.Register, append([]echo.MiddlewareFunc{limit}, guest...)...)
	e.GET("/auth/google", h.GoogleLogin, sess)
	e.GET("/auth/callback", h.AuthCallback, limit, sess)
	e.POST("/auth/logout", h.Logout, sess)

	// Signed-in pages
	e.GET("/dashboard", h.Dashboard, protected...)
	e.GET("/profile", h.ProfilePage, protected...)
	e.POST("/profile", h.UpdateProfile, protected...)
	e.POST("/profile/picture", h.UploadProfilePicture, protected...)
	e.GET("/tickets", h.Tickets, protected...)
	e.POST("/tickets", h.CreateTicket, protected...)
	e.POST("/tickets/:id", h.UpdateTicket, protected...)
	e.POST("/tickets/:id/delete", h.DeleteTicket, protected...)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	// Channel for server errors
	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
