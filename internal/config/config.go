// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var (
	configPath = "config.toml"
	configFile = altsrc.NewStringPtrSourcer(&configPath)
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server  ServerConfig
	Log     LogConfig
	TLS     TLSConfig
	API     APIConfig
	Session SessionConfig
	Auth    AuthConfig
	Toast   ToastConfig
	SMTP    SMTPConfig
	Client  ClientConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type TLSConfig struct {
	Mode     string // auto, acme, manual, off
	CertDir  string // ACME certificate cache
	Email    string // ACME email for Let's Encrypt
	CertFile string // Path to certificate file (manual mode)
	KeyFile  string // Path to private key file (manual mode)
}

// APIConfig describes the external Daily Grind REST API.
type APIConfig struct { //nolint:govet // fieldalignment not critical for config structs
	BaseURL string
	Timeout time.Duration
	Rate    float64 // outbound requests per second, 0 disables limiting
	Burst   int
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Credential cookie name
	MaxAge     int    // Cookie max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

// AuthConfig limits form submissions on the auth screens.
type AuthConfig struct {
	RateLimit float64 // attempts per second per client IP
	RateBurst int
}

type ToastConfig struct {
	Duration time.Duration
}

// SMTPConfig is used to forward support requests. Mail is disabled when Host is empty.
type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	FromName  string
	TLS       bool
	SupportTo string
}

// ClientConfig configures the command-line client.
type ClientConfig struct {
	StatePath string // SQLite database holding the stored credential
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			CertDir:  cmd.String("tls-cert-dir"),
			Email:    cmd.String("tls-email"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		API: APIConfig{
			BaseURL: strings.TrimSuffix(cmd.String("api-url"), "/"),
			Timeout: cmd.Duration("api-timeout"),
			Rate:    cmd.Float("api-rate"),
			Burst:   int(cmd.Int("api-burst")),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     int(cmd.Int("session-max-age")),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		Auth: AuthConfig{
			RateLimit: cmd.Float("auth-rate"),
			RateBurst: int(cmd.Int("auth-burst")),
		},
		Toast: ToastConfig{
			Duration: cmd.Duration("toast-duration"),
		},
		SMTP: SMTPConfig{
			Host:      cmd.String("smtp-host"),
			Port:      int(cmd.Int("smtp-port")),
			Username:  cmd.String("smtp-username"),
			Password:  cmd.String("smtp-password"),
			From:      cmd.String("smtp-from"),
			FromName:  cmd.String("smtp-from-name"),
			TLS:       cmd.Bool("smtp-tls"),
			SupportTo: cmd.String("support-email"),
		},
		Client: ClientConfig{
			StatePath: cmd.String("state-path"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	return cfg
}

// SecureCookies reports whether cookies must carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.Server.BaseURL, "https://")
}

// MailEnabled reports whether support requests can be sent.
func (c *SMTPConfig) MailEnabled() bool {
	return c.Host != "" && c.SupportTo != ""
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	mode := strings.ToLower(cfg.TLS.Mode)

	scheme := "http"
	if shouldUseTLS(mode, host) {
		scheme = "https"
	}

	// ACME mode always uses port 443
	if mode == "acme" {
		return fmt.Sprintf("https://%s", host)
	}

	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func shouldUseTLS(mode, host string) bool {
	switch mode {
	case "off":
		return false
	case "acme", "manual":
		return true
	default: // "auto" or empty
		return !IsLocalhost(host)
	}
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

func source(env, key string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(env), toml.TOML(key, configFile))
}

// Flags returns the flags shared by every command. They are persistent, so
// subcommands read them through NewFromCLI.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "config.toml",
			Usage:       "Path to the TOML configuration file",
			Destination: &configPath,
			Sources:     cli.EnvVars("CONFIG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: source("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: source("LOG_FORMAT", "log.format"),
		},
		// API flags
		&cli.StringFlag{
			Name:    "api-url",
			Value:   "http://localhost:5000/api",
			Usage:   "Base URL of the Daily Grind API",
			Sources: source("API_URL", "api.base_url"),
		},
		&cli.DurationFlag{
			Name:    "api-timeout",
			Value:   15 * time.Second,
			Usage:   "Timeout for a single API request",
			Sources: source("API_TIMEOUT", "api.timeout"),
		},
		&cli.FloatFlag{
			Name:    "api-rate",
			Value:   20,
			Usage:   "Outbound API requests per second (0 disables limiting)",
			Sources: source("API_RATE", "api.rate"),
		},
		&cli.IntFlag{
			Name:    "api-burst",
			Value:   40,
			Usage:   "Outbound API request burst",
			Sources: source("API_BURST", "api.burst"),
		},
		// Client flags
		&cli.StringFlag{
			Name:    "state-path",
			Value:   "./data/client.db",
			Usage:   "SQLite database holding the command-line credential",
			Sources: source("STATE_PATH", "client.state_path"),
		},
	}
}

// ServerFlags returns the flags of the serve command.
func ServerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: source("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: source("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: source("BASE_URL", "server.base_url"),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   8,
			Usage:   "Maximum request body size in MB",
			Sources: source("MAX_BODY_SIZE", "server.max_body_size"),
		},
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "auto",
			Usage:   "TLS mode (auto, acme, manual, off)",
			Sources: source("TLS_MODE", "tls.mode"),
		},
		&cli.StringFlag{
			Name:    "tls-cert-dir",
			Value:   "./data/certs",
			Usage:   "Directory for ACME certificates",
			Sources: source("TLS_CERT_DIR", "tls.cert_dir"),
		},
		&cli.StringFlag{
			Name:    "tls-email",
			Usage:   "Email for ACME/Let's Encrypt registration",
			Sources: source("TLS_EMAIL", "tls.email"),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file (manual mode)",
			Sources: source("TLS_CERT_FILE", "tls.cert_file"),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file (manual mode)",
			Sources: source("TLS_KEY_FILE", "tls.key_file"),
		},
		// Session flags
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "dg_token",
			Usage:   "Name of the cookie holding the API credential",
			Sources: source("SESSION_COOKIE_NAME", "session.cookie_name"),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   604800, // 7 days in seconds
			Usage:   "Credential cookie max age in seconds",
			Sources: source("SESSION_MAX_AGE", "session.max_age"),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Cookie hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: source("SESSION_HASH_KEY", "session.hash_key"),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Cookie block key for encryption (32-byte hex, optional)",
			Sources: source("SESSION_BLOCK_KEY", "session.block_key"),
		},
		// Auth screens
		&cli.FloatFlag{
			Name:    "auth-rate",
			Value:   1,
			Usage:   "Login/registration attempts per second per client IP",
			Sources: source("AUTH_RATE", "auth.rate"),
		},
		&cli.IntFlag{
			Name:    "auth-burst",
			Value:   5,
			Usage:   "Login/registration attempt burst per client IP",
			Sources: source("AUTH_BURST", "auth.burst"),
		},
		&cli.DurationFlag{
			Name:    "toast-duration",
			Value:   5 * time.Second,
			Usage:   "How long notifications stay visible",
			Sources: source("TOAST_DURATION", "toast.duration"),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host for support requests (disabled if empty)",
			Sources: source("SMTP_HOST", "smtp.host"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: source("SMTP_PORT", "smtp.port"),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: source("SMTP_USERNAME", "smtp.username"),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: source("SMTP_PASSWORD", "smtp.password"),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "Sender address for support requests",
			Sources: source("SMTP_FROM", "smtp.from"),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "Daily Grind",
			Usage:   "Sender display name",
			Sources: source("SMTP_FROM_NAME", "smtp.from_name"),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: source("SMTP_TLS", "smtp.tls"),
		},
		&cli.StringFlag{
			Name:    "support-email",
			Usage:   "Recipient of support requests",
			Sources: source("SUPPORT_EMAIL", "smtp.support_to"),
		},
	}
}
