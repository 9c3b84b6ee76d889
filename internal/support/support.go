// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package support forwards support requests from the contact form by mail.
package support

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/i18n"
	gomail "github.com/wneessen/go-mail"
)

// ErrInvalidRequest is returned for a request without a valid sender or message.
var ErrInvalidRequest = errors.New("invalid support request")

// Request is a message submitted through the support form.
type Request struct {
	Email   string
	Message string
}

// Validate checks that the request has a sender address and a message.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: empty message", ErrInvalidRequest)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Mailer sends support requests to the configured support address.
type Mailer struct {
	cfg *config.SMTPConfig
}

// NewMailer creates a mailer from the SMTP configuration.
func NewMailer(cfg *config.SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	if cfg.SupportTo == "" {
		return nil, fmt.Errorf("support address is required")
	}
	return &Mailer{cfg: cfg}, nil
}

// Send delivers req. The sender of the request becomes the Reply-To address.
func (m *Mailer) Send(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	msg, err := m.NewMessage(ctx, req)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

// NewMessage builds the mail for req without sending it.
func (m *Mailer) NewMessage(ctx context.Context, req Request) (*gomail.Msg, error) {
	msg := gomail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if err := msg.To(m.cfg.SupportTo); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}
	if err := msg.ReplyTo(strings.TrimSpace(req.Email)); err != nil {
		return nil, fmt.Errorf("setting reply-to address: %w", err)
	}

	msg.Subject(i18n.TData(ctx, "support_mail_subject", map[string]any{"Email": strings.TrimSpace(req.Email)}))
	msg.SetBodyString(gomail.TypeTextPlain, strings.TrimSpace(req.Message))
	return msg, nil
}

func (m *Mailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere.
	if m.cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		if m.cfg.Port == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}
