// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package i18n translates user facing text. Message files live in
// translations/ as active.<lang>.toml; every file found there becomes a
// supported language, with English as the fallback.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

// DefaultLanguage is used when no supported language matches.
var DefaultLanguage = language.English

type catalog struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

var (
	loadOnce sync.Once
	loaded   *catalog
	loadErr  error
)

type (
	localeKey    struct{}
	localizerKey struct{}
)

// Init loads the embedded message files. It is safe to call repeatedly.
func Init() error {
	_, err := load()
	return err
}

func load() (*catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = newCatalog(translationFS)
	})
	return loaded, loadErr
}

func newCatalog(fsys fs.FS) (*catalog, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(fsys, "translations/*.toml")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(fsys, file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	// The first tag is the matcher's fallback.
	tags := append([]language.Tag{DefaultLanguage}, lo.Without(bundle.LanguageTags(), DefaultLanguage)...)
	return &catalog{bundle: bundle, matcher: language.NewMatcher(tags)}, nil
}

// WithLocale stores lang and a matching localizer on ctx.
func WithLocale(ctx context.Context, lang language.Tag) context.Context {
	locale := lang.String()
	ctx = context.WithValue(ctx, localeKey{}, locale)
	if c, err := load(); err == nil {
		ctx = context.WithValue(ctx, localizerKey{}, i18n.NewLocalizer(c.bundle, locale))
	}
	return ctx
}

// GetLocale returns the locale stored by WithLocale, or the fallback.
func GetLocale(ctx context.Context) string {
	if locale, ok := ctx.Value(localeKey{}).(string); ok {
		return locale
	}
	return DefaultLanguage.String()
}

// T translates a message by ID. Unknown IDs are returned unchanged.
func T(ctx context.Context, messageID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: messageID})
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
}

// TPlural translates a plural message. The count is available as {{.Count}}.
func TPlural(ctx context.Context, messageID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

// MatchLanguage picks the best supported language for an Accept-Language
// header value.
func MatchLanguage(acceptLanguage string) language.Tag {
	c, err := load()
	if err != nil {
		return DefaultLanguage
	}
	tag, _ := language.MatchStrings(c.matcher, acceptLanguage)
	// Drop the -u-rg region extension the matcher adds ("de-u-rg-dezzzz").
	base, _ := tag.Base()
	return language.Make(base.String())
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	localizer, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	if !ok {
		c, err := load()
		if err != nil {
			return cfg.MessageID
		}
		localizer = i18n.NewLocalizer(c.bundle, DefaultLanguage.String())
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return cfg.MessageID
	}
	return msg
}
