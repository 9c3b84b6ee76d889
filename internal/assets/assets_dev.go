// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

// Package assets serves static files straight from disk in dev builds, so
// edits show up on reload. DG_ASSETS_DIR overrides the directory when the
// binary is not started from the repository root.
package assets

import (
	"net/http"
	"os"

	"github.com/samber/lo"
)

var staticDir = lo.CoalesceOrEmpty(os.Getenv("DG_ASSETS_DIR"), "internal/assets/static")

// CSSPath returns the unhashed stylesheet path.
func CSSPath() string { return "/static/" + cssFile }

// JSPath returns the unhashed script path.
func JSPath() string { return "/static/" + jsFile }

// FileServer serves staticDir. Hashed names from a previous build still
// resolve to their files.
func FileServer() http.Handler {
	return unhash(http.FileServer(http.Dir(staticDir)))
}
