// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides embedded static assets with content-hashed filenames.
package assets

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed static
var staticFS embed.FS

var (
	cssPath string
	jsPath  string
)

func init() {
	cssPath = hashedPath(cssFile)
	jsPath = hashedPath(jsFile)
	slog.Debug("loaded asset paths", "css", cssPath, "js", jsPath)
}

func hashedPath(name string) string {
	data, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		slog.Error("failed to read asset", "name", name, "error", err)
		return "/static/" + name
	}
	return "/static/" + hashedName(name, contentHash(data))
}

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return cssPath
}

// JSPath returns the path to the JS file.
func JSPath() string {
	return jsPath
}

// FileServer returns an http.Handler that serves embedded static files.
// It expects the /static prefix to be stripped already.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	return unhash(http.FileServer(http.FS(sub)))
}
