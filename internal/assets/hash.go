// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"path"
	"strings"
)

// Entry points referenced by the layout, relative to static/.
const (
	cssFile = "css/styles.css"
	jsFile  = "js/app.js"
)

// hashLen is the number of hex characters of the content hash in asset names.
const hashLen = 8

// contentHash returns the short content hash used in asset names.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLen]
}

// hashedName inserts hash before the extension: styles.css → styles.abc12345.css.
func hashedName(name, hash string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + hash + ext
}

// stripHash reverses hashedName. Names without a hash are returned unchanged.
func stripHash(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || len(base)-dot-1 != hashLen {
		return name
	}
	for _, c := range base[dot+1:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return name
		}
	}
	return base[:dot] + ext
}

// unhash serves hashed asset names from their unhashed files.
func unhash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2 := r.Clone(r.Context())
		r2.URL.Path = stripHash(r.URL.Path)
		next.ServeHTTP(w, r2)
	})
}
