// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx reads the htmx request headers the web client cares about:
// whether to send a page fragment and how to redirect after a form post.
package htmx

import "net/http"

// Request headers.
const (
	HeaderRequest        = "HX-Request"
	HeaderBoosted        = "HX-Boosted"
	HeaderHistoryRestore = "HX-History-Restore-Request"
)

// HeaderRedirect makes htmx navigate the whole page to the given URL.
const HeaderRedirect = "HX-Redirect"

// Request describes how htmx issued a request.
type Request struct {
	IsHtmx           bool
	IsBoosted        bool
	IsHistoryRestore bool
}

// ParseRequest reads the htmx headers of r.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:           isTrue(r, HeaderRequest),
		IsBoosted:        isTrue(r, HeaderBoosted),
		IsHistoryRestore: isTrue(r, HeaderHistoryRestore),
	}
}

// IsPartial reports whether the request swaps a fragment into the current
// page. Boosted navigation and history restores need the full document.
func (r *Request) IsPartial() bool {
	return r.IsHtmx && !r.IsBoosted && !r.IsHistoryRestore
}

// Redirect sends the client to url after a form post: htmx gets an
// HX-Redirect so the whole page navigates, everything else a 303.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isTrue(r, HeaderRequest) {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func isTrue(r *http.Request, header string) bool {
	return r.Header.Get(header) == "true"
}
