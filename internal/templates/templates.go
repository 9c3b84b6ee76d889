// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages of the web client.
//
// Pages are html/template files embedded into the binary. Each page is parsed
// together with the layout and the shared partials and exposed as a
// templ.Component, so handlers render them like any other component.
package templates

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/tickets"
	"codeberg.org/dailygrind/web/internal/toast"
	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed html/*.html
var files embed.FS

// richText allows the inline formatting users paste into descriptions.
var richText = bluemonday.UGCPolicy()

var (
	pages    = map[string]*template.Template{}
	partials = template.Must(template.ParseFS(files, "html/partials.html"))
)

func init() {
	for _, name := range []string{
		"home", "static_page", "support", "login", "register", "waiting",
		"dashboard", "profile", "tickets", "error",
	} {
		pages[name] = template.Must(template.ParseFS(files,
			"html/layout.html", "html/partials.html", "html/"+name+".html"))
	}
}

// View is the value every page template executes against.
// Data holds the page specific payload.
type View struct {
	ctx  context.Context //nolint:containedctx // templates need request scoped helpers
	Data any
}

func (v *View) T(id string) string { return T(v.ctx, id) }

// TData translates id with alternating key/value pairs as template data.
func (v *View) TData(id string, kv ...any) string {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			data[k] = kv[i+1]
		}
	}
	return TData(v.ctx, id, data)
}

func (v *View) TPlural(id string, count int) string { return TPlural(v.ctx, id, count) }
func (v *View) Locale() string                      { return Locale(v.ctx) }
func (v *View) CSRFToken() string                   { return CSRFToken(v.ctx) }
func (v *View) CSSPath() string                     { return CSSPath(v.ctx) }
func (v *View) JSPath() string                      { return JSPath(v.ctx) }
func (v *View) User() *models.User                  { return GetUser(v.ctx) }
func (v *View) Toasts() []toast.Toast               { return Toasts(v.ctx) }

// RichText renders user supplied text with safe markup kept and the rest
// removed.
func (v *View) RichText(s string) template.HTML {
	return template.HTML(richText.Sanitize(s)) //nolint:gosec // sanitized above
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}
		root := "layout"
		if IsPartial(ctx) {
			root = "content"
		}
		return t.ExecuteTemplate(w, root, &View{ctx: ctx, Data: data})
	})
}

// StaticPage holds the message ids of a text-only page.
type StaticPage struct {
	Title string
	Body  string
}

// LoginForm is the state of the login form.
type LoginForm struct {
	Email string
	Error string
}

// RegisterForm is the state of the registration form.
type RegisterForm struct {
	Email       string
	DisplayName string
	Error       string
}

// SupportForm is the state of the support form.
type SupportForm struct {
	Email   string
	Message string
	Error   string
	Sent    bool
}

// DashboardData feeds the dashboard.
type DashboardData struct {
	Mine  []tickets.Row
	Error string
	Stats tickets.Stats
}

// ProfileData feeds the profile page.
type ProfileData struct {
	Error string
}

// TicketsData feeds the ticket list.
type TicketsData struct {
	Catalog *models.Catalog
	Rows    []tickets.Row
	Form    models.TicketInput
	State   string
	Error   string
	Mine    bool
}

// ErrorData feeds the error page.
type ErrorData struct {
	Title   string
	Message string
	Code    int
}

func Home() templ.Component { return page("home", nil) }

func About() templ.Component {
	return page("static_page", StaticPage{Title: "about_title", Body: "about_body"})
}

func Features() templ.Component {
	return page("static_page", StaticPage{Title: "features_title", Body: "features_body"})
}

func Pricing() templ.Component {
	return page("static_page", StaticPage{Title: "pricing_title", Body: "pricing_body"})
}

func Blog() templ.Component {
	return page("static_page", StaticPage{Title: "blog_title", Body: "blog_body"})
}

func Support(form SupportForm) templ.Component     { return page("support", form) }
func Login(form LoginForm) templ.Component         { return page("login", form) }
func Register(form RegisterForm) templ.Component   { return page("register", form) }
func Dashboard(data DashboardData) templ.Component { return page("dashboard", data) }
func Profile(data ProfileData) templ.Component     { return page("profile", data) }
func Tickets(data TicketsData) templ.Component     { return page("tickets", data) }

// Waiting is shown while the session is still being resolved.
func Waiting() templ.Component { return page("waiting", nil) }

// Error renders an error page.
func Error(code int, title, message string) templ.Component {
	return page("error", ErrorData{Code: code, Title: title, Message: message})
}

// ToastHTML renders a toast as the fragment the browser inserts on a
// toast-add event.
func ToastHTML(t toast.Toast) string {
	var buf bytes.Buffer
	if err := partials.ExecuteTemplate(&buf, "toast", t); err != nil {
		return template.HTMLEscapeString(t.Message)
	}
	return buf.String()
}
