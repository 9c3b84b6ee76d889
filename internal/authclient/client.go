// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package authclient performs the authentication calls against the API and
// keeps the credential store in step with their outcome.
package authclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/models"
)

const (
	msgRegisterFailed = "Registration failed"
	msgLoginFailed    = "Login failed"
	msgUpdateFailed   = "Failed to update profile"
	msgUploadFailed   = "Failed to upload profile picture"
)

// Transport is the subset of the API client used for auth calls.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
	DoMultipart(ctx context.Context, path, field string, file models.Upload, out any) error
	URL(path string) string
}

// Credentials stores the bearer credential.
type Credentials interface {
	Set(ctx context.Context, token string)
	Read(ctx context.Context) string
}

// Outcome classifies how a current-user lookup ended.
type Outcome int

const (
	// OutcomeNoSession means no credential was stored; nothing was fetched.
	OutcomeNoSession Outcome = iota
	// OutcomeAuthenticated means the user record was fetched.
	OutcomeAuthenticated
	// OutcomeRejected means the API refused the credential and it was cleared.
	OutcomeRejected
	// OutcomeFailed means the lookup failed for another reason and is
	// treated as no session.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "no_session"
	}
}

// Resolution is the result of ResolveCurrentUser. User is non-nil only for
// OutcomeAuthenticated; Err is set for OutcomeRejected and OutcomeFailed.
type Resolution struct {
	User    *models.User
	Err     error
	Outcome Outcome
}

// Client runs auth operations.
type Client struct {
	api   Transport
	creds Credentials
}

// New creates an auth client.
func New(api Transport, creds Credentials) *Client {
	return &Client{api: api, creds: creds}
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an account and stores the returned credential.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	body := map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}
	return c.authenticate(ctx, "register", "/users/register", body, msgRegisterFailed)
}

// Login authenticates with email and password and stores the returned credential.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	return c.authenticate(ctx, "login", "/users/login", body, msgLoginFailed)
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any, fallback string) (*models.User, error) {
	var resp authResponse
	if err := c.api.Do(ctx, http.MethodPost, path, body, &resp); err != nil {
		slog.Info(op+"_failed", "error", err)
		return nil, newAuthError(op, err, fallback)
	}
	if resp.Token == "" || resp.User == nil {
		return nil, &AuthError{Op: op, Message: fallback, Err: errors.New("response lacks user or token")}
	}

	c.creds.Set(ctx, resp.Token)
	slog.Info(op+"_success", "user_id", resp.User.ID)
	return resp.User, nil
}

// StartGoogleLogin returns the API's OAuth entry point. The caller navigates
// there; the session is established later by CompleteOAuthCallback.
func (c *Client) StartGoogleLogin() string {
	return c.api.URL("/users/auth/google")
}

// CompleteOAuthCallback stores the token handed back by the OAuth redirect
// and resolves its user. An empty token yields (nil, nil).
func (c *Client) CompleteOAuthCallback(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	c.creds.Set(ctx, token)
	return c.ResolveCurrentUser(ctx).User, nil
}

// ResolveCurrentUser fetches the user the stored credential belongs to.
// It never fails: every outcome other than OutcomeAuthenticated means
// there is no session.
func (c *Client) ResolveCurrentUser(ctx context.Context) Resolution {
	token := c.creds.Read(ctx)
	if token == "" {
		return Resolution{Outcome: OutcomeNoSession}
	}

	sub, err := SubjectFromToken(token)
	if err != nil {
		slog.Warn("session_resolve_failed", "error", err)
		return Resolution{Outcome: OutcomeFailed, Err: err}
	}

	var user models.User
	if err := c.api.Do(ctx, http.MethodGet, userPath(sub), nil, &user); err != nil {
		if apiclient.IsUnauthorized(err) {
			slog.Info("session_rejected", "user_id", sub)
			c.creds.Set(ctx, "")
			return Resolution{Outcome: OutcomeRejected, Err: err}
		}
		slog.Warn("session_resolve_failed", "user_id", sub, "error", err)
		return Resolution{Outcome: OutcomeFailed, Err: err}
	}
	return Resolution{Outcome: OutcomeAuthenticated, User: &user}
}

// Logout forgets the stored credential.
func (c *Client) Logout(ctx context.Context) {
	c.creds.Set(ctx, "")
}

// UpdateProfile sends patch to the user's resource and returns the fields
// the API sent back.
func (c *Client) UpdateProfile(ctx context.Context, userID models.ID, patch *models.UserPatch) (*models.UserPatch, error) {
	var delta models.UserPatch
	if err := c.api.Do(ctx, http.MethodPut, userPath(userID.String()), patch, &delta); err != nil {
		slog.Warn("profile_update_failed", "user_id", userID, "error", err)
		return nil, newAuthError("update_profile", err, msgUpdateFailed)
	}
	return &delta, nil
}

// UploadProfilePicture posts file as the user's picture. Size and type are
// checked by the API only.
func (c *Client) UploadProfilePicture(ctx context.Context, userID models.ID, file models.Upload) (*models.UserPatch, error) {
	var delta models.UserPatch
	path := userPath(userID.String()) + "/profile-picture"
	if err := c.api.DoMultipart(ctx, path, "profilePicture", file, &delta); err != nil {
		slog.Warn("profile_picture_upload_failed", "user_id", userID, "error", err)
		return nil, newAuthError("upload_profile_picture", err, msgUploadFailed)
	}
	return &delta, nil
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}
