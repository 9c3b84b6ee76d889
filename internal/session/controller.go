// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session owns the current-user state of one application root:
// a browser request in the web server, or the process in the CLI.
package session

import (
	"context"
	"sync"

	"codeberg.org/dailygrind/web/internal/authclient"
	"codeberg.org/dailygrind/web/internal/models"
)

// Authenticator is the auth client as seen by the controller.
type Authenticator interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	StartGoogleLogin() string
	CompleteOAuthCallback(ctx context.Context, token string) (*models.User, error)
	ResolveCurrentUser(ctx context.Context) authclient.Resolution
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, userID models.ID, patch *models.UserPatch) (*models.UserPatch, error)
	UploadProfilePicture(ctx context.Context, userID models.ID, file models.Upload) (*models.UserPatch, error)
}

// State is a snapshot of the controller state.
type State struct {
	User    *models.User
	Error   string
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Controller holds user, loading and error state.
type Controller struct {
	auth       Authenticator
	user       *models.User
	ready      chan struct{}
	errMessage string
	resolution authclient.Resolution
	initOnce   sync.Once
	mu         sync.RWMutex
	loading    bool
}

// New creates a controller in the loading state. Call Init to resolve the user.
func New(auth Authenticator) *Controller {
	return &Controller{
		auth:    auth,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Init resolves the current user once. Concurrent and later calls wait for
// the first one and return its resolution.
func (c *Controller) Init(ctx context.Context) authclient.Resolution {
	c.initOnce.Do(func() {
		res := c.auth.ResolveCurrentUser(ctx)

		c.mu.Lock()
		c.resolution = res
		c.user = res.User
		c.loading = false
		c.mu.Unlock()

		close(c.ready)
	})

	<-c.ready
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolution
}

// Ready is closed once initialization has settled.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		User:    c.user.Clone(),
		Loading: c.loading,
		Error:   c.errMessage,
	}
}

// User returns a copy of the signed-in user, or nil.
func (c *Controller) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.Clone()
}

// Register creates an account and signs it in.
func (c *Controller) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	c.clearError()
	user, err := c.auth.Register(ctx, email, password, displayName)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

// Login signs in with email and password.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	c.clearError()
	user, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

// LoginWithGoogle returns the URL the caller must navigate to. State is not
// touched; HandleAuthCallback completes the sign-in.
func (c *Controller) LoginWithGoogle() string {
	c.clearError()
	return c.auth.StartGoogleLogin()
}

// HandleAuthCallback finishes an OAuth sign-in with the returned token.
func (c *Controller) HandleAuthCallback(ctx context.Context, token string) (*models.User, error) {
	c.clearError()
	user, err := c.auth.CompleteOAuthCallback(ctx, token)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

// LogOut forgets the credential and the user.
func (c *Controller) LogOut(ctx context.Context) {
	c.clearError()
	c.auth.Logout(ctx)
	c.setUser(nil)
}

// UpdateProfile sends patch for the signed-in user and merges the fields the
// API returns. It does nothing when nobody is signed in.
func (c *Controller) UpdateProfile(ctx context.Context, patch *models.UserPatch) (*models.UserPatch, error) {
	c.clearError()
	id, ok := c.userID()
	if !ok {
		return nil, nil
	}

	delta, err := c.auth.UpdateProfile(ctx, id, patch)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.merge(delta)
	return delta, nil
}

// UploadProfilePicture uploads a new picture for the signed-in user and
// merges the fields the API returns. It does nothing when nobody is signed in.
func (c *Controller) UploadProfilePicture(ctx context.Context, file models.Upload) (*models.UserPatch, error) {
	c.clearError()
	id, ok := c.userID()
	if !ok {
		return nil, nil
	}

	delta, err := c.auth.UploadProfilePicture(ctx, id, file)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.merge(delta)
	return delta, nil
}

func (c *Controller) userID() (models.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return "", false
	}
	return c.user.ID, true
}

func (c *Controller) setUser(user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user.Clone()
}

func (c *Controller) merge(delta *models.UserPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return
	}
	merged := c.user.Clone()
	merged.Apply(delta)
	c.user = merged
}

func (c *Controller) clearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMessage = ""
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMessage = authclient.ErrorMessage(err)
}
