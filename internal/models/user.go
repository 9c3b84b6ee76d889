// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"io"
	"time"
)

// User is the authenticated identity as returned by the API.
type User struct {
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	ID             ID        `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Provider       string    `json:"provider,omitempty"`
}

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// UserPatch carries a partial set of user fields.
// Nil fields are absent and leave the corresponding User field untouched.
type UserPatch struct {
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	Email          *string    `json:"email,omitempty"`
	DisplayName    *string    `json:"displayName,omitempty"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
	Provider       *string    `json:"provider,omitempty"`
}

// Apply merges the patch into the user. Fields present in the patch win.
func (u *User) Apply(p *UserPatch) {
	if u == nil || p == nil {
		return
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	if p.Provider != nil {
		u.Provider = *p.Provider
	}
	if p.CreatedAt != nil {
		u.CreatedAt = *p.CreatedAt
	}
}

// IsEmpty reports whether the patch sets no field.
func (p *UserPatch) IsEmpty() bool {
	return p == nil || (p.Email == nil && p.DisplayName == nil && p.ProfilePicture == nil &&
		p.Provider == nil && p.CreatedAt == nil)
}

// Upload is a file handed to the API as a multipart part.
type Upload struct {
	Body        io.Reader
	Filename    string
	ContentType string
}
