// Package domain contains the core business entities for the Bronte blog
// platform. These are pure Go structs with no external dependencies,
// representing the fundamental concepts of the blogging system.
package domain

import (
	"strings"
	"time"
)

// Role enumerates the authorization roles a user can hold.
type Role int

const (
	// RoleStandard is the default role for every new account.
	RoleStandard Role = 0

	// RoleAdministrator grants access to admin-only operations
	// (category/tag management, publishing on the admin routes).
	RoleAdministrator Role = 1
)

// User represents a registered account.
// Users author blog posts and own their public profile.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"_id"`

	// Username is the unique, generated handle (lowercase, at most 32 chars).
	Username string `json:"username"`

	// Name is the display name shown on posts and profiles.
	Name string `json:"name"`

	// Email is the unique email address, stored lowercase.
	Email string `json:"email"`

	// Profile is the public profile URL synthesized at signup.
	Profile string `json:"profile"`

	// HashedPassword is the salted digest of the password.
	// Never exposed in API responses; empty for federated-only accounts.
	HashedPassword string `json:"-"`

	// Salt is the per-user random salt. Generated once at account creation
	// and immutable thereafter; replacing it without re-deriving the digest
	// invalidates the stored credential.
	Salt string `json:"-"`

	// About is an optional short bio.
	About string `json:"about,omitempty"`

	// Role is the authorization role.
	Role Role `json:"role"`

	// Photo is the optional profile photo blob.
	Photo []byte `json:"-"`

	// PhotoContentType is the MIME type of Photo.
	PhotoContentType string `json:"-"`

	// ResetPasswordLink holds the currently outstanding password reset
	// token. Empty when no reset is pending; cleared when a reset completes
	// so a token can never be replayed.
	ResetPasswordLink string `json:"-"`

	// Federated marks accounts provisioned through a third-party identity
	// provider. Federated-only accounts carry no password digest and cannot
	// sign in with a password.
	Federated bool `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"modified"`
}

// NewUser creates a User with default values.
// Email is normalized to lowercase; credentials are supplied by the caller
// (see crypto.CreateCredential — deriving them is never an implicit side
// effect of assignment).
func NewUser(username, name, email, profile, salt, hashedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		Username:       strings.ToLower(username),
		Name:           name,
		Email:          strings.ToLower(email),
		Profile:        profile,
		Salt:           salt,
		HashedPassword: hashedPassword,
		Role:           RoleStandard,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAdmin returns true if the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdministrator
}

// CanPasswordLogin returns true if the account carries a password credential.
// Federated-only accounts cannot authenticate with a password.
func (u *User) CanPasswordLogin() bool {
	return !u.Federated && u.HashedPassword != ""
}

// PublicView returns a copy stripped of credential and photo material,
// safe to embed in API responses.
func (u *User) PublicView() *User {
	v := *u
	v.HashedPassword = ""
	v.Salt = ""
	v.ResetPasswordLink = ""
	v.Photo = nil
	v.PhotoContentType = ""
	return &v
}

// Author is the subset of user fields attached to blog posts in list and
// read responses.
type Author struct {
	ID       int64  `json:"_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Profile  string `json:"profile,omitempty"`
}

// AuthorView returns the author projection of the user.
func (u *User) AuthorView() *Author {
	return &Author{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Profile:  u.Profile,
	}
}
