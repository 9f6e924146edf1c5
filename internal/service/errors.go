// Package service provides business logic services for the Bronte blog
// platform.
package service

import "errors"

// Common service errors.
var (
	// Signup and signin errors. An unknown email is deliberately distinct
	// from a bad password so the client can prompt the visitor to sign up.
	ErrEmailTaken         = errors.New("email is taken")
	ErrEmailNotRegistered = errors.New("user with that email does not exist, please sign up")
	ErrBadCredentials     = errors.New("email and password do not match")
	ErrFederatedAccount   = errors.New("account uses federated login, sign in with your provider")

	// Link errors. Expired and invalid activation/reset links collapse into
	// one client-facing message.
	ErrLinkExpired = errors.New("link expired, please try again")

	// Validation errors
	ErrTitleLength      = errors.New("title must be between 3 and 160 characters")
	ErrBodyTooShort     = errors.New("content is too short, minimum 200 characters")
	ErrNoCategories     = errors.New("at least one category is required")
	ErrNoTags           = errors.New("at least one tag is required")
	ErrPhotoTooLarge    = errors.New("image should be less than 1mb in size")
	ErrNameRequired     = errors.New("name is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrMessageRequired  = errors.New("message is required")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
