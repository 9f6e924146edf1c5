package auth

import "errors"

// Authorization errors.
var (
	// ErrNoToken indicates the request carried no session token.
	ErrNoToken = errors.New("no session token")

	// ErrInvalidToken indicates the session token failed verification.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrUserGone indicates a valid token for an account that no longer exists.
	ErrUserGone = errors.New("account not found")

	// ErrAdminOnly indicates the operation requires the administrator role.
	ErrAdminOnly = errors.New("admin resource, access denied")

	// ErrNotOwner indicates the caller does not own the resource.
	ErrNotOwner = errors.New("you are not authorized to perform this action")
)
