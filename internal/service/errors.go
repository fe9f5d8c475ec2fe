package service

import "errors"

// Domain error taxonomy. Handlers classify these with errors.Is and map
// them to status codes; anything else is a server fault.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailAlreadyUsed   = errors.New("email_already_used")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrTokenReused        = errors.New("token_reuse_detected")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrWeakPassword       = errors.New("weak_password")
)
