package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoResponses        = errors.New("no responses submitted")
	ErrExportDisabled     = errors.New("export storage not configured")
)
