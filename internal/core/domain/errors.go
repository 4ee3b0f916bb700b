package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrTokenExpired         = errors.New("session token expired")
	ErrAccountInactive      = errors.New("account inactive")
	ErrOrganizationRequired = errors.New("organization required")
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrKeyNotFound          = errors.New("key not found")
	ErrNoUpstream           = errors.New("no upstream API attached")
)
