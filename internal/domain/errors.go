package domain

import "errors"

// Common errors
var (
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials folds unknown identity, missing password hash and
	// wrong password into a single failure so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers expired, malformed and badly signed tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrNoOrganization      = errors.New("user is not a member of any organization")
	ErrInvalidOrganization = errors.New("user is not a member of the specified organization")
	ErrNotMember           = errors.New("user is not a member of the specified organization")
)
