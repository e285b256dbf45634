package models

import "errors"

// Sentinel errors for the donation pipeline. Every failure mode a handler has
// to distinguish maps to exactly one of these; storage and transport detail is
// wrapped around them and logged, never echoed to callers.
var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrDonationNotFound  = errors.New("donation not found")
	ErrUpdateFailed      = errors.New("failed to update donation")
	ErrDonationsDisabled = errors.New("recipient has not set up donations")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrUnauthorized      = errors.New("invalid or expired access token")
)
