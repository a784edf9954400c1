// Package common contains shared constants and sentinel errors used across
// vaultgate components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors surfaced by the method registry.
	ErrMismatch        = errors.New("secret and confirmation do not match")
	ErrSecretTooShort  = errors.New("secret is too short")
	ErrPatternTooShort = errors.New("pattern must connect at least 3 points")

	// Gate-level errors.
	ErrBusy              = errors.New("operation already in progress")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNoPrimarySession  = errors.New("no primary session")

	// Security question errors.
	ErrQuestionsCooldown = errors.New("security questions were changed recently")
	ErrQuestionsNotSet   = errors.New("security questions are not configured")
)
