package mfa

import "errors"

var (
	// ErrUnauthorized means no authenticated actor was supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAccountNotFound means the actor does not resolve to an account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSecretRecordNotFound means the account has no MFA secret record.
	ErrSecretRecordNotFound = errors.New("MFA secret record not found")

	// ErrAlreadyEnabled rejects setup on an account with MFA enabled.
	ErrAlreadyEnabled = errors.New("MFA already enabled")

	// ErrNotEnabled rejects disable on an account without MFA enabled.
	ErrNotEnabled = errors.New("MFA not enabled")

	// ErrNotConfigured rejects verification before setup was initiated.
	ErrNotConfigured = errors.New("MFA not configured")

	// ErrInvalidPassword means password re-verification failed on disable.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCode means neither TOTP nor backup-code verification matched.
	ErrInvalidCode = errors.New("invalid code")

	// ErrStateCorrupted means the store holds an impossible combination
	// (MFA enabled with no secret record).
	ErrStateCorrupted = errors.New("MFA state corrupted")

	// ErrStoreUnavailable means the persistence layer is not configured;
	// admin features are disabled in this environment.
	ErrStoreUnavailable = errors.New("account store unavailable")
)
