package backupcode

import "errors"

var (
	ErrInvalidCount     = errors.New("backup code count must be greater than 0")
	ErrFailedToGenerate = errors.New("failed to generate backup code")
	ErrFailedToHash     = errors.New("failed to hash backup code")

	// ErrNoRecord is returned by Store implementations when the account has
	// no MFA secret record.
	ErrNoRecord = errors.New("no MFA secret record for account")
)
