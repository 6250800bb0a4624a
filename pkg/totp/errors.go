package totp

import "errors"

var (
	ErrFailedToGenerateSeed = errors.New("failed to generate TOTP seed")
	ErrMissingSeed          = errors.New("missing TOTP seed")
	ErrInvalidSeed          = errors.New("invalid TOTP seed")
	ErrInvalidCodeFormat    = errors.New("invalid one-time code format")
	ErrMissingAccountName   = errors.New("missing account name")
	ErrMissingIssuer        = errors.New("missing issuer")
)
