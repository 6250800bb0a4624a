package passhash

import "errors"

var (
	ErrInvalidParams = errors.New("argon2id params must be fully configured")
	ErrFailedToHash  = errors.New("failed to hash password")
	ErrMalformedHash = errors.New("malformed argon2id hash string")
)
