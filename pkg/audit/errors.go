package audit

import "errors"

var (
	// ErrStorageUnavailable indicates the storage backend rejected the write.
	ErrStorageUnavailable = errors.New("audit storage unavailable")

	// ErrInvalidEvent indicates the event data could not be serialized.
	ErrInvalidEvent = errors.New("invalid audit event data")

	// ErrEventValidation indicates event validation failed.
	ErrEventValidation = errors.New("audit event validation failed")
)
