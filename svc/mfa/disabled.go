package mfa

import (
	"context"

	"github.com/google/uuid"
)

// DisabledStore is the AccountStore used when no database is configured.
// Every operation fails with ErrStoreUnavailable so callers can surface a
// clear "feature disabled" response instead of a nil-pointer crash.
type DisabledStore struct{}

// NewDisabledStore creates a store whose every operation fails.
func NewDisabledStore() DisabledStore { return DisabledStore{} }

func (DisabledStore) FindAccount(context.Context, uuid.UUID) (*Account, error) {
	return nil, ErrStoreUnavailable
}

func (DisabledStore) GetSecretRecord(context.Context, uuid.UUID) (*SecretRecord, error) {
	return nil, ErrStoreUnavailable
}

func (DisabledStore) UpsertSecretRecord(context.Context, *SecretRecord) error {
	return ErrStoreUnavailable
}

func (DisabledStore) SetMFAEnabled(context.Context, uuid.UUID, bool) error {
	return ErrStoreUnavailable
}

func (DisabledStore) DisableMFA(context.Context, uuid.UUID) error {
	return ErrStoreUnavailable
}

func (DisabledStore) MarkBackupCodeUsed(context.Context, uuid.UUID, int) (bool, error) {
	return false, ErrStoreUnavailable
}
