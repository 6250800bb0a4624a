package mfa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/treeatlas/authkit/pkg/backupcode"
)

// AccountStore is the persistence capability the orchestrator depends on.
// It is injected at construction; there is no package-level default. Three
// implementations ship with this package: PostgresStore, MemoryStore, and
// DisabledStore for environments without a configured database.
type AccountStore interface {
	FindAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetSecretRecord returns ErrSecretRecordNotFound when none exists.
	GetSecretRecord(ctx context.Context, accountID uuid.UUID) (*SecretRecord, error)

	// UpsertSecretRecord creates or replaces the account's secret record.
	// Replacement resets the used-index set along with the rest of the record.
	UpsertSecretRecord(ctx context.Context, record *SecretRecord) error

	// SetMFAEnabled flips the account flag.
	SetMFAEnabled(ctx context.Context, accountID uuid.UUID, enabled bool) error

	// DisableMFA clears the flag and deletes the secret record as one atomic
	// unit: both happen or neither does.
	DisableMFA(ctx context.Context, accountID uuid.UUID) error

	// MarkBackupCodeUsed atomically records a backup-code index as consumed,
	// reporting false when it already was. Two concurrent calls for the same
	// index must not both return true.
	MarkBackupCodeUsed(ctx context.Context, accountID uuid.UUID, index int) (bool, error)
}

// codeStore adapts an AccountStore to the narrow backupcode.Store capability.
type codeStore struct {
	store AccountStore
}

func (s codeStore) BackupCodeHashes(ctx context.Context, accountID uuid.UUID) ([]string, []int, error) {
	record, err := s.store.GetSecretRecord(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrSecretRecordNotFound) {
			return nil, nil, backupcode.ErrNoRecord
		}
		return nil, nil, err
	}
	return record.BackupCodeHashes, record.UsedIndices, nil
}

func (s codeStore) MarkUsed(ctx context.Context, accountID uuid.UUID, index int) (bool, error) {
	return s.store.MarkBackupCodeUsed(ctx, accountID, index)
}
