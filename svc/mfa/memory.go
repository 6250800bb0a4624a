package mfa

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory AccountStore for tests and single-process
// development environments. All operations are safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]Account
	records  map[uuid.UUID]SecretRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]Account),
		records:  make(map[uuid.UUID]SecretRecord),
	}
}

// PutAccount inserts or replaces an account. Test seeding helper.
func (s *MemoryStore) PutAccount(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

func (s *MemoryStore) FindAccount(_ context.Context, id uuid.UUID) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (s *MemoryStore) GetSecretRecord(_ context.Context, accountID uuid.UUID) (*SecretRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[accountID]
	if !ok {
		return nil, ErrSecretRecordNotFound
	}
	// Copy slices so callers cannot mutate stored state.
	record.BackupCodeHashes = slices.Clone(record.BackupCodeHashes)
	record.UsedIndices = slices.Clone(record.UsedIndices)
	return &record, nil
}

func (s *MemoryStore) UpsertSecretRecord(_ context.Context, record *SecretRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[record.AccountID]; !ok {
		return ErrAccountNotFound
	}
	stored := *record
	stored.BackupCodeHashes = slices.Clone(record.BackupCodeHashes)
	stored.UsedIndices = slices.Clone(record.UsedIndices)
	s.records[record.AccountID] = stored
	return nil
}

func (s *MemoryStore) SetMFAEnabled(_ context.Context, accountID uuid.UUID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.MFAEnabled = enabled
	s.accounts[accountID] = account
	return nil
}

func (s *MemoryStore) DisableMFA(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.MFAEnabled = false
	s.accounts[accountID] = account
	delete(s.records, accountID)
	return nil
}

func (s *MemoryStore) MarkBackupCodeUsed(_ context.Context, accountID uuid.UUID, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[accountID]
	if !ok {
		return false, ErrSecretRecordNotFound
	}
	if index < 0 || index >= len(record.BackupCodeHashes) {
		return false, nil
	}
	if slices.Contains(record.UsedIndices, index) {
		return false, nil
	}
	record.UsedIndices = append(slices.Clone(record.UsedIndices), index)
	record.UpdatedAt = time.Now()
	s.records[accountID] = record
	return true, nil
}
