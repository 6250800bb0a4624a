package mfa

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/treeatlas/authkit/pkg/pg"
)

// PostgresStore is the production AccountStore backed by the accounts and
// mfa_secrets tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an established connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("mfa: pool cannot be nil")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account Account
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, mfa_enabled
		FROM accounts
		WHERE id = $1`, id,
	).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.MFAEnabled)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (s *PostgresStore) GetSecretRecord(ctx context.Context, accountID uuid.UUID) (*SecretRecord, error) {
	var (
		record      SecretRecord
		usedIndices []int32
	)
	err := s.pool.QueryRow(ctx, `
		SELECT account_id, encrypted_seed, backup_code_hashes, used_indices, created_at, updated_at
		FROM mfa_secrets
		WHERE account_id = $1`, accountID,
	).Scan(&record.AccountID, &record.EncryptedSeed, &record.BackupCodeHashes, &usedIndices, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSecretRecordNotFound
		}
		return nil, fmt.Errorf("get secret record: %w", err)
	}

	record.UsedIndices = make([]int, len(usedIndices))
	for i, idx := range usedIndices {
		record.UsedIndices[i] = int(idx)
	}
	return &record, nil
}

func (s *PostgresStore) UpsertSecretRecord(ctx context.Context, record *SecretRecord) error {
	usedIndices := make([]int32, len(record.UsedIndices))
	for i, idx := range record.UsedIndices {
		usedIndices[i] = int32(idx)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO mfa_secrets (account_id, encrypted_seed, backup_code_hashes, used_indices, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id) DO UPDATE SET
			encrypted_seed = EXCLUDED.encrypted_seed,
			backup_code_hashes = EXCLUDED.backup_code_hashes,
			used_indices = EXCLUDED.used_indices,
			updated_at = EXCLUDED.updated_at`,
		record.AccountID, record.EncryptedSeed, record.BackupCodeHashes, usedIndices, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("upsert secret record: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetMFAEnabled(ctx context.Context, accountID uuid.UUID, enabled bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET mfa_enabled = $2, updated_at = now()
		WHERE id = $1`, accountID, enabled,
	)
	if err != nil {
		return fmt.Errorf("set mfa enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DisableMFA clears the flag and removes the secret record in one
// transaction. Partial disable states are impossible.
func (s *PostgresStore) DisableMFA(ctx context.Context, accountID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin disable tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET mfa_enabled = FALSE, updated_at = now()
		WHERE id = $1`, accountID,
	)
	if err != nil {
		return fmt.Errorf("disable mfa flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM mfa_secrets WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete secret record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit disable tx: %w", err)
	}
	return nil
}

// MarkBackupCodeUsed appends the index to used_indices only when absent.
// The containment guard in the WHERE clause makes concurrent submissions of
// the same code race on a single row update; exactly one wins.
func (s *PostgresStore) MarkBackupCodeUsed(ctx context.Context, accountID uuid.UUID, index int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE mfa_secrets
		SET used_indices = array_append(used_indices, $2), updated_at = now()
		WHERE account_id = $1 AND NOT (used_indices @> ARRAY[$2::int])`,
		accountID, int32(index),
	)
	if err != nil {
		return false, fmt.Errorf("mark backup code used: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Distinguish "already used" from "no record at all".
	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM mfa_secrets WHERE account_id = $1)`, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check secret record: %w", err)
	}
	if !exists {
		return false, ErrSecretRecordNotFound
	}
	return false, nil
}
