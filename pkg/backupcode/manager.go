package backupcode

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/treeatlas/authkit/pkg/audit"
	"github.com/treeatlas/authkit/pkg/passhash"
)

// Store is the narrow persistence capability the manager needs. Implementations
// must make MarkUsed atomic with respect to concurrent verification attempts
// for the same account: of two racing calls for one index, exactly one may
// return true.
type Store interface {
	// BackupCodeHashes returns the ordered hash list and the used indices for
	// an account, or ErrNoRecord when the account has no MFA secret record.
	BackupCodeHashes(ctx context.Context, accountID uuid.UUID) (hashes []string, used []int, err error)

	// MarkUsed records index as consumed. It reports false without error when
	// the index was already consumed (a lost race or a replay).
	MarkUsed(ctx context.Context, accountID uuid.UUID, index int) (bool, error)
}

// Result is the outcome of a verification attempt. CodesRemaining and Index
// are meaningful only when Valid is true.
type Result struct {
	Valid          bool
	CodesRemaining int
	Index          int
}

// Manager verifies one-time recovery codes against stored hashes.
type Manager struct {
	store Store
	audit audit.Logger
}

// NewManager creates a Manager. The audit logger receives a backup_code_used
// event for every consumed code; it may not be nil.
func NewManager(store Store, auditLog audit.Logger) *Manager {
	if store == nil {
		panic("backupcode: store cannot be nil")
	}
	if auditLog == nil {
		panic("backupcode: audit logger cannot be nil")
	}
	return &Manager{store: store, audit: auditLog}
}

// VerifyCode checks a submitted code against the account's unused hashes,
// scanning from index 0 upward. On the first match the index is consumed
// atomically, so resubmitting the identical plaintext can never validate
// twice. No match leaves state untouched and returns Valid=false with a nil
// error: a wrong guess is an expected outcome, not a failure.
//
// Per-candidate Argon2id verification dominates the cost of the scan, which
// is the accepted timing posture here; the scan order itself is fixed.
func (m *Manager) VerifyCode(ctx context.Context, accountID uuid.UUID, code string) (Result, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return Result{}, nil
	}

	hashes, used, err := m.store.BackupCodeHashes(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return Result{}, nil
		}
		return Result{}, err
	}
	if len(hashes) == 0 {
		return Result{}, nil
	}

	usedSet := make(map[int]struct{}, len(used))
	for _, idx := range used {
		usedSet[idx] = struct{}{}
	}

	for i, hash := range hashes {
		if _, ok := usedSet[i]; ok {
			continue
		}
		// Malformed stored hashes verify as false and the scan moves on.
		if !passhash.Verify(hash, normalized) {
			continue
		}

		consumed, err := m.store.MarkUsed(ctx, accountID, i)
		if err != nil {
			return Result{}, err
		}
		if !consumed {
			// A concurrent attempt consumed this index first; the codes are
			// unique per account, so there is nothing further to match.
			return Result{}, nil
		}

		remaining := len(hashes) - len(used) - 1
		if err := m.audit.Log(ctx, "backup_code_used",
			audit.WithActor(accountID),
			audit.WithMetadata("code_index", i),
			audit.WithMetadata("codes_remaining", remaining),
		); err != nil {
			return Result{}, err
		}

		return Result{Valid: true, CodesRemaining: remaining, Index: i}, nil
	}

	return Result{}, nil
}

// RemainingCount returns how many unused codes the account still holds.
// An account without a secret record has zero.
func (m *Manager) RemainingCount(ctx context.Context, accountID uuid.UUID) (int, error) {
	hashes, used, err := m.store.BackupCodeHashes(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return 0, nil
		}
		return 0, err
	}
	return len(hashes) - len(used), nil
}
