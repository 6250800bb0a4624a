package mfa

import (
	"time"

	"github.com/google/uuid"
)

// Account is the orchestrator's view of an administrative account. The
// orchestrator is the sole writer of MFAEnabled; everything else is owned by
// the account management layer.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Argon2id PHC string, passhash.Interactive profile
	MFAEnabled   bool
}

// SecretRecord holds an account's MFA secret material at rest: the
// AES-GCM-encrypted TOTP seed and the ordered Argon2id hashes of the backup
// codes. UsedIndices is always a subset of [0, len(BackupCodeHashes)) and
// only ever grows; a consumed index is never reclaimed.
type SecretRecord struct {
	AccountID        uuid.UUID
	EncryptedSeed    string
	BackupCodeHashes []string
	UsedIndices      []int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// State is the explicit MFA state of an account, derived from the enabled
// flag and the presence of a secret record. Modeling it as a tagged value
// keeps the one illegal combination (enabled without a record) out of the
// type: stateOf reports it as corruption instead of returning a state.
type State string

const (
	StateNoMFA               State = "no_mfa"
	StatePendingVerification State = "pending_verification"
	StateEnabled             State = "enabled"
)

// stateOf derives the account's MFA state. hasRecord reflects whether a
// secret record exists for the account.
func stateOf(account *Account, hasRecord bool) (State, error) {
	switch {
	case account.MFAEnabled && hasRecord:
		return StateEnabled, nil
	case account.MFAEnabled && !hasRecord:
		return "", ErrStateCorrupted
	case hasRecord:
		return StatePendingVerification, nil
	default:
		return StateNoMFA, nil
	}
}

// RequestMeta carries the client network context of the triggering request,
// recorded on every audit event.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Method identifies which credential satisfied a verification.
type Method string

const (
	MethodTOTP       Method = "totp"
	MethodBackupCode Method = "backup_code"
)

// SetupResult is returned from Setup exactly once per enrollment. The
// plaintext seed and backup codes exist nowhere else and are not retrievable
// again; callers must show them to the user immediately.
type SetupResult struct {
	Seed          string
	ProvisionURI  string
	QRCodeDataURL string
	BackupCodes   []string
}

// VerifyResult reports a successful verification. CodesRemaining is set only
// when a backup code was consumed.
type VerifyResult struct {
	Method         Method
	MFAEnabled     bool
	CodesRemaining *int
}
