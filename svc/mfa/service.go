package mfa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/treeatlas/authkit/pkg/audit"
	"github.com/treeatlas/authkit/pkg/backupcode"
	"github.com/treeatlas/authkit/pkg/logger"
	"github.com/treeatlas/authkit/pkg/mfacrypto"
	"github.com/treeatlas/authkit/pkg/passhash"
	"github.com/treeatlas/authkit/pkg/qrcode"
	"github.com/treeatlas/authkit/pkg/totp"
)

// Audit event kinds emitted by the orchestrator.
const (
	EventSetupInitiated     = "mfa_setup_initiated"
	EventEnabled            = "mfa_enabled"
	EventDisabled           = "mfa_disabled"
	EventDisableFailed      = "mfa_disable_failed"
	EventVerificationFailed = "mfa_verification_failed"
	EventBackupCodeUsed     = "mfa_backup_code_used"
)

const defaultIssuer = "Costa Rica Tree Atlas"

// Service orchestrates the MFA lifecycle of an account: setup, verification
// and enable, and disable. Every transition, successful or rejected, appends
// exactly one audit record; plaintext secrets never reach logs or storage.
type Service struct {
	store  AccountStore
	audit  audit.Logger
	cipher *mfacrypto.Cipher
	codes  *backupcode.Manager

	issuer     string
	codeCount  int
	hashParams passhash.Params
	log        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the issuer label shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithLogger sets the structured logger for operational diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBackupCodeCount overrides the number of codes issued per enrollment.
func WithBackupCodeCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.codeCount = count
		}
	}
}

// WithBackupCodeHashParams overrides the Argon2id cost for backup-code
// hashing. Verification is unaffected since parameters are read back from
// each stored hash. Intended for tests.
func WithBackupCodeHashParams(params passhash.Params) Option {
	return func(s *Service) {
		s.hashParams = params
	}
}

// New creates a Service. All dependencies are explicit; none may be nil.
func New(store AccountStore, auditLog audit.Logger, cipher *mfacrypto.Cipher, opts ...Option) *Service {
	if store == nil {
		panic("mfa: store cannot be nil")
	}
	if auditLog == nil {
		panic("mfa: audit logger cannot be nil")
	}
	if cipher == nil {
		panic("mfa: cipher cannot be nil")
	}

	s := &Service{
		store:      store,
		audit:      auditLog,
		cipher:     cipher,
		issuer:     defaultIssuer,
		codeCount:  backupcode.DefaultCount,
		hashParams: passhash.BackupCode,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.codes = backupcode.NewManager(codeStore{store: store}, auditLog)
	return s
}

// State reports the account's current MFA state.
func (s *Service) State(ctx context.Context, accountID uuid.UUID) (State, error) {
	account, err := s.store.FindAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	hasRecord, err := s.hasSecretRecord(ctx, accountID)
	if err != nil {
		return "", err
	}
	return stateOf(account, hasRecord)
}

// Setup initiates MFA enrollment for an authenticated account. It generates
// a fresh seed and backup codes, persists only the sealed seed and code
// hashes (replacing any prior unverified record and resetting its used-index
// set), and returns the plaintext material exactly once. Fails with
// ErrAlreadyEnabled when MFA is active; re-initiating a pending enrollment
// is allowed and issues entirely new material.
func (s *Service) Setup(ctx context.Context, actorID uuid.UUID, meta RequestMeta) (*SetupResult, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	account, err := s.store.FindAccount(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if account.MFAEnabled {
		return nil, ErrAlreadyEnabled
	}

	seed, err := totp.GenerateSeed()
	if err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(totp.URIParams{
		Seed:        seed,
		AccountName: account.Email,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.DataURL(uri, qrcode.DefaultSize)
	if err != nil {
		return nil, err
	}

	codes, err := backupcode.Generate(s.codeCount)
	if err != nil {
		return nil, err
	}
	hashes, err := backupcode.HashCodesWithParams(codes, s.hashParams)
	if err != nil {
		return nil, err
	}

	encryptedSeed, err := s.cipher.EncryptSecret(seed)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.store.UpsertSecretRecord(ctx, &SecretRecord{
		AccountID:        account.ID,
		EncryptedSeed:    encryptedSeed,
		BackupCodeHashes: hashes,
		UsedIndices:      []int{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, EventSetupInitiated,
		audit.WithActor(account.ID),
		audit.WithRequestMeta(meta.IP, meta.UserAgent),
	); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "MFA setup initiated",
		logger.AccountID(account.ID.String()),
		logger.Component("mfa"),
	)

	return &SetupResult{
		Seed:          seed,
		ProvisionURI:  uri,
		QRCodeDataURL: qr,
		BackupCodes:   codes,
	}, nil
}

// VerifyAndEnable checks a submitted one-time code against the pending (or
// active) enrollment and flips the account to enabled on success. Six-digit
// submissions are tried as TOTP codes with a one-step drift window; codes
// shaped like XXXX-XXXX-XXXX fall through to single-use backup-code
// verification. A failed attempt appends one mfa_verification_failed record
// and returns ErrInvalidCode.
func (s *Service) VerifyAndEnable(ctx context.Context, actorID uuid.UUID, code string, meta RequestMeta) (*VerifyResult, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	account, err := s.store.FindAccount(ctx, actorID)
	if err != nil {
		return nil, err
	}

	record, err := s.store.GetSecretRecord(ctx, account.ID)
	if err != nil {
		if errors.Is(err, ErrSecretRecordNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}

	if totp.IsCodeFormat(code) {
		seed, err := s.cipher.DecryptSecret(record.EncryptedSeed)
		if err != nil {
			// Tampered or corrupt seed material: operational error, never a
			// silent verification failure.
			return nil, fmt.Errorf("cannot recover TOTP seed: %w", err)
		}

		ok, err := totp.ValidateCode(seed, code)
		if err != nil {
			return nil, err
		}
		if ok {
			if !account.MFAEnabled {
				if err := s.store.SetMFAEnabled(ctx, account.ID, true); err != nil {
					return nil, err
				}
			}
			if err := s.audit.Log(ctx, EventEnabled,
				audit.WithActor(account.ID),
				audit.WithRequestMeta(meta.IP, meta.UserAgent),
				audit.WithMetadata("method", string(MethodTOTP)),
			); err != nil {
				return nil, err
			}
			return &VerifyResult{Method: MethodTOTP, MFAEnabled: true}, nil
		}
	} else if backupcode.IsCodeFormat(code) {
		result, err := s.codes.VerifyCode(ctx, account.ID, code)
		if err != nil {
			return nil, err
		}
		if result.Valid {
			wasEnabled := account.MFAEnabled
			if !wasEnabled {
				if err := s.store.SetMFAEnabled(ctx, account.ID, true); err != nil {
					return nil, err
				}
			}

			kind := EventEnabled
			if wasEnabled {
				kind = EventBackupCodeUsed
			}
			if err := s.audit.Log(ctx, kind,
				audit.WithActor(account.ID),
				audit.WithRequestMeta(meta.IP, meta.UserAgent),
				audit.WithMetadata("method", string(MethodBackupCode)),
				audit.WithMetadata("code_index", result.Index),
				audit.WithMetadata("codes_remaining", result.CodesRemaining),
			); err != nil {
				return nil, err
			}

			remaining := result.CodesRemaining
			return &VerifyResult{Method: MethodBackupCode, MFAEnabled: true, CodesRemaining: &remaining}, nil
		}
	}

	if err := s.audit.Log(ctx, EventVerificationFailed,
		audit.WithActor(account.ID),
		audit.WithRequestMeta(meta.IP, meta.UserAgent),
		audit.WithMetadata("code_format", guessCodeFormat(code)),
	); err != nil {
		return nil, err
	}
	return nil, ErrInvalidCode
}

// Disable turns MFA off after re-verifying the account password. The flag
// flip and secret-record deletion are one atomic store operation. A wrong
// password appends one mfa_disable_failed record and returns
// ErrInvalidPassword without touching state.
func (s *Service) Disable(ctx context.Context, actorID uuid.UUID, password string, meta RequestMeta) error {
	if actorID == uuid.Nil {
		return ErrUnauthorized
	}

	account, err := s.store.FindAccount(ctx, actorID)
	if err != nil {
		return err
	}
	if !account.MFAEnabled {
		return ErrNotEnabled
	}

	if !passhash.Verify(account.PasswordHash, password) {
		if err := s.audit.Log(ctx, EventDisableFailed,
			audit.WithActor(account.ID),
			audit.WithRequestMeta(meta.IP, meta.UserAgent),
			audit.WithMetadata("reason", "invalid_password"),
		); err != nil {
			return err
		}
		return ErrInvalidPassword
	}

	if err := s.store.DisableMFA(ctx, account.ID); err != nil {
		return err
	}

	if err := s.audit.Log(ctx, EventDisabled,
		audit.WithActor(account.ID),
		audit.WithRequestMeta(meta.IP, meta.UserAgent),
	); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "MFA disabled",
		logger.AccountID(account.ID.String()),
		logger.Component("mfa"),
	)
	return nil
}

// RemainingBackupCodes reports how many unused backup codes the account holds.
func (s *Service) RemainingBackupCodes(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.codes.RemainingCount(ctx, accountID)
}

func (s *Service) hasSecretRecord(ctx context.Context, accountID uuid.UUID) (bool, error) {
	_, err := s.store.GetSecretRecord(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrSecretRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// guessCodeFormat classifies a failed submission for audit metadata without
// recording the submission itself.
func guessCodeFormat(code string) string {
	switch {
	case totp.IsCodeFormat(code):
		return string(MethodTOTP)
	case backupcode.IsCodeFormat(code):
		return string(MethodBackupCode)
	default:
		return "unknown"
	}
}
