package mfa_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treeatlas/authkit/pkg/audit"
	"github.com/treeatlas/authkit/pkg/mfacrypto"
	"github.com/treeatlas/authkit/pkg/passhash"
	"github.com/treeatlas/authkit/pkg/totp"
	"github.com/treeatlas/authkit/svc/mfa"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

var cheapParams = passhash.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testEnv struct {
	svc     *mfa.Service
	store   *mfa.MemoryStore
	audit   *audit.MemoryStorage
	account mfa.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cipher, err := mfacrypto.New(testKey)
	require.NoError(t, err)

	passwordHash, err := passhash.Hash("correct horse battery staple", cheapParams)
	require.NoError(t, err)

	account := mfa.Account{
		ID:           uuid.New(),
		Email:        "ranger@example.com",
		PasswordHash: passwordHash,
	}

	store := mfa.NewMemoryStore()
	store.PutAccount(account)

	auditStorage := audit.NewMemoryStorage()
	svc := mfa.New(store, audit.NewLogger(auditStorage), cipher,
		mfa.WithBackupCodeHashParams(cheapParams),
		mfa.WithBackupCodeCount(4),
	)

	return &testEnv{svc: svc, store: store, audit: auditStorage, account: account}
}

var meta = mfa.RequestMeta{IP: "203.0.113.7", UserAgent: "test-agent"}

func TestSetup(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)

	assert.Len(t, result.Seed, 32, "160-bit seed is 32 base32 chars")
	assert.Contains(t, result.ProvisionURI, "otpauth://totp/")
	assert.Contains(t, result.ProvisionURI, "ranger@example.com")
	assert.Contains(t, result.QRCodeDataURL, "data:image/png;base64,")
	assert.Len(t, result.BackupCodes, 4)

	// Seed is stored only encrypted; the flag stays off until verification.
	record, err := env.store.GetSecretRecord(ctx, env.account.ID)
	require.NoError(t, err)
	assert.NotEqual(t, result.Seed, record.EncryptedSeed)
	assert.NotContains(t, record.EncryptedSeed, result.Seed)
	assert.Empty(t, record.UsedIndices)
	for i, hash := range record.BackupCodeHashes {
		assert.NotEqual(t, result.BackupCodes[i], hash)
	}

	state, err := env.svc.State(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, mfa.StatePendingVerification, state)

	events := env.audit.ByKind(mfa.EventSetupInitiated)
	require.Len(t, events, 1)
	assert.Equal(t, "203.0.113.7", events[0].IP)
}

func TestSetup_Unauthorized(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.svc.Setup(context.Background(), uuid.Nil, meta)
	assert.ErrorIs(t, err, mfa.ErrUnauthorized)
	assert.Empty(t, env.audit.Events())
}

func TestSetup_AlreadyEnabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	first := enableViaTOTP(t, env)

	_, err := env.svc.Setup(ctx, env.account.ID, meta)
	assert.ErrorIs(t, err, mfa.ErrAlreadyEnabled)

	// The rejection changes nothing: same record, flag still on.
	record, err := env.store.GetSecretRecord(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, first, record.EncryptedSeed)
	assert.Len(t, env.audit.ByKind(mfa.EventSetupInitiated), 1)
}

func TestSetup_ReplacesPendingEnrollment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)
	second, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)

	assert.NotEqual(t, first.Seed, second.Seed)
	assert.NotEqual(t, first.BackupCodes, second.BackupCodes)

	// The first batch of backup codes no longer verifies.
	_, err = env.svc.VerifyAndEnable(ctx, env.account.ID, first.BackupCodes[0], meta)
	assert.ErrorIs(t, err, mfa.ErrInvalidCode)
}

func TestVerifyAndEnable_TOTP(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	setup, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Seed)
	require.NoError(t, err)

	result, err := env.svc.VerifyAndEnable(ctx, env.account.ID, code, meta)
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodTOTP, result.Method)
	assert.True(t, result.MFAEnabled)
	assert.Nil(t, result.CodesRemaining)

	state, err := env.svc.State(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, mfa.StateEnabled, state)

	events := env.audit.ByKind(mfa.EventEnabled)
	require.Len(t, events, 1)
	assert.Equal(t, "totp", events[0].Metadata["method"])
}

func TestVerifyAndEnable_BackupCode(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	setup, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)

	result, err := env.svc.VerifyAndEnable(ctx, env.account.ID, setup.BackupCodes[1], meta)
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodBackupCode, result.Method)
	assert.True(t, result.MFAEnabled)
	require.NotNil(t, result.CodesRemaining)
	assert.Equal(t, 3, *result.CodesRemaining)

	remaining, err := env.svc.RemainingBackupCodes(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	// The consumed code never validates again.
	_, err = env.svc.VerifyAndEnable(ctx, env.account.ID, setup.BackupCodes[1], meta)
	assert.ErrorIs(t, err, mfa.ErrInvalidCode)

	events := env.audit.ByKind(mfa.EventEnabled)
	require.Len(t, events, 1)
	assert.Equal(t, "backup_code", events[0].Metadata["method"])
	assert.Len(t, env.audit.ByKind("backup_code_used"), 1)
}

func TestVerifyAndEnable_BackupCodeWhileEnabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	setup, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Seed)
	require.NoError(t, err)
	_, err = env.svc.VerifyAndEnable(ctx, env.account.ID, code, meta)
	require.NoError(t, err)

	// Backup-code verification on an already-enabled account is a recovery
	// login, recorded under its own event kind.
	result, err := env.svc.VerifyAndEnable(ctx, env.account.ID, setup.BackupCodes[0], meta)
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodBackupCode, result.Method)

	assert.Len(t, env.audit.ByKind(mfa.EventEnabled), 1)
	assert.Len(t, env.audit.ByKind(mfa.EventBackupCodeUsed), 1)
}

func TestVerifyAndEnable_InvalidCode(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)

	tests := []struct {
		name   string
		code   string
		format string
	}{
		{name: "Wrong TOTP code", code: "000000", format: "totp"},
		{name: "Wrong backup code", code: "ZZZZ-ZZZZ-ZZZZ", format: "backup_code"},
		{name: "Garbage", code: "not-a-code", format: "unknown"},
		{name: "Empty", code: "", format: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failuresBefore := len(env.audit.ByKind(mfa.EventVerificationFailed))

			_, err := env.svc.VerifyAndEnable(ctx, env.account.ID, tt.code, meta)
			assert.ErrorIs(t, err, mfa.ErrInvalidCode)

			failures := env.audit.ByKind(mfa.EventVerificationFailed)
			require.Len(t, failures, failuresBefore+1)
			assert.Equal(t, tt.format, failures[len(failures)-1].Metadata["code_format"])

			state, err := env.svc.State(ctx, env.account.ID)
			require.NoError(t, err)
			assert.Equal(t, mfa.StatePendingVerification, state)
		})
	}
}

func TestVerifyAndEnable_NotConfigured(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.svc.VerifyAndEnable(context.Background(), env.account.ID, "123456", meta)
	assert.ErrorIs(t, err, mfa.ErrNotConfigured)
}

func TestVerifyAndEnable_TamperedSeed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)

	record, err := env.store.GetSecretRecord(ctx, env.account.ID)
	require.NoError(t, err)
	record.EncryptedSeed = record.EncryptedSeed[:len(record.EncryptedSeed)-4] + "AAAA"
	require.NoError(t, env.store.UpsertSecretRecord(ctx, record))

	_, err = env.svc.VerifyAndEnable(ctx, env.account.ID, "123456", meta)
	require.Error(t, err)
	assert.NotErrorIs(t, err, mfa.ErrInvalidCode, "tampered ciphertext is an operational error, not a failed guess")
}

func TestDisable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	enableViaTOTP(t, env)

	err := env.svc.Disable(ctx, env.account.ID, "correct horse battery staple", meta)
	require.NoError(t, err)

	state, err := env.svc.State(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, mfa.StateNoMFA, state)

	_, err = env.store.GetSecretRecord(ctx, env.account.ID)
	assert.ErrorIs(t, err, mfa.ErrSecretRecordNotFound)

	assert.Len(t, env.audit.ByKind(mfa.EventDisabled), 1)
}

func TestDisable_WrongPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	enableViaTOTP(t, env)

	err := env.svc.Disable(ctx, env.account.ID, "wrong password", meta)
	assert.ErrorIs(t, err, mfa.ErrInvalidPassword)

	// State untouched, one failure record.
	state, err := env.svc.State(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, mfa.StateEnabled, state)

	failures := env.audit.ByKind(mfa.EventDisableFailed)
	require.Len(t, failures, 1)
	assert.Equal(t, "invalid_password", failures[0].Metadata["reason"])
	assert.Empty(t, env.audit.ByKind(mfa.EventDisabled))
}

func TestDisable_NotEnabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	err := env.svc.Disable(context.Background(), env.account.ID, "correct horse battery staple", meta)
	assert.ErrorIs(t, err, mfa.ErrNotEnabled)
}

func TestDisable_StoreFailureLeavesStateIntact(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	enableViaTOTP(t, env)

	cipher, err := mfacrypto.New(testKey)
	require.NoError(t, err)
	failing := &failingStore{AccountStore: env.store}
	svc := mfa.New(failing, audit.NewLogger(env.audit), cipher)

	err = svc.Disable(ctx, env.account.ID, "correct horse battery staple", meta)
	require.ErrorIs(t, err, errDisableFailed)

	// Atomicity: the failed disable changed nothing.
	state, err := env.svc.State(ctx, env.account.ID)
	require.NoError(t, err)
	assert.Equal(t, mfa.StateEnabled, state)
	assert.Empty(t, env.audit.ByKind(mfa.EventDisabled))
}

func TestState_Corrupted(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	// Force the illegal combination directly: flag on, no record.
	env.store.PutAccount(mfa.Account{
		ID:           env.account.ID,
		Email:        env.account.Email,
		PasswordHash: env.account.PasswordHash,
		MFAEnabled:   true,
	})

	_, err := env.svc.State(ctx, env.account.ID)
	assert.ErrorIs(t, err, mfa.ErrStateCorrupted)
}

func TestDisabledStore(t *testing.T) {
	t.Parallel()

	cipher, err := mfacrypto.New(testKey)
	require.NoError(t, err)
	svc := mfa.New(mfa.NewDisabledStore(), audit.NewLogger(audit.NewMemoryStorage()), cipher)

	_, err = svc.Setup(context.Background(), uuid.New(), meta)
	assert.ErrorIs(t, err, mfa.ErrStoreUnavailable)
}

func TestActorContext(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := mfa.SetActorToContext(context.Background(), id)
	assert.Equal(t, id, mfa.GetActorFromContext(ctx))
	assert.Equal(t, uuid.Nil, mfa.GetActorFromContext(context.Background()))
}

// enableViaTOTP walks the account through setup and TOTP verification,
// returning the stored encrypted seed for later comparison.
func enableViaTOTP(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()

	setup, err := env.svc.Setup(ctx, env.account.ID, meta)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Seed)
	require.NoError(t, err)
	_, err = env.svc.VerifyAndEnable(ctx, env.account.ID, code, meta)
	require.NoError(t, err)

	record, err := env.store.GetSecretRecord(ctx, env.account.ID)
	require.NoError(t, err)
	return record.EncryptedSeed
}

var errDisableFailed = errors.New("disable failed")

// failingStore wraps a real store and fails the disable path.
type failingStore struct {
	mfa.AccountStore
}

func (s *failingStore) DisableMFA(context.Context, uuid.UUID) error {
	return errDisableFailed
}
