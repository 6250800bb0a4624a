// Package mfa orchestrates the multi-factor authentication lifecycle of
// administrative accounts: TOTP enrollment, code verification, backup-code
// fallback, and password-gated disable.
//
// The package owns the account's MFA state machine. State is never stored as
// an opaque flag combination; it is derived into an explicit State value
// (no_mfa, pending_verification, enabled) and the one impossible combination
// is surfaced as ErrStateCorrupted.
//
// Secret material is handled under two rules: the TOTP seed is persisted only
// AES-256-GCM encrypted, and backup codes are persisted only as Argon2id
// hashes. Plaintext exists once, in the SetupResult returned to the caller.
//
// Basic wiring:
//
//	cipher, err := mfacrypto.NewFromConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	store := mfa.NewPostgresStore(pool)
//	auditLog := audit.NewLogger(audit.NewPostgresStorage(pool))
//	svc := mfa.New(store, auditLog, cipher)
//
//	result, err := svc.Setup(ctx, accountID, mfa.RequestMeta{IP: ip})
//	// show result.QRCodeDataURL and result.BackupCodes exactly once
//
//	_, err = svc.VerifyAndEnable(ctx, accountID, submittedCode, meta)
package mfa
