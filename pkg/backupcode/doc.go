// Package backupcode issues and verifies single-use MFA recovery codes.
//
// Codes are three dash-separated segments of four characters drawn from a
// 34-character alphabet that omits I and O. Sampling uses crypto/rand with
// reject-and-resample to avoid modulo bias. Plaintext codes exist only at
// generation and at verification time; storage holds Argon2id hashes at the
// passhash.BackupCode cost profile, with the list index serving as each
// code's durable identity.
//
// Verification scans unused indices in order and consumes the first match
// through the Store's atomic MarkUsed contract, so a code can validate at
// most once even under concurrent submission of the same plaintext. Every
// consumed code is recorded in the audit log with its index and the
// remaining count.
package backupcode
