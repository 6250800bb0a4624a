// Package mfacrypto provides authenticated encryption for TOTP seed material
// at rest.
//
// Seeds are sealed with AES-256-GCM under a process-wide key supplied via the
// MFA_ENCRYPTION_KEY environment variable as 64 hex characters (32 bytes).
// Each encryption uses a fresh cryptographically-random 96-bit nonce, and the
// stored blob is base64(nonce || ciphertext || tag). Random nonces carry the
// standard GCM birthday-bound risk, which is acceptable at the volume of MFA
// enrollments; no nonce counter is kept.
//
// Key validation happens in New, before any cryptographic operation, so a
// missing or malformed key is a configuration error at startup rather than a
// runtime crash inside crypto code.
package mfacrypto
