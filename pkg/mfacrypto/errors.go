package mfacrypto

import "errors"

var (
	ErrEncryptionKeyNotSet        = errors.New("MFA encryption key not set")
	ErrInvalidEncryptionKey       = errors.New("MFA encryption key must be a 64-character hex string")
	ErrInvalidEncryptionKeyLength = errors.New("MFA encryption key must decode to exactly 32 bytes")
	ErrFailedToEncryptSecret      = errors.New("failed to encrypt TOTP seed")
	ErrFailedToDecryptSecret      = errors.New("failed to decrypt TOTP seed")
	ErrCipherTooShort             = errors.New("cipher text too short")
	ErrFailedToGenerateKey        = errors.New("failed to generate encryption key")
)
