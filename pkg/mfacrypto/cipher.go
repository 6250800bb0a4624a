package mfacrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
)

const (
	// KeySize is the raw key size for AES-256 (32 bytes, supplied as 64 hex characters).
	KeySize = 32
)

// Cipher encrypts and decrypts TOTP seed material at rest with AES-256-GCM.
// The key is validated once at construction so misconfiguration surfaces as a
// configuration error, not as an opaque crypto failure deep in a request.
type Cipher struct {
	key []byte
}

// New creates a Cipher from a 64-hex-character key string.
func New(hexKey string) (*Cipher, error) {
	if hexKey == "" {
		return nil, ErrEncryptionKeyNotSet
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKey, err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}

	return &Cipher{key: key}, nil
}

// NewFromConfig loads the key from the MFA_ENCRYPTION_KEY environment variable.
func NewFromConfig() (*Cipher, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg.EncryptionKey)
}

// EncryptSecret encrypts a plaintext TOTP seed. The result is a single
// base64-encoded transport string holding nonce || ciphertext || tag, with a
// fresh random 96-bit nonce per call.
func (c *Cipher) EncryptSecret(plaintext string) (string, error) {
	aesGCM, err := c.gcm()
	if err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	sealed := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptSecret reverses EncryptSecret. Any tampering with the blob is
// rejected by the GCM authentication tag and reported as a decryption
// failure; a corrupt plaintext is never returned silently.
func (c *Cipher) DecryptSecret(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	aesGCM, err := c.gcm()
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(sealed) < nonceSize {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrCipherTooShort)
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	return string(plaintext), nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateKey creates a new random key encoded as 64 hex characters, suitable
// for the MFA_ENCRYPTION_KEY environment variable.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrFailedToGenerateKey, err)
	}
	return hex.EncodeToString(key), nil
}
