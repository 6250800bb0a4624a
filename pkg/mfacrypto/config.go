package mfacrypto

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

type Config struct {
	EncryptionKey string `env:"MFA_ENCRYPTION_KEY,required"` // 64-hex-character AES-256 key for TOTP seeds
}

// LoadConfig reads the cipher configuration from the process environment.
// The result is cached for the process lifetime; the key is immutable after
// startup.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		var c Config
		if parseErr := env.Parse(&c); parseErr != nil {
			err = parseErr
			return
		}
		if c.EncryptionKey == "" {
			err = ErrEncryptionKeyNotSet
			return
		}
		cfg = c
	})
	if err != nil {
		return Config{}, err
	}
	if cfg.EncryptionKey == "" {
		return Config{}, ErrEncryptionKeyNotSet
	}
	return cfg, nil
}
