package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params holds the Argon2id cost parameters for a single hashing call.
type Params struct {
	Memory      uint32 // memory cost in KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var (
	// Interactive is tuned for request-path password hashing (set/reset,
	// disable confirmation): ~19 MiB memory, 2 iterations, single lane.
	Interactive = Params{
		Memory:      19456,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	// BackupCode trades latency for a higher work factor: backup codes are
	// verified rarely and are higher-value secrets than passwords.
	BackupCode = Params{
		Memory:      65536,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
)

// Validate ensures all cost parameters are non-zero.
func (p Params) Validate() error {
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 || p.SaltLength == 0 || p.KeyLength == 0 {
		return ErrInvalidParams
	}
	return nil
}

// Hash derives an Argon2id hash of password with a fresh random salt and
// encodes it in the standard PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>
func Hash(password string, params Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Join(ErrFailedToHash, err)
	}

	key := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.Memory,
		params.Iterations,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether password matches the PHC-encoded Argon2id hash.
// Cost parameters are read back from the hash string, so hashes created with
// either profile (or older parameters) verify correctly.
//
// Verify never fails loudly: a malformed or truncated hash string yields
// false, letting callers treat any unparseable candidate as "not verified"
// and move on.
func Verify(encodedHash, password string) bool {
	params, salt, key, err := decode(encodedHash)
	if err != nil {
		return false
	}

	comparison := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, comparison) == 1
}

func decode(encodedHash string) (Params, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errors.Join(ErrMalformedHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, errors.Join(ErrMalformedHash, err)
	}

	return params, salt, key, nil
}
