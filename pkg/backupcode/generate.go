package backupcode

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"regexp"
	"strings"

	"github.com/treeatlas/authkit/pkg/passhash"
)

const (
	// alphabet excludes I and O, which read ambiguously next to 1 and 0.
	alphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	segmentLength = 4
	segmentCount  = 3

	// DefaultCount is the number of codes issued per MFA enrollment.
	DefaultCount = 10
)

// formatRegex matches the dash-separated shape of a submitted code. It is
// deliberately looser than the generation alphabet (it admits I and O) so
// that a mistyped character fails hash verification rather than being
// rejected as malformed.
var formatRegex = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Generate creates count plaintext recovery codes in the form
// XXXX-XXXX-XXXX. Callers must hand the plaintext to the user exactly once
// and persist only hashes; the codes are not recoverable afterwards.
func Generate(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}

	codes := make([]string, count)
	for i := 0; i < count; i++ {
		segments := make([]string, segmentCount)
		for j := 0; j < segmentCount; j++ {
			var b strings.Builder
			b.Grow(segmentLength)
			for k := 0; k < segmentLength; k++ {
				idx, err := unbiasedIndex(len(alphabet))
				if err != nil {
					return nil, errors.Join(ErrFailedToGenerate, err)
				}
				b.WriteByte(alphabet[idx])
			}
			segments[j] = b.String()
		}
		codes[i] = strings.Join(segments, "-")
	}
	return codes, nil
}

// unbiasedIndex samples a uniform index in [0, n) from crypto/rand,
// discarding any raw value outside the largest multiple of n that fits in a
// uint32. The rejected range is strictly smaller than n, so the loop almost
// never iterates more than once.
func unbiasedIndex(n int) (int, error) {
	maxUnbiased := (1 << 32) / uint64(n) * uint64(n)
	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, err
		}
		v := uint64(binary.BigEndian.Uint32(buf[:]))
		if v < maxUnbiased {
			return int(v % uint64(n)), nil
		}
	}
}

// Normalize canonicalizes a code for hashing and comparison: uppercase with
// separators stripped. Generation and verification must apply the identical
// transform or hashes will never match.
func Normalize(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), "-", "")
}

// IsCodeFormat reports whether the submission is shaped like a backup code.
func IsCodeFormat(code string) bool {
	return formatRegex.MatchString(strings.ToUpper(strings.TrimSpace(code)))
}

// HashCodes hashes plaintext codes at the high-cost BackupCode profile.
// Output order matches input order: the index is the durable identity of a
// code, so reordering would silently invalidate the used-index bookkeeping.
func HashCodes(codes []string) ([]string, error) {
	return HashCodesWithParams(codes, passhash.BackupCode)
}

// HashCodesWithParams is HashCodes with explicit Argon2id parameters.
// Verification reads parameters back from each stored hash, so changing the
// profile never invalidates previously issued codes.
func HashCodesWithParams(codes []string, params passhash.Params) ([]string, error) {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hash, err := passhash.Hash(Normalize(code), params)
		if err != nil {
			return nil, errors.Join(ErrFailedToHash, err)
		}
		hashes[i] = hash
	}
	return hashes, nil
}
