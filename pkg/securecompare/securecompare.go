package securecompare

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Equal reports whether a and b are equal without leaking timing information
// about where they differ or how long they are. Both inputs are reduced to a
// fixed-length SHA-256 digest before comparison, so the comparison itself is
// always over 32 bytes regardless of input length. Empty strings take the
// same path as any other input.
func Equal(a, b string) bool {
	digestA := sha256.Sum256([]byte(a))
	digestB := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(digestA[:], digestB[:]) == 1
}

// HashString returns the hex-encoded SHA-256 digest of the input. This is a
// general-purpose fast hash for token lookups and log correlation. It is NOT
// suitable for password storage; use the passhash package for that.
func HashString(input string) string {
	digest := sha256.Sum256([]byte(input))
	return hex.EncodeToString(digest[:])
}

// CompareHashed reports whether plaintext hashes to the given hex digest,
// using the same fixed-length constant-time comparison as Equal.
func CompareHashed(plaintext, hash string) bool {
	return Equal(HashString(plaintext), hash)
}
