// Package securecompare provides constant-time string comparison primitives
// for credential checks.
//
// Direct byte-wise comparison of secrets leaks timing information: the loop
// exits at the first mismatching byte and its duration depends on the input
// lengths. Equal sidesteps both channels by hashing each input to a
// fixed-length SHA-256 digest and comparing the digests with
// crypto/subtle.ConstantTimeCompare.
//
// The helpers here are intended for short string literals such as API tokens
// and verification codes. Password hashes must go through the passhash
// package instead; HashString is deliberately fast and unsalted.
package securecompare
