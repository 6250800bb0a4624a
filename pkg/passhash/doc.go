// Package passhash implements memory-hard credential hashing with Argon2id.
//
// Hashes are encoded in the PHC string format so that stored values are
// self-describing: Verify recomputes the derivation with the parameters
// embedded in the hash itself, which keeps old hashes valid across parameter
// upgrades.
//
// Two fixed cost profiles are provided. Interactive (~19 MiB) covers
// request-path password checks; BackupCode (~64 MiB) covers MFA recovery
// codes, where verification volume is low and the secrets are higher-value.
//
// Verify intentionally returns a bare bool. Hash parsing failures are an
// expected outcome when scanning candidate lists and must not abort the scan,
// so they surface as "not verified" rather than an error.
package passhash
