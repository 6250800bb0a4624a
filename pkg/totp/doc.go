// Package totp implements time-based one-time passwords per RFC 6238 on top
// of the RFC 4226 HOTP construction.
//
// It covers seed generation (160-bit, Base32), code generation and
// validation, and otpauth:// provisioning URI construction for authenticator
// apps. Validation accepts one 30-second time step of clock drift in either
// direction; the tolerance is fixed rather than configurable because a wider
// window weakens replay resistance without a corresponding usability gain.
//
// Seeds produced here are plaintext. Persisting them is the job of the
// mfacrypto package, which seals seeds with AES-256-GCM before they reach a
// store.
package totp
