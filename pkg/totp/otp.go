package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/treeatlas/authkit/pkg/securecompare"
)

const (
	Digits = 6  // standard 6-digit codes
	Period = 30 // 30-second time step (RFC 6238)

	// skew is the accepted clock-drift tolerance in time steps. One step
	// either side is the conventional window: a code stays valid for at most
	// 90 seconds total.
	skew = 1
)

var (
	// seedRegex validates Base32 seed format: uppercase A-Z, digits 2-7, optional padding.
	seedRegex = regexp.MustCompile("^[A-Z2-7]+=*$")
	codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))
)

// GenerateSeed creates a new Base32-encoded 160-bit TOTP seed (RFC 4226
// recommended strength).
func GenerateSeed() (string, error) {
	seed := make([]byte, 20)
	if _, err := rand.Read(seed); err != nil {
		return "", errors.Join(ErrFailedToGenerateSeed, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(seed), nil
}

// IsCodeFormat reports whether the submission looks like a TOTP code
// (exactly six digits). Used to route submissions between the TOTP and
// backup-code verification paths before any cryptographic work.
func IsCodeFormat(code string) bool {
	return codeRegex.MatchString(strings.TrimSpace(code))
}

// ValidateCode checks a submitted one-time code against the seed, accepting
// the previous, current, and next time steps to absorb clock drift.
func ValidateCode(seed, code string) (bool, error) {
	return ValidateCodeAt(seed, code, time.Now())
}

// ValidateCodeAt is ValidateCode pinned to a specific moment, for callers
// that need deterministic verification (tests, replay analysis).
func ValidateCodeAt(seed, code string, t time.Time) (bool, error) {
	key, err := decodeSeed(seed)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCodeFormat
	}

	counter := t.Unix() / int64(Period)
	matched := false
	for i := int64(-skew); i <= skew; i++ {
		candidate := hotp(key, counter+i, Digits)
		// Constant-time comparison, and every window is checked even after a
		// match so timing does not reveal which step the code landed in.
		if securecompare.Equal(fmt.Sprintf("%0*d", Digits, candidate), code) {
			matched = true
		}
	}
	return matched, nil
}

// GenerateCode produces the code for the current time step.
func GenerateCode(seed string) (string, error) {
	return GenerateCodeAt(seed, time.Now())
}

// GenerateCodeAt produces the code for the time step containing t.
func GenerateCodeAt(seed string, t time.Time) (string, error) {
	key, err := decodeSeed(seed)
	if err != nil {
		return "", err
	}
	counter := t.Unix() / int64(Period)
	return fmt.Sprintf("%0*d", Digits, hotp(key, counter, Digits)), nil
}

// URIParams describes the otpauth:// provisioning URI for authenticator apps.
type URIParams struct {
	Seed        string // Base32-encoded seed (required)
	AccountName string // user identifier, typically email (required)
	Issuer      string // service name shown in the authenticator (required)
}

// ProvisioningURI builds a Key Uri Format string understood by Google
// Authenticator, 1Password and compatible apps:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params URIParams) (string, error) {
	if params.Seed == "" {
		return "", ErrMissingSeed
	}
	if !seedRegex.MatchString(params.Seed) {
		return "", ErrInvalidSeed
	}
	if params.AccountName == "" {
		return "", ErrMissingAccountName
	}
	if params.Issuer == "" {
		return "", ErrMissingIssuer
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Seed)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

func decodeSeed(seed string) ([]byte, error) {
	seed = strings.TrimSpace(strings.ToUpper(seed))
	if !seedRegex.MatchString(seed) {
		return nil, ErrInvalidSeed
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(seed, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	return key, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm.
func hotp(key []byte, counter int64, digits int) int {
	// Counter is encoded big-endian into 8 bytes (RFC 4226 requirement).
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte select the offset,
	// and the MSB of the extracted word is cleared to keep it positive.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	return code % int(math.Pow10(digits))
}
