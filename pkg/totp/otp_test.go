package totp_test

import (
	"testing"
	"time"

	"github.com/treeatlas/authkit/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeed(t *testing.T) {
	t.Parallel()
	seed, err := totp.GenerateSeed()
	require.NoError(t, err)
	assert.NotEmpty(t, seed)
	assert.Regexp(t, "^[A-Z2-7]+$", seed)

	other, err := totp.GenerateSeed()
	require.NoError(t, err)
	assert.NotEqual(t, seed, other)
}

func TestValidateCode(t *testing.T) {
	t.Parallel()
	seed, err := totp.GenerateSeed()
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	code, err := totp.GenerateCodeAt(seed, now)
	require.NoError(t, err)
	require.Len(t, code, totp.Digits)

	tests := []struct {
		name    string
		seed    string
		code    string
		at      time.Time
		wantErr error
		want    bool
	}{
		{name: "Valid current code", seed: seed, code: code, at: now, want: true},
		{name: "Previous step accepted", seed: seed, code: code, at: now.Add(30 * time.Second), want: true},
		{name: "Next step accepted", seed: seed, code: code, at: now.Add(-30 * time.Second), want: true},
		{name: "Two steps back rejected", seed: seed, code: code, at: now.Add(90 * time.Second), want: false},
		{name: "Wrong code", seed: seed, code: "000000", at: now, want: false},
		{name: "Invalid seed", seed: "not-base32!", code: "123456", at: now, wantErr: totp.ErrInvalidSeed},
		{name: "Empty seed", seed: "", code: "123456", at: now, wantErr: totp.ErrInvalidSeed},
		{name: "Short code", seed: seed, code: "12345", at: now, wantErr: totp.ErrInvalidCodeFormat},
		{name: "Non-numeric code", seed: seed, code: "12345a", at: now, wantErr: totp.ErrInvalidCodeFormat},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.ValidateCodeAt(tt.seed, tt.code, tt.at)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGenerateCodeAt_RFC6238Vector(t *testing.T) {
	t.Parallel()
	// RFC 6238 Appendix B test vector (SHA-1, "12345678901234567890"),
	// truncated from 8 digits to the standard 6.
	seed := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ" // base32 of the ASCII key

	code, err := totp.GenerateCodeAt(seed, time.Unix(59, 0).UTC())
	require.NoError(t, err)
	assert.Equal(t, "287082", code)

	code, err = totp.GenerateCodeAt(seed, time.Unix(1111111109, 0).UTC())
	require.NoError(t, err)
	assert.Equal(t, "081804", code)
}

func TestIsCodeFormat(t *testing.T) {
	t.Parallel()
	assert.True(t, totp.IsCodeFormat("123456"))
	assert.True(t, totp.IsCodeFormat(" 123456 "))
	assert.False(t, totp.IsCodeFormat("12345"))
	assert.False(t, totp.IsCodeFormat("1234567"))
	assert.False(t, totp.IsCodeFormat("ABCD-EFGH-JKLM"))
	assert.False(t, totp.IsCodeFormat(""))
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.URIParams
		want    string
		wantErr error
	}{
		{
			name: "Basic URI",
			params: totp.URIParams{
				Seed:        "JBSWY3DPEHPK3PXP",
				AccountName: "admin@example.com",
				Issuer:      "Tree Atlas",
			},
			want: "otpauth://totp/Tree%20Atlas:admin@example.com?algorithm=SHA1&digits=6&issuer=Tree+Atlas&period=30&secret=JBSWY3DPEHPK3PXP",
		},
		{
			name:    "Missing seed",
			params:  totp.URIParams{AccountName: "a@b.c", Issuer: "X"},
			wantErr: totp.ErrMissingSeed,
		},
		{
			name:    "Invalid seed",
			params:  totp.URIParams{Seed: "lowercase", AccountName: "a@b.c", Issuer: "X"},
			wantErr: totp.ErrInvalidSeed,
		},
		{
			name:    "Missing account name",
			params:  totp.URIParams{Seed: "JBSWY3DPEHPK3PXP", Issuer: "X"},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name:    "Missing issuer",
			params:  totp.URIParams{Seed: "JBSWY3DPEHPK3PXP", AccountName: "a@b.c"},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ProvisioningURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
