package securecompare_test

import (
	"strings"
	"testing"

	"github.com/treeatlas/authkit/pkg/securecompare"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "Equal strings", a: "secret-token", b: "secret-token", want: true},
		{name: "Different strings same length", a: "secret-token", b: "secret-tokex", want: false},
		{name: "Different lengths", a: "short", b: "a much longer string", want: false},
		{name: "Both empty", a: "", b: "", want: true},
		{name: "Empty vs non-empty", a: "", b: "x", want: false},
		{name: "Non-empty vs empty", a: "x", b: "", want: false},
		{name: "Unicode", a: "código-secreto", b: "código-secreto", want: true},
		{name: "Unicode mismatch", a: "código", b: "codigo", want: false},
		{name: "Long inputs", a: strings.Repeat("a", 4096), b: strings.Repeat("a", 4096), want: true},
		{name: "Prefix only", a: "abcdef", b: "abc", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, securecompare.Equal(tt.a, tt.b))
		})
	}
}

func TestHashString(t *testing.T) {
	t.Parallel()

	h := securecompare.HashString("hello")
	assert.Len(t, h, 64) // hex-encoded 256-bit digest
	assert.Equal(t, h, securecompare.HashString("hello"))
	assert.NotEqual(t, h, securecompare.HashString("hellp"))

	// Empty input still produces a full-length digest.
	assert.Len(t, securecompare.HashString(""), 64)
}

func TestCompareHashed(t *testing.T) {
	t.Parallel()

	hash := securecompare.HashString("session-token-123")
	assert.True(t, securecompare.CompareHashed("session-token-123", hash))
	assert.False(t, securecompare.CompareHashed("session-token-124", hash))
	assert.False(t, securecompare.CompareHashed("session-token-123", "not-a-digest"))
	assert.False(t, securecompare.CompareHashed("", hash))
}
