package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher()

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v="))
	assert.True(t, h.Verify("correct horse battery staple", digest))
	assert.False(t, h.Verify("correct horse battery stap1e", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHashEmptyPassword(t *testing.T) {
	h := NewHasher()

	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h := NewHasher()

	first, err := h.Hash("secret123")
	require.NoError(t, err)
	second, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("secret123", first))
	assert.True(t, h.Verify("secret123", second))
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := NewHasher()

	cases := []string{
		"",
		"not-a-digest",
		"$argon2id$v=19$m=65536,t=3,p=4$onlyfourparts",
		"$argon2id$v=19$m=65536,t=3,p=4$!!notbase64!!$AAAA",
		"$argon2id$v=19$bogus$AAAA$AAAA",
	}
	for _, digest := range cases {
		assert.False(t, h.Verify("whatever", digest), "digest %q must not verify", digest)
	}
}

func TestVerifyRejectsTamperedDigest(t *testing.T) {
	h := NewHasher()

	digest, err := h.Hash("password1")
	require.NoError(t, err)

	// Corrupt one byte of the hash part; the constant-time compare must fail.
	parts := strings.Split(digest, "$")
	require.Len(t, parts, 6)
	hashPart := []byte(parts[5])
	if hashPart[0] == 'A' {
		hashPart[0] = 'B'
	} else {
		hashPart[0] = 'A'
	}
	parts[5] = string(hashPart)
	assert.False(t, h.Verify("password1", strings.Join(parts, "$")))
}
