package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps tests quick; production uses DefaultParams.
var fastParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt, DefaultParams)
	key2 := DeriveKey(password, salt, DefaultParams)

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, int(DefaultParams.KeyLen))
	assert.NotEqual(t, key1, DeriveKey(password, salt, fastParams), "cost params are part of the derivation")
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	assert.NotEqual(t,
		DeriveKey(password, []byte("salt-1"), fastParams),
		DeriveKey(password, []byte("salt-2"), fastParams),
	)
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(fastParams)

	encoded, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify(encoded, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(encoded, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewHasher(fastParams)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_VerifyUsesStoredParams(t *testing.T) {
	encoded, err := NewHasher(fastParams).Hash("pw")
	require.NoError(t, err)

	// a hasher with other settings still verifies older hashes
	ok, err := NewHasher(Params{Time: 2, Memory: 2048, Threads: 2, KeyLen: 16, SaltLen: 8}).Verify(encoded, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_VerifyMalformed(t *testing.T) {
	h := NewHasher(fastParams)
	for _, bad := range []string{
		"",
		"plain",
		"bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA",
		"argon2id$v=18$m=1024,t=1,p=1$AAAA$AAAA",
		"argon2id$v=19$m=x,t=1,p=1$AAAA$AAAA",
		"argon2id$v=19$m=1024,t=1,p=1$!!!$AAAA",
		"argon2id$v=19$m=1024,t=1,p=1$AAAA$",
	} {
		_, err := h.Verify(bad, "pw")
		assert.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}
