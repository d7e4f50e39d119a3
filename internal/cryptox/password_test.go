package cryptox

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, algorithm string) *Hasher {
	t.Helper()
	h, err := NewHasher(algorithm, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestHasher_RoundTrip(t *testing.T) {
	for _, algo := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algo, func(t *testing.T) {
			h := newTestHasher(t, algo)

			hashed, err := h.Hash("pw1")
			require.NoError(t, err)
			assert.NotEqual(t, "pw1", hashed)

			ok, err := h.Verify("pw1", hashed)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify("pw2", hashed)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = h.Verify("", hashed)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	for _, algo := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		h := newTestHasher(t, algo)
		a, err := h.Hash("same")
		require.NoError(t, err)
		b, err := h.Hash("same")
		require.NoError(t, err)
		assert.NotEqual(t, a, b, algo)
	}
}

func TestHasher_HashRejectsEmpty(t *testing.T) {
	for _, algo := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		_, err := newTestHasher(t, algo).Hash("")
		assert.ErrorIs(t, err, common.ErrInvalidInput, algo)
	}
}

func TestHasher_BcryptRejectsOverlongPassword(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)
	_, err := h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = h.Hash(strings.Repeat("x", 72))
	assert.NoError(t, err)
}

func TestHasher_VerifyAcrossAlgorithms(t *testing.T) {
	bc := newTestHasher(t, AlgorithmBcrypt)
	ar := newTestHasher(t, AlgorithmArgon2id)

	fromBcrypt, err := bc.Hash("secret")
	require.NoError(t, err)
	fromArgon, err := ar.Hash("secret")
	require.NoError(t, err)

	ok, err := ar.Verify("secret", fromBcrypt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = bc.Verify("secret", fromArgon)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, ar.NeedsRehash(fromBcrypt))
	assert.False(t, ar.NeedsRehash(fromArgon))
	assert.True(t, bc.NeedsRehash(fromArgon))
	assert.False(t, bc.NeedsRehash(fromBcrypt))
}

func TestHasher_VerifyCorruptHash(t *testing.T) {
	h := newTestHasher(t, AlgorithmBcrypt)

	tests := []struct {
		name   string
		hashed string
	}{
		{"empty", ""},
		{"plaintext stored by mistake", "pw1"},
		{"truncated bcrypt", "$2a$10$abc"},
		{"bad bcrypt cost", "$2a$99$" + strings.Repeat("a", 53)},
		{"argon2 missing segments", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA"},
		{"argon2 bad version", "$argon2id$v=x$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{"argon2 bad params", "$argon2id$v=19$m=abc$c2FsdA$a2V5"},
		{"argon2 bad salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5"},
		{"argon2 zero threads", "$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$a2V5"},
		{"argon2 too many iterations", "$argon2id$v=19$m=65536,t=200,p=4$c2FsdA$a2V5"},
		{"argon2 too much memory", "$argon2id$v=19$m=2097152,t=1,p=4$c2FsdA$a2V5"},
		{"argon2 too many threads", "$argon2id$v=19$m=65536,t=1,p=64$c2FsdA$a2V5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("pw1", tt.hashed)
			assert.False(t, ok)
			assert.ErrorIs(t, err, common.ErrCorruptHash)
		})
	}
}

func TestHasher_VerifyRejectsCostlyArgon2Params(t *testing.T) {
	h := newTestHasher(t, AlgorithmArgon2id)

	start := time.Now()
	ok, err := h.Verify("pw1", "$argon2id$v=19$m=65536,t=200,p=4$c2FsdA$a2V5")
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrCorruptHash)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", 0)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBcrypt, h.Algorithm())
	assert.Equal(t, bcrypt.DefaultCost, h.bcryptCost)

	_, err = NewHasher("md5", 0)
	assert.Error(t, err)

	_, err = NewHasher(AlgorithmBcrypt, 99)
	assert.Error(t, err)

	var _ PasswordHasher = h
}
