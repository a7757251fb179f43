package seal_test

import (
	"crypto/rand"
	"testing"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/seal"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, seal.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := newKey(t)

	for _, msg := range []string{"", "hello", `{"id":4,"family_id":"01J","nonce":"abc"}`} {
		sealed, err := seal.Seal(key, []byte(msg))
		require.NoError(t, err)
		require.Len(t, sealed, seal.NonceSize+len(msg)+seal.TagSize)

		opened, err := seal.Open(key, sealed)
		require.NoError(t, err)
		require.Equal(t, msg, string(opened))
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	key := newKey(t)

	a, err := seal.Seal(key, []byte("same"))
	require.NoError(t, err)
	b, err := seal.Seal(key, []byte("same"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	for _, s := range [][]byte{a, b} {
		opened, err := seal.Open(key, s)
		require.NoError(t, err)
		require.Equal(t, "same", string(opened))
	}
}

func TestOpen_Failures(t *testing.T) {
	key := newKey(t)
	sealed, err := seal.Seal(key, []byte("payload"))
	require.NoError(t, err)

	t.Run("truncated below nonce length", func(t *testing.T) {
		_, err := seal.Open(key, sealed[:seal.NonceSize-1])
		require.ErrorIs(t, err, errors.ErrBadCryptInput)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := seal.Open(key, nil)
		require.ErrorIs(t, err, errors.ErrBadCryptInput)
	})

	t.Run("flipped ciphertext bit", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[seal.NonceSize] ^= 0x01
		out, err := seal.Open(key, tampered)
		require.ErrorIs(t, err, errors.ErrCryptAuth)
		require.NotErrorIs(t, err, errors.ErrBadCryptInput)
		require.Nil(t, out)
	})

	t.Run("flipped tag bit", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0x80
		_, err := seal.Open(key, tampered)
		require.ErrorIs(t, err, errors.ErrCryptAuth)
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := seal.Open(newKey(t), sealed)
		require.ErrorIs(t, err, errors.ErrCryptAuth)
	})

	t.Run("short key", func(t *testing.T) {
		_, err := seal.Seal([]byte("short"), []byte("x"))
		require.Error(t, err)
	})
}
