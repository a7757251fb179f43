// Package seal implements the AES-256-GCM envelope used to make refresh handles opaque.
//
// A sealed value is nonce (12 bytes) || ciphertext || tag (16 bytes). No associated data is bound.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/jrsteele09/go-token-authority/internal/errors"
)

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// Seal encrypts and authenticates plaintext under key with a fresh random nonce.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal: read nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Input shorter than the nonce fails with ErrBadCryptInput;
// a tag that does not verify fails without returning any plaintext.
func Open(key, sealed []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < NonceSize {
		return nil, errors.ErrBadCryptInput
	}

	nonce, ciphertext := sealed[:NonceSize], sealed[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCryptAuth, "seal: open (%v)", err)
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("seal: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("seal: new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
