package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/jrsteele09/go-token-authority/internal/errors"
)

// ChallengeS256 returns BASE64URL(SHA256(verifier)) without padding.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyPKCE checks an ASCII code_verifier against the S256 challenge stored with the
// authorization request.
func VerifyPKCE(verifier, challenge string) error {
	for i := 0; i < len(verifier); i++ {
		if verifier[i] > 0x7f {
			return errors.ErrBadChallenge
		}
	}
	if subtle.ConstantTimeCompare([]byte(ChallengeS256(verifier)), []byte(challenge)) != 1 {
		return errors.ErrBadChallenge
	}
	return nil
}
