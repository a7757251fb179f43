package refresh

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/seal"
)

// RefreshToken is what the client holds, sealed: the row it points at, its family and
// the rotation nonce of that row.
type RefreshToken struct {
	ID       int64  `json:"id"`
	FamilyID string `json:"family_id"`
	Nonce    string `json:"nonce"`
}

// EncodeHandle renders base64url(seal(json(token))).
func EncodeHandle(key []byte, token RefreshToken) (string, error) {
	plain, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("encode refresh handle: %w", err)
	}
	sealed, err := seal.Seal(key, plain)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecodeHandle reverses EncodeHandle.
func DecodeHandle(key []byte, handle string) (RefreshToken, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(handle)
	if err != nil {
		return RefreshToken{}, errors.Wrapf(errors.ErrBadCryptInput, "decode refresh handle (%v)", err)
	}
	plain, err := seal.Open(key, sealed)
	if err != nil {
		return RefreshToken{}, err
	}

	var token RefreshToken
	if err := json.Unmarshal(plain, &token); err != nil {
		return RefreshToken{}, errors.Wrapf(errors.ErrBadCryptInput, "parse refresh handle (%v)", err)
	}
	return token, nil
}
