package jwt

import (
	"encoding/json"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the access token body. Stored without iat/exp as an untimed template.
type AccessClaims struct {
	Scope string `json:"scope,omitempty"`
	jwtlib.RegisteredClaims
}

// IDClaims is the OpenID Connect identity token body.
type IDClaims struct {
	AuthTime int64  `json:"auth_time"`
	Nonce    string `json:"nonce,omitempty"`
	jwtlib.RegisteredClaims
}

// Codec signs claim sets as compact EdDSA tokens.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// Sign signs claims with a PEM encoded Ed25519 private key. kid is set in the header when not empty.
func (c *Codec) Sign(privateKeyPEM []byte, kid string, claims jwtlib.Claims) (string, error) {
	key, err := jwtlib.ParseEdPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("failed to parse signing key: %w", err)
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodEdDSA, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Stamp returns a copy of the template issued at now and expiring after lifetime.
func (a AccessClaims) Stamp(now time.Time, lifetime time.Duration) AccessClaims {
	a.RegisteredClaims = stamp(a.RegisteredClaims, now, lifetime)
	return a
}

// Stamp returns a copy of the template issued at now and expiring after lifetime.
func (i IDClaims) Stamp(now time.Time, lifetime time.Duration) IDClaims {
	i.RegisteredClaims = stamp(i.RegisteredClaims, now, lifetime)
	return i
}

func stamp(rc jwtlib.RegisteredClaims, now time.Time, lifetime time.Duration) jwtlib.RegisteredClaims {
	rc.IssuedAt = jwtlib.NewNumericDate(now)
	rc.ExpiresAt = jwtlib.NewNumericDate(now.Add(lifetime))
	rc.ID = uuid.New().String()
	return rc
}

// EncodeTemplate serializes an untimed claim template for storage.
func EncodeTemplate(claims any) (string, error) {
	b, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode claim template: %w", err)
	}
	return string(b), nil
}

// DecodeAccessTemplate parses a stored access template.
func DecodeAccessTemplate(value string) (AccessClaims, error) {
	var claims AccessClaims
	if err := json.Unmarshal([]byte(value), &claims); err != nil {
		return AccessClaims{}, fmt.Errorf("failed to decode access template: %w", err)
	}
	return claims, nil
}

// DecodeIDTemplate parses a stored identity template.
func DecodeIDTemplate(value string) (IDClaims, error) {
	var claims IDClaims
	if err := json.Unmarshal([]byte(value), &claims); err != nil {
		return IDClaims{}, fmt.Errorf("failed to decode id template: %w", err)
	}
	return claims, nil
}
