package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-token-authority/token/jwt"
	"github.com/jrsteele09/go-token-authority/token/keys"
	"github.com/stretchr/testify/require"
)

func TestCodec_SignVerifies(t *testing.T) {
	key, err := keys.GenerateEd25519Key(keys.SigningKeyID)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	claims := jwt.AccessClaims{
		Scope: "openid profile",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:  "u1",
			Issuer:   "https://auth.example.com",
			Audience: jwtlib.ClaimStrings{"api"},
		},
	}.Stamp(now, time.Hour)

	signed, err := jwt.NewCodec().Sign([]byte(key.Private), "1", claims)
	require.NoError(t, err)

	public, err := jwtlib.ParseEdPublicKeyFromPEM([]byte(key.Public))
	require.NoError(t, err)

	var parsed jwt.AccessClaims
	token, err := jwtlib.ParseWithClaims(signed, &parsed, func(*jwtlib.Token) (any, error) {
		return public, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return now.Add(time.Minute) }))
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, "EdDSA", token.Header["alg"])
	require.Equal(t, "1", token.Header["kid"])
	require.Equal(t, "u1", parsed.Subject)
	require.Equal(t, "openid profile", parsed.Scope)
	require.Equal(t, now.Unix(), parsed.IssuedAt.Unix())
	require.Equal(t, now.Add(time.Hour).Unix(), parsed.ExpiresAt.Unix())
	require.NotEmpty(t, parsed.ID)
}

func TestCodec_BadKey(t *testing.T) {
	_, err := jwt.NewCodec().Sign([]byte("not a pem"), "", jwt.AccessClaims{})
	require.Error(t, err)
}

func TestTemplate_RoundTripIsUntimed(t *testing.T) {
	template := jwt.IDClaims{
		AuthTime: 1700000000,
		Nonce:    "n-1",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:  "u1",
			Issuer:   "iss",
			Audience: jwtlib.ClaimStrings{"client-1"},
		},
	}

	encoded, err := jwt.EncodeTemplate(template)
	require.NoError(t, err)
	require.NotContains(t, encoded, `"iat"`)
	require.NotContains(t, encoded, `"exp"`)

	decoded, err := jwt.DecodeIDTemplate(encoded)
	require.NoError(t, err)
	require.Equal(t, template.Subject, decoded.Subject)
	require.Equal(t, template.Nonce, decoded.Nonce)
	require.Equal(t, template.AuthTime, decoded.AuthTime)

	first := decoded.Stamp(time.Unix(100, 0), time.Minute)
	second := decoded.Stamp(time.Unix(200, 0), time.Minute)
	require.Nil(t, decoded.IssuedAt)
	require.Equal(t, int64(160), first.ExpiresAt.Unix())
	require.Equal(t, int64(260), second.ExpiresAt.Unix())
	require.NotEqual(t, first.ID, second.ID)
}
