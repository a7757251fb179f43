package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-token-authority/auth"
	"github.com/jrsteele09/go-token-authority/clients"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/oauth2"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidatePKCE(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid S256", func(t *testing.T) {
		err := v.ValidatePKCE("E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", oauth2.CodeMethodTypeS256)
		require.NoError(t, err)
	})

	t.Run("missing both", func(t *testing.T) {
		err := v.ValidatePKCE("", "")
		require.ErrorIs(t, err, auth.InvalidCodeChallengeMethodErr)
	})

	t.Run("challenge too short", func(t *testing.T) {
		err := v.ValidatePKCE("tooshort", oauth2.CodeMethodTypeS256)
		require.ErrorIs(t, err, auth.InvalidCodeChallengeErr)
	})

	t.Run("plain method", func(t *testing.T) {
		err := v.ValidatePKCE("E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", "plain")
		require.ErrorIs(t, err, auth.InvalidCodeChallengeMethodErr)
	})
}

func TestValidator_ValidateAuthorizationRequest(t *testing.T) {
	v := auth.NewValidator()
	client := &clients.Client{ID: testClientID, RedirectURIs: []string{testRedirectURI}}

	require.NoError(t, v.ValidateAuthorizationRequest(validRequest(), client))
	require.NoError(t, v.ValidateAuthorizationRequest(validRequest(), nil))

	req := validRequest()
	req.ClientID = " "
	require.ErrorIs(t, v.ValidateAuthorizationRequest(req, nil), errors.ErrInvalidRequest)

	req = validRequest()
	req.RedirectURI = testRedirectURI + "/other"
	require.ErrorIs(t, v.ValidateAuthorizationRequest(req, client), auth.InvalidRedirectUriErr)
	require.NoError(t, v.ValidateAuthorizationRequest(req, nil))
}

func TestValidateScope(t *testing.T) {
	t.Run("valid single scope", func(t *testing.T) {
		require.NoError(t, auth.ValidateScope("openid"))
	})

	t.Run("valid multiple scopes", func(t *testing.T) {
		require.NoError(t, auth.ValidateScope("openid profile email"))
	})

	t.Run("empty scope", func(t *testing.T) {
		require.NoError(t, auth.ValidateScope(""))
	})

	t.Run("scope with newline", func(t *testing.T) {
		err := auth.ValidateScope("openid\nprofile")
		require.ErrorIs(t, err, errors.ErrInvalidRequest)
		require.Contains(t, err.Error(), "invalid characters")
	})

	t.Run("double space", func(t *testing.T) {
		require.Error(t, auth.ValidateScope("openid  profile"))
	})
}

func TestValidateRedirectURI(t *testing.T) {
	t.Run("valid https URI", func(t *testing.T) {
		require.NoError(t, auth.ValidateRedirectURI("https://example.com/callback"))
	})

	t.Run("valid http URI", func(t *testing.T) {
		require.NoError(t, auth.ValidateRedirectURI("http://localhost:3000/callback"))
	})

	t.Run("empty URI", func(t *testing.T) {
		err := auth.ValidateRedirectURI("")
		require.Error(t, err)
		require.Contains(t, err.Error(), "redirect_uri is required")
	})

	t.Run("invalid scheme", func(t *testing.T) {
		err := auth.ValidateRedirectURI("ftp://example.com/callback")
		require.Error(t, err)
		require.Contains(t, err.Error(), "must use http or https")
	})

	t.Run("URI with fragment", func(t *testing.T) {
		err := auth.ValidateRedirectURI("https://example.com/callback#fragment")
		require.Error(t, err)
		require.Contains(t, err.Error(), "must not contain fragments")
	})

	t.Run("URI with query", func(t *testing.T) {
		err := auth.ValidateRedirectURI("https://example.com/callback?a=b")
		require.ErrorIs(t, err, errors.ErrInvalidRequest)
	})
}

func TestValidateState(t *testing.T) {
	t.Run("valid state", func(t *testing.T) {
		require.NoError(t, auth.ValidateState("random-state-12345"))
	})

	t.Run("empty state", func(t *testing.T) {
		require.NoError(t, auth.ValidateState(""))
	})

	t.Run("state too short", func(t *testing.T) {
		err := auth.ValidateState("short")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 8 characters")
	})
}
