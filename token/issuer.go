package token

import (
	"context"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/kv"
	"github.com/jrsteele09/go-token-authority/oauth2"
	"github.com/jrsteele09/go-token-authority/token/refresh"
	pkgerrors "github.com/pkg/errors"
)

// Tokens is what a successful exchange hands back.
type Tokens = refresh.Tokens

// Issuer serves the token endpoint: it redeems authorization codes and refresh handles.
type Issuer struct {
	cache  kv.Store
	engine *refresh.Engine
}

func NewIssuer(cache kv.Store, engine *refresh.Engine) (*Issuer, error) {
	if cache == nil {
		return nil, pkgerrors.New("[NewIssuer] cache is required")
	}
	if engine == nil {
		return nil, pkgerrors.New("[NewIssuer] refresh engine is required")
	}
	return &Issuer{cache: cache, engine: engine}, nil
}

// Exchange dispatches on grant_type.
func (i *Issuer) Exchange(ctx context.Context, req oauth2.TokenRequest) (*Tokens, error) {
	switch req.GrantType {
	case oauth2.AuthorizationCodeGrant:
		return i.ExchangeCode(ctx, req)
	case oauth2.RefreshTokenCodeGrant:
		return i.ExchangeRefresh(ctx, req)
	}
	return nil, errors.Wrapf(errors.ErrUnsupportedGrant, "grant_type %q", req.GrantType)
}

// ExchangeCode redeems a single-use authorization code for a new token family.
func (i *Issuer) ExchangeCode(ctx context.Context, req oauth2.TokenRequest) (*Tokens, error) {
	if req.GrantType != oauth2.AuthorizationCodeGrant {
		return nil, errors.Wrapf(errors.ErrUnsupportedGrant, "grant_type %q", req.GrantType)
	}
	if req.RedirectURI == "" || req.CodeVerifier == "" || req.Code == "" {
		return nil, errors.ErrMissingFieldTokenRequest
	}

	var flowUser oauth2.FlowUser
	found, err := i.cache.Take(ctx, kv.CodeKey(req.Code), &flowUser)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Issuer.ExchangeCode] code lookup")
	}
	if !found {
		return nil, errors.ErrFlowExpired
	}

	var authReq oauth2.AuthorizationRequest
	found, err = i.cache.Get(ctx, kv.FlowKey(flowUser.FlowID), &authReq)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Issuer.ExchangeCode] flow lookup")
	}
	if !found {
		return nil, errors.ErrExpiredFlowID
	}

	if req.ClientID != authReq.ClientID {
		return nil, errors.Wrapf(errors.ErrIncorrectField, "client_id")
	}
	if req.RedirectURI != authReq.RedirectURI {
		return nil, errors.Wrapf(errors.ErrIncorrectField, "redirect_uri")
	}
	if err := VerifyPKCE(req.CodeVerifier, authReq.CodeChallenge); err != nil {
		return nil, err
	}

	return i.engine.NewFamily(ctx, refresh.Subject{
		Sub:      flowUser.UspHex,
		ClientID: authReq.ClientID,
		Scope:    authReq.Scope,
		Nonce:    authReq.Nonce,
		AuthTime: flowUser.AuthTime,
	})
}

// ExchangeRefresh rotates the presented refresh handle.
func (i *Issuer) ExchangeRefresh(ctx context.Context, req oauth2.TokenRequest) (*Tokens, error) {
	if req.GrantType != oauth2.RefreshTokenCodeGrant {
		return nil, errors.Wrapf(errors.ErrUnsupportedGrant, "grant_type %q", req.GrantType)
	}
	if req.RefreshToken == "" {
		return nil, errors.ErrMissingFieldTokenRequest
	}
	return i.engine.Rotate(ctx, req.RefreshToken)
}
