package server

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/oauth2"
	"github.com/jrsteele09/go-token-authority/token"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 64 << 10
)

// IndexHandler answers with the application name.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"name": s.config.GetAppName()})
	}
}

// WellKnownOpenIDConfig serves the OIDC discovery document
func (s *Server) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := map[string]any{
			"issuer":                 s.config.GetIssuer(),
			"authorization_endpoint": baseURL + RouteOAuthAuthorize,
			"token_endpoint":         baseURL + RouteOAuthToken,
			"jwks_uri":               baseURL + RouteWellKnownJWKS,

			"response_types_supported": []string{string(oauth2.CodeResponseType)},
			"response_modes_supported": []string{"query"},
			"subject_types_supported":  []string{"public"},

			"id_token_signing_alg_values_supported": []string{"EdDSA"},

			"scopes_supported": []string{"openid"},

			// Public clients only; possession is proven with PKCE
			"token_endpoint_auth_methods_supported": []string{"none"},

			"grant_types_supported": []string{
				string(oauth2.AuthorizationCodeGrant),
				string(oauth2.RefreshTokenCodeGrant),
			},

			"code_challenge_methods_supported": []string{string(oauth2.CodeMethodTypeS256)},

			"claims_supported": []string{"sub", "iss", "aud", "exp", "iat", "auth_time", "nonce"},

			"claims_parameter_supported":      false,
			"request_parameter_supported":     false,
			"request_uri_parameter_supported": false,
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, resp)
	}
}

// JWKS returns the JSON Web Key Set used to validate tokens
func (s *Server) JWKS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jwks, err := s.services.Keys.JWKS(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, jwks)
	}
}

// Authorize parks the authorization request and sends the user-agent to the login page.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := oauth2.AuthorizationRequestFromQuery(r.URL.Query())
		_, loginURL, err := s.services.Auth.Begin(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
	}
}

// Callback sends the user-agent back to the client with the code it derived at login.
func (s *Server) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		redirect, err := s.services.Auth.Complete(r.Context(), query.Get("flow_id"), query.Get("code"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// Token exchanges a code or a refresh token for a new token set
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenReq, err := decodeTokenRequest(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		tokens, err := s.services.Issuer.Exchange(r.Context(), tokenReq)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, tokenResponse(tokens, int(s.config.GetAccessTokenExpiry().Seconds())))
	}
}

func tokenResponse(tokens *token.Tokens, expiresIn int) oauth2.TokenResponse {
	return oauth2.TokenResponse{
		IDToken:      tokens.IDToken,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    oauth2.TokenTypeBearer,
		ExpiresIn:    expiresIn,
		Scope:        tokens.Scope,
	}
}

// decodeTokenRequest accepts a JSON body or the standard form encoding.
func decodeTokenRequest(w http.ResponseWriter, r *http.Request) (oauth2.TokenRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req oauth2.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.Wrapf(errors.ErrInvalidRequest, "malformed JSON body (%v)", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return oauth2.TokenRequest{}, errors.Wrapf(errors.ErrInvalidRequest, "malformed form body (%v)", err)
	}
	return oauth2.TokenRequest{
		ClientID:     r.PostFormValue("client_id"),
		GrantType:    oauth2.GrantType(r.PostFormValue("grant_type")),
		Code:         r.PostFormValue("code"),
		RedirectURI:  r.PostFormValue("redirect_uri"),
		CodeVerifier: r.PostFormValue("code_verifier"),
		RefreshToken: r.PostFormValue("refresh_token"),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
