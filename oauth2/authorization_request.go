package oauth2

import "net/url"

// AuthorizationRequest holds the parameters of a request to the authorize endpoint.
// A snapshot is cached under the flow id until the user finishes logging in.
type AuthorizationRequest struct {
	// ResponseType must be "code".
	ResponseType ResponseType `json:"response_type"`

	// ClientID identifies the application requesting authorization.
	// Example: "web-app-client"
	// Validated against: the registered client list (when one is configured)
	ClientID string `json:"client_id"`

	// RedirectURI is where the user-agent is sent back with the code.
	// Example: "https://myapp.com/callback"
	// Security: Must exactly match a registered URI; compared again at the token endpoint
	RedirectURI string `json:"redirect_uri"`

	// State is an opaque value echoed back on the redirect for CSRF protection.
	State string `json:"state"`

	// CodeChallenge is the PKCE challenge derived from code_verifier.
	// Example: "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	CodeChallenge string `json:"code_challenge"`

	// CodeChallengeMethod must be "S256".
	CodeChallengeMethod CodeMethodType `json:"code_challenge_method"`

	// Nonce is copied into the id token so the client can bind it to its session.
	Nonce string `json:"nonce"`

	// Scope lists the requested permissions, space separated.
	// Example: "openid profile"
	Scope string `json:"scope,omitempty"`
}

// AuthorizationRequestFromQuery reads an AuthorizationRequest from URL query parameters.
func AuthorizationRequestFromQuery(q url.Values) AuthorizationRequest {
	return AuthorizationRequest{
		ResponseType:        ResponseType(q.Get("response_type")),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: CodeMethodType(q.Get("code_challenge_method")),
		Nonce:               q.Get("nonce"),
		Scope:               q.Get("scope"),
	}
}

// FlowUser is cached under an authorization code once a login finishes: it ties the
// code to the user, the time they authenticated and the authorization flow they came from.
type FlowUser struct {
	FlowID   string `json:"flow_id"`
	UspHex   string `json:"usp_hex"`
	AuthTime int64  `json:"auth_time"`
}
