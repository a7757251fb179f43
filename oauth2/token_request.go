package oauth2

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /oauth/token/ endpoint, either
// form encoded or as JSON.
type TokenRequest struct {
	// ClientID identifies the OAuth2 client making the request.
	// Must match the client_id of the original authorization request.
	ClientID string `json:"client_id"`

	// GrantType selects the exchange: "authorization_code" or "refresh_token".
	GrantType GrantType `json:"grant_type"`

	// Code is the authorization code received on the redirect.
	// Required: authorization_code grant only
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string `json:"code,omitempty"`

	// RedirectURI must equal the redirect_uri of the authorization request.
	// Required: authorization_code grant only
	RedirectURI string `json:"redirect_uri,omitempty"`

	// CodeVerifier is the PKCE secret matching the stored code_challenge.
	// Required: authorization_code grant only
	// Example: "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	CodeVerifier string `json:"code_verifier,omitempty"`

	// RefreshToken is the sealed handle from the previous response.
	// Required: refresh_token grant only
	// Behavior: Rotated on every use; presenting a retired handle revokes its whole family
	RefreshToken string `json:"refresh_token,omitempty"`
}
