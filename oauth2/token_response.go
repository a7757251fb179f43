package oauth2

// TokenResponse represents the response from an OAuth2 token request (RFC 6749 §5.1).
type TokenResponse struct {
	// IDToken is the OpenID Connect identity token (EdDSA signed JWT).
	// Claims: iss, sub, aud (client_id), auth_time, nonce, iat, exp
	IDToken string `json:"id_token"`

	// AccessToken is the EdDSA signed JWT used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque, sealed handle used to obtain new tokens.
	// Usage: Send to the token endpoint with grant_type=refresh_token
	// Security: Single use; the response to a refresh carries its replacement
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in"`

	// Scope indicates the access token's granted permissions, space separated.
	Scope string `json:"scope"`
}

// ErrorResponse is the RFC 6749 §5.2 error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
