package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-token-authority/clients"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/oauth2"
)

// Validator holds the checks an authorization request must pass before it is cached.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAuthorizationRequest validates req. A nil client means the registry is open and
// any client id and well-formed redirect URI is accepted.
func (v *Validator) ValidateAuthorizationRequest(req oauth2.AuthorizationRequest, client *clients.Client) error {
	if req.ResponseType != oauth2.CodeResponseType {
		return InvalidResponseTypeErr
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return fmt.Errorf("%w: client_id is required", errors.ErrInvalidRequest)
	}
	if err := ValidateRedirectURI(req.RedirectURI); err != nil {
		return err
	}
	if client != nil && !client.RedirectAllowed(req.RedirectURI) {
		return InvalidRedirectUriErr
	}
	if err := v.ValidatePKCE(req.CodeChallenge, req.CodeChallengeMethod); err != nil {
		return err
	}
	if err := ValidateState(req.State); err != nil {
		return err
	}
	return ValidateScope(req.Scope)
}

// ValidatePKCE requires an S256 challenge of RFC 7636 length.
func (v *Validator) ValidatePKCE(codeChallenge string, codeChallengeMethod oauth2.CodeMethodType) error {
	if codeChallengeMethod != oauth2.CodeMethodTypeS256 {
		return InvalidCodeChallengeMethodErr
	}
	if len(codeChallenge) < 43 || len(codeChallenge) > 128 {
		return InvalidCodeChallengeErr
	}
	return nil
}

// ValidateScope validates individual scope strings
func ValidateScope(scope string) error {
	if scope == "" {
		return nil
	}

	if strings.ContainsAny(scope, "\n\r\t") {
		return fmt.Errorf("%w: scope contains invalid characters", errors.ErrInvalidRequest)
	}

	for _, s := range strings.Split(scope, " ") {
		if s == "" {
			return fmt.Errorf("%w: scope tokens must be separated by single spaces", errors.ErrInvalidRequest)
		}
	}
	return nil
}

// ValidateRedirectURI validates redirect URI format. The callback appends its own query,
// so the URI may carry neither a query nor a fragment.
func ValidateRedirectURI(uri string) error {
	if strings.TrimSpace(uri) == "" {
		return fmt.Errorf("%w: redirect_uri is required", errors.ErrInvalidRequest)
	}

	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return fmt.Errorf("%w: redirect_uri must use http or https scheme", errors.ErrInvalidRequest)
	}

	if strings.Contains(uri, "#") {
		return fmt.Errorf("%w: redirect_uri must not contain fragments", errors.ErrInvalidRequest)
	}

	if strings.Contains(uri, "?") {
		return fmt.Errorf("%w: redirect_uri must not contain a query", errors.ErrInvalidRequest)
	}
	return nil
}

// ValidateState validates OAuth state parameter
func ValidateState(state string) error {
	if state == "" {
		return nil
	}

	if len(state) < 8 {
		return fmt.Errorf("%w: state parameter should be at least 8 characters", errors.ErrInvalidRequest)
	}

	if strings.TrimSpace(state) != state {
		return fmt.Errorf("%w: state parameter must not contain leading/trailing whitespace", errors.ErrInvalidRequest)
	}
	return nil
}
