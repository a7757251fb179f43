package auth

import (
	"fmt"

	"github.com/jrsteele09/go-token-authority/internal/errors"
)

// Authorization request rejections. All of them match errors.ErrInvalidRequest.
var (
	InvalidResponseTypeErr        = fmt.Errorf("%w: response_type must be code", errors.ErrInvalidRequest)
	InvalidCodeChallengeErr       = fmt.Errorf("%w: code_challenge must be 43 to 128 characters", errors.ErrInvalidRequest)
	InvalidCodeChallengeMethodErr = fmt.Errorf("%w: code_challenge_method must be S256", errors.ErrInvalidRequest)
	InvalidRedirectUriErr         = fmt.Errorf("%w: redirect_uri is not registered for this client", errors.ErrInvalidRequest)
	MissingFlowIDErr              = fmt.Errorf("%w: flow_id is required", errors.ErrInvalidRequest)
	MissingCodeErr                = fmt.Errorf("%w: code is required", errors.ErrInvalidRequest)
)
