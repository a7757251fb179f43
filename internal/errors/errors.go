package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the token authority
var (
	// Crypto errors
	ErrBadCryptInput = errors.New("bad crypt input")
	ErrCryptAuth     = errors.New("ciphertext failed authentication")

	// Flow state errors. All of them match ErrBadFlow.
	ErrBadFlow       = errors.New("bad flow")
	ErrFlowExpired   = fmt.Errorf("%w: flow expired", ErrBadFlow)
	ErrExpiredFlowID = fmt.Errorf("%w: expired flow id", ErrBadFlow)
	ErrBadChallenge  = fmt.Errorf("%w: code challenge mismatch", ErrBadFlow)

	// Login/registration errors
	ErrIncorrectFinishUsername = errors.New("finish username does not match start username")
	ErrUserExists              = errors.New("user already exists")
	ErrPakeUnavailable         = errors.New("password authentication is not configured")

	// Token request errors
	ErrMissingFieldTokenRequest = errors.New("token request is missing a required field")
	ErrIncorrectField           = errors.New("token request field does not match")
	ErrUnsupportedGrant         = fmt.Errorf("%w: unsupported grant type", ErrIncorrectField)
	ErrInvalidRefresh           = errors.New("invalid refresh token")

	// Authorization request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownClient  = errors.New("unknown client")

	// Storage errors
	ErrNoRow          = errors.New("no row")
	ErrRequiredExists = errors.New("required row exists")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
