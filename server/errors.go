package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/oauth2"
	"github.com/rs/zerolog/log"
)

const (
	invalidRefreshDescription = "refresh token is invalid, expired or revoked"
	invalidRequestDescription = "request is malformed or failed validation"
)

// errorMapping pairs a taxonomy error with its HTTP rendering. The first match wins, so
// narrower errors precede the ones they wrap. Descriptions are fixed text; the error
// itself can carry protocol or parser detail and is only logged.
type errorMapping struct {
	target      error
	status      int
	code        string
	description string
}

var errorMappings = []errorMapping{
	{errors.ErrPakeUnavailable, http.StatusServiceUnavailable, "temporarily_unavailable", "password authentication is not configured"},
	{errors.ErrUnknownClient, http.StatusUnauthorized, "invalid_client", "unknown client"},
	{errors.ErrInvalidRefresh, http.StatusBadRequest, "invalid_grant", invalidRefreshDescription},
	// Only a presented refresh handle is ever opened on a request path
	{errors.ErrBadCryptInput, http.StatusBadRequest, "invalid_grant", invalidRefreshDescription},
	{errors.ErrCryptAuth, http.StatusBadRequest, "invalid_grant", invalidRefreshDescription},
	{errors.ErrBadFlow, http.StatusBadRequest, "invalid_grant", "flow expired"},
	{errors.ErrUnsupportedGrant, http.StatusBadRequest, "unsupported_grant_type", "grant_type is not supported"},
	{errors.ErrIncorrectField, http.StatusBadRequest, "invalid_grant", "authorization grant does not match the request"},
	{errors.ErrMissingFieldTokenRequest, http.StatusBadRequest, "invalid_request", "token request is missing a required field"},
	{errors.ErrIncorrectFinishUsername, http.StatusBadRequest, "invalid_request", "username does not match the started exchange"},
	{errors.ErrUserExists, http.StatusConflict, "user_exists", "user already exists"},
	{errors.ErrRequiredExists, http.StatusConflict, "user_exists", "user already exists"},
	{errors.ErrInvalidRequest, http.StatusBadRequest, "invalid_request", invalidRequestDescription},
}

// writeError renders err as an OAuth2 error body. Errors outside the taxonomy are logged
// and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request rejected")
		writeJSONError(w, m.code, m.description, m.status)
		return
	}
	log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	writeJSONError(w, "server_error", "internal server error", http.StatusInternalServerError)
}

func writeJSONError(w http.ResponseWriter, code, description string, status int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(oauth2.ErrorResponse{Error: code, ErrorDescription: description})
}
