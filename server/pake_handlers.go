package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/oauth2"
)

func (s *Server) StartLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauth2.PasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		resp, err := s.services.Pake.StartLogin(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// FinishLogin answers 204 on success. The client already holds the session key that
// serves as its authorization code.
func (s *Server) FinishLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauth2.FinishLogin
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Pake.FinishLogin(r.Context(), req); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) StartRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauth2.PasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		resp, err := s.services.Pake.StartRegister(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) FinishRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauth2.FinishRegister
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		user, err := s.services.Pake.FinishRegister(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "malformed JSON body (%v)", err)
	}
	return nil
}
