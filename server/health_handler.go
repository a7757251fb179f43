package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

// Health runs every registered check and answers 503 if any of them fails.
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		names := make([]string, 0, len(s.services.Checks))
		for name := range s.services.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		status := http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := s.services.Checks[name](ctx); err != nil {
				log.Warn().Err(err).Str("check", name).Msg("health check failed")
				results[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, status, results)
	}
}
