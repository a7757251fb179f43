package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))

	// OAuth2 / OIDC API routes
	s.RegisterRouteHandler("GET "+RouteWellKnownOpenIDConfig, ChainMiddleware(s.WellKnownOpenIDConfig(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownJWKS, ChainMiddleware(s.JWKS(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthAuthorize+"{$}", ChainMiddleware(s.Authorize(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthCallback+"{$}", ChainMiddleware(s.Callback(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuthToken+"{$}", ChainMiddleware(s.Token(), s.APIMiddleware()...))

	// LOGIN / REGISTER
	s.RegisterRouteHandler("POST "+RouteLoginStart+"{$}", ChainMiddleware(s.StartLogin(), s.APIMiddleware(s.RequirePake)...))
	s.RegisterRouteHandler("POST "+RouteLoginFinish+"{$}", ChainMiddleware(s.FinishLogin(), s.APIMiddleware(s.RequirePake)...))
	s.RegisterRouteHandler("POST "+RouteRegisterStart+"{$}", ChainMiddleware(s.StartRegister(), s.APIMiddleware(s.RequirePake)...))
	s.RegisterRouteHandler("POST "+RouteRegisterFinish+"{$}", ChainMiddleware(s.FinishRegister(), s.APIMiddleware(s.RequirePake)...))

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.services.Registry, promhttp.HandlerOpts{}))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.Health(), s.RecoverMiddleware))
}
