package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// OAuth2 / OIDC Routes
	RouteWellKnownOpenIDConfig = "/.well-known/openid-configuration"
	RouteWellKnownJWKS         = "/.well-known/jwks.json"
	RouteOAuthAuthorize        = "/oauth/authorize/"
	RouteOAuthCallback         = "/oauth/callback/"
	RouteOAuthToken            = "/oauth/token/"

	// PAKE Routes - Login & Registration
	RouteLoginStart     = "/login/start/"
	RouteLoginFinish    = "/login/finish/"
	RouteRegisterStart  = "/register/start/"
	RouteRegisterFinish = "/register/finish/"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)
