package config

import "time"

type OAuthConfig interface {
	GetIssuer() string
	GetAudience() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshGracePeriod() time.Duration
	GetAuthFlowTTL() time.Duration
	GetLoginFlowTTL() time.Duration
	GetLoginPageURL() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetIssuer() string {
	return EnvVars{}.GetBaseURL()
}

func (OAuth) GetAudience() string {
	return GetEnv("TOKEN_AUDIENCE", "api")
}

func (OAuth) GetAccessTokenExpiry() time.Duration {
	return GetDuration("ACCESS_TOKEN_EXPIRY", time.Hour)
}

func (OAuth) GetRefreshTokenExpiry() time.Duration {
	return GetDuration("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour)
}

func (OAuth) GetRefreshGracePeriod() time.Duration {
	return GetDuration("REFRESH_GRACE_PERIOD", time.Minute)
}

// GetAuthFlowTTL is how long an authorization request waits for the user to log in.
func (OAuth) GetAuthFlowTTL() time.Duration {
	return GetDuration("AUTH_FLOW_TTL", 1000*time.Second)
}

// GetLoginFlowTTL bounds both the PAKE start→finish window and the life of an issued code.
func (OAuth) GetLoginFlowTTL() time.Duration {
	return GetDuration("LOGIN_FLOW_TTL", time.Minute)
}

func (OAuth) GetLoginPageURL() string {
	return GetEnv("LOGIN_PAGE_URL", "/credentials")
}
