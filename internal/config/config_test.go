package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-token-authority/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseClients(t *testing.T) {
	t.Run("multiple clients", func(t *testing.T) {
		got := config.ParseClients("web=https://a.example/cb|https://b.example/cb; cli=http://localhost:9000")
		require.Equal(t, map[string][]string{
			"web": {"https://a.example/cb", "https://b.example/cb"},
			"cli": {"http://localhost:9000"},
		}, got)
	})

	t.Run("empty", func(t *testing.T) {
		require.Empty(t, config.ParseClients(""))
	})

	t.Run("malformed entries skipped", func(t *testing.T) {
		got := config.ParseClients("noequals;=https://x;ok=https://y")
		require.Equal(t, map[string][]string{"ok": {"https://y"}}, got)
	})
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	require.Equal(t, 90*time.Second, config.GetDuration("TEST_DURATION", time.Hour))

	t.Setenv("TEST_DURATION", "garbage")
	require.Equal(t, time.Hour, config.GetDuration("TEST_DURATION", time.Hour))

	t.Setenv("TEST_DURATION", "")
	require.Equal(t, time.Hour, config.GetDuration("TEST_DURATION", time.Hour))
}

func TestEnvVars_GetPort(t *testing.T) {
	t.Setenv("PORT", "3073")
	require.Equal(t, ":3073", config.EnvVars{}.GetPort())

	t.Setenv("PORT", ":9000")
	require.Equal(t, ":9000", config.EnvVars{}.GetPort())
}

func TestOAuth_Defaults(t *testing.T) {
	t.Setenv("AUTH_FLOW_TTL", "")
	t.Setenv("BASE_URL", "https://auth.example.com/")
	c := config.New()
	require.Equal(t, 1000*time.Second, c.GetAuthFlowTTL())
	require.Equal(t, "https://auth.example.com", c.GetIssuer())
}
