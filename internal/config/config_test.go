package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/thoughts")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("LOGIN_BURST", "9")

	cfg, err := LoadServer()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 9, cfg.LoginBurst)
	assert.Equal(t, 1.0, cfg.LoginRPS)
}

func TestLoadServer_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/thoughts")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadServer()

	assert.EqualError(t, err, "missing env: JWT_SECRET")
}

func TestLoadClient_TrimsServerURL(t *testing.T) {
	t.Setenv("THOUGHTS_SERVER", "https://thoughts.example.com/")
	t.Setenv("THOUGHTS_SESSION_FILE", "/tmp/s.json")

	cfg, err := LoadClient()

	require.NoError(t, err)
	assert.Equal(t, "https://thoughts.example.com", cfg.ServerURL)
	assert.Equal(t, "/tmp/s.json", cfg.SessionFile)
}
