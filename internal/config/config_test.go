package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DEFAULT_ENV", "")
	t.Setenv("PRIVILEGED_ROLES", "")
	t.Setenv("SIBLING_TIMEOUT", "")

	cfg := LoadConfig()

	assert.Equal(t, "production", cfg.DefaultEnv)
	assert.Equal(t, []string{"ADMIN"}, cfg.PrivilegedRoles)
	assert.Equal(t, 10*time.Second, cfg.Siblings.Timeout)
	assert.Equal(t, int64(10000), cfg.MaxDelegatedResults)
	assert.Zero(t, cfg.Siblings.RateLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DEFAULT_ENV", "staging")
	t.Setenv("PRIVILEGED_ROLES", "ADMIN, SUPERADMIN,,")
	t.Setenv("SIBLING_TIMEOUT", "250ms")
	t.Setenv("MAX_DELEGATED_RESULTS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "staging", cfg.DefaultEnv)
	assert.Equal(t, []string{"ADMIN", "SUPERADMIN"}, cfg.PrivilegedRoles)
	assert.Equal(t, 250*time.Millisecond, cfg.Siblings.Timeout)
	assert.Equal(t, int64(10000), cfg.MaxDelegatedResults)
}

func TestValidateRejectsBadSiblingURL(t *testing.T) {
	cfg := LoadConfig()
	cfg.Siblings.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.MaxDelegatedResults = 0
	assert.Error(t, cfg.Validate())
}
