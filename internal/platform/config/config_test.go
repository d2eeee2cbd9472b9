// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/platform/config"
)

/*
TestLoad_Defaults verifies that optional settings fall back to their defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("IDENTITY_SERVICE_EMAIL", "admin@admin.com")
	t.Setenv("IDENTITY_SERVICE_PASSWORD", "admin123")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:8000/api/basketball", cfg.PrimaryAPIURL)
	assert.Equal(t, "http://localhost:8096", cfg.IdentityAPIURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, "/", cfg.LandingPath)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.JournalEnabled())
}

/*
TestLoad_MissingRequired ensures that startup fails without the session store URL.
*/
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("IDENTITY_SERVICE_EMAIL", "admin@admin.com")
	t.Setenv("IDENTITY_SERVICE_PASSWORD", "admin123")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_AllowedOrigins checks parsing of the comma separated origin list.
*/
func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := &config.Config{ExtraOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	empty := &config.Config{}
	assert.Empty(t, empty.AllowedOrigins())
}
