package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "01234567890123456789012345678901"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_KEY", testKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, TokenBackendPaseto, cfg.Auth.TokenBackend)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, "587", cfg.Email.SMTPPort)
}

func TestLoadRejectsBadSessionKey(t *testing.T) {
	t.Setenv("SESSION_KEY", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTokenBackend(t *testing.T) {
	t.Setenv("SESSION_KEY", testKey)
	t.Setenv("SESSION_TOKEN_BACKEND", "macaroon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadJWTBackend(t *testing.T) {
	t.Setenv("SESSION_KEY", testKey)
	t.Setenv("SESSION_TOKEN_BACKEND", "jwt")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TokenBackendJWT, cfg.Auth.TokenBackend)
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "whisper", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=whisper sslmode=disable",
		db.ConnectionString())

	db.ChannelBinding = "require"
	assert.Contains(t, db.ConnectionString(), "channel_binding=require")
}

func TestRedisAddress(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: "6379"}
	assert.Equal(t, "cache:6379", r.Address())
}
