package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":   "postgres://localhost/brackets",
		"JWT_SECRET_KEY": "secret",
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.InviteTTL)
	assert.Zero(t, cfg.ResultRetention)
	assert.Nil(t, cfg.ShuffleSeed)
	assert.False(t, cfg.R2Enabled())
	assert.False(t, cfg.DiscordEnabled())
	assert.Empty(t, cfg.DiscordChannels)
}

func TestFromEnvRequired(t *testing.T) {
	env := baseEnv()
	delete(env, "DATABASE_URL")
	_, err := FromEnv(envOf(env))
	assert.ErrorContains(t, err, "DATABASE_URL")

	env = baseEnv()
	delete(env, "JWT_SECRET_KEY")
	_, err = FromEnv(envOf(env))
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

func TestFromEnvOverrides(t *testing.T) {
	env := baseEnv()
	env["SERVER_PORT"] = "9000"
	env["LOG_LEVEL"] = "debug"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example, https://b.example"
	env["INVITE_TTL"] = "2m"
	env["RESULT_RETENTION"] = "720h"
	env["SHUFFLE_SEED"] = "42"
	env["DISCORD_BOT_TOKEN"] = "token"
	env["DISCORD_CHANNELS"] = "111:222, 333:444"

	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.InviteTTL)
	assert.Equal(t, 720*time.Hour, cfg.ResultRetention)
	require.NotNil(t, cfg.ShuffleSeed)
	assert.Equal(t, uint64(42), *cfg.ShuffleSeed)
	assert.True(t, cfg.DiscordEnabled())
	assert.Equal(t, map[string]string{"111": "222", "333": "444"}, cfg.DiscordChannels)
}

func TestFromEnvInvalidValues(t *testing.T) {
	testCases := map[string]string{
		"SERVER_PORT":      "70000",
		"LOG_LEVEL":        "loud",
		"INVITE_TTL":       "soon",
		"SHUFFLE_SEED":     "-1",
		"DISCORD_CHANNELS": "111",
	}
	for key, value := range testCases {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			env[key] = value
			env["DISCORD_BOT_TOKEN"] = "token"
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}

func TestFromEnvDiscordChannelsNeedToken(t *testing.T) {
	env := baseEnv()
	env["DISCORD_CHANNELS"] = "111:222"
	_, err := FromEnv(envOf(env))
	assert.ErrorContains(t, err, "DISCORD_BOT_TOKEN")
}

func TestFromEnvR2AllOrNothing(t *testing.T) {
	env := baseEnv()
	env["R2_ACCOUNT_ID"] = "acc"
	_, err := FromEnv(envOf(env))
	assert.ErrorContains(t, err, "partially configured")

	env["R2_ACCESS_KEY_ID"] = "key"
	env["R2_SECRET_ACCESS_KEY"] = "secret"
	env["R2_BUCKET_NAME"] = "brackets"
	env["R2_PUBLIC_BASE_URL"] = "https://cdn.example"
	cfg, err := FromEnv(envOf(env))
	require.NoError(t, err)
	assert.True(t, cfg.R2Enabled())
}
