package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	clearServiceEnv(t)

	cfg, err := ParseConfig([]byte("version: \"\"\n"))
	require.NoError(t, err)

	assert.Equal(t, AppVersion, cfg.Version)
	assert.Equal(t, DefaultSourcesPath, cfg.SourcesPath)
	assert.Equal(t, DefaultAPIPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBDriver, cfg.Database.Driver)
	assert.Equal(t, DefaultBatchCron, cfg.Batch.Cron)
	assert.Equal(t, DefaultTagWindow, cfg.Batch.TagWindow)
	assert.Equal(t, DefaultTopicsToGet, cfg.Batch.TopicsToGet)
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAI.Model)
	assert.Equal(t, DefaultLogDir, cfg.Logging.Dir)
	assert.False(t, cfg.Discord.Enabled())
	assert.False(t, cfg.OpenAI.Enabled())
}

func TestParseConfig_File(t *testing.T) {
	clearServiceEnv(t)

	cfg, err := ParseConfig([]byte(`
server:
  port: 9090
database:
  driver: postgres
  dsn: postgres://trendwire@localhost/trendwire?sslmode=disable
batch:
  cron: "*/10 * * * *"
  tag_window: 48h
  topics_to_get: 3
  run_on_startup: true
tags:
  skip_terms: [trump, biden]
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "*/10 * * * *", cfg.Batch.Cron)
	assert.Equal(t, 48*time.Hour, cfg.Batch.TagWindow)
	assert.Equal(t, 3, cfg.Batch.TopicsToGet)
	assert.True(t, cfg.Batch.RunOnStartup)
	assert.Equal(t, []string{"trump", "biden"}, cfg.Tags.SkipTerms)
}

func TestParseConfig_EnvironmentOverrides(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv(EnvAPIPort, "7070")
	t.Setenv(EnvBatchCron, "@hourly")
	t.Setenv(EnvRunOnStart, "false")
	t.Setenv(EnvDiscordTok, "token")
	t.Setenv(EnvDiscordChan, "123")
	t.Setenv(EnvOpenAIKey, "sk-test")

	cfg, err := ParseConfig([]byte("server:\n  port: 9090\nbatch:\n  run_on_startup: true\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "@hourly", cfg.Batch.Cron)
	assert.False(t, cfg.Batch.RunOnStartup)
	assert.True(t, cfg.Discord.Enabled())
	assert.True(t, cfg.OpenAI.Enabled())
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad driver", "database:\n  driver: mysql\n"},
		{"bad cron", "batch:\n  cron: every now and then\n"},
		{"negative topics", "batch:\n  topics_to_get: -1\n"},
		{"negative attempts", "topics:\n  max_attempts: -2\n"},
		{"discord half set", "discord:\n  token: abc\n"},
		{"not yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServiceEnv(t)
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)

			var ae *AppError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, ErrorTypeConfig, ae.Type)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	clearServiceEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	var ae *AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrConfigLoad, ae.Code)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TRENDWIRE_TEST_INT", " 12 ")
	t.Setenv("TRENDWIRE_TEST_BAD", "twelve")
	t.Setenv("TRENDWIRE_TEST_BOOL", "true")

	assert.Equal(t, 12, GetEnvInt("TRENDWIRE_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("TRENDWIRE_TEST_BAD", 1))
	assert.True(t, GetEnvBool("TRENDWIRE_TEST_BOOL", false))
	assert.Equal(t, "fallback", GetEnvString("TRENDWIRE_TEST_UNSET", "fallback"))
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRENDWIRE_TEST_DOTENV=loaded\n"), 0644))
	t.Setenv("TRENDWIRE_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("TRENDWIRE_TEST_DOTENV"))

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "loaded", os.Getenv("TRENDWIRE_TEST_DOTENV"))

	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}
