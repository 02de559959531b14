package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultMiniAppPath, cfg.Server.MiniAppPath)
	assert.Equal(t, DefaultInitDataMaxAgeSecs, cfg.Bot.InitDataMaxAgeSecs)
	assert.Equal(t, DefaultUpdatesChannel, cfg.Gate.UpdatesChannel)
	assert.Equal(t, DefaultUpdatesChannelURL, cfg.Gate.UpdatesChannelURL)
	assert.Equal(t, DefaultGateTimeoutSecs, cfg.Gate.TimeoutSeconds)
	assert.Equal(t, DefaultResolverBaseURL, cfg.Resolver.BaseURL)
	assert.Equal(t, DefaultResolverTimeoutSecs, cfg.Resolver.TimeoutSeconds)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "debug"
format = "json"

[server]
addr = ":9000"

[bot]
token = "123:abc"
initdata_max_age_seconds = 600

[gate]
updates_channel = "@another_channel"

[resolver]
timeout_seconds = 3
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, 600, cfg.Bot.InitDataMaxAgeSecs)
	assert.Equal(t, "@another_channel", cfg.Gate.UpdatesChannel)
	assert.Equal(t, 3, cfg.Resolver.TimeoutSeconds)

	// untouched sections keep their defaults
	assert.Equal(t, DefaultResolverBaseURL, cfg.Resolver.BaseURL)
	assert.Equal(t, DefaultGateTimeoutSecs, cfg.Gate.TimeoutSeconds)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not toml ["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QUICKGRAM_BOT_TOKEN", "999:env")
	t.Setenv("QUICKGRAM_WEBHOOK_SECRET", "env-secret")
	t.Setenv("QUICKGRAM_PUBLIC_URL", "https://bot.example.com/")
	t.Setenv("QUICKGRAM_LOG_CHANNEL_ID", "-1001234567890")
	t.Setenv("PORT", "7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "999:env", cfg.Bot.Token)
	assert.Equal(t, "env-secret", cfg.Bot.WebhookSecret)
	assert.Equal(t, "https://bot.example.com", cfg.Server.PublicURL, "trailing slash is stripped")
	assert.Equal(t, int64(-1001234567890), cfg.Bot.LogChannelID)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bot]
token = "file-token"
`), 0o600))
	t.Setenv("QUICKGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
}
