package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist, "an explicit path must exist")
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.Discord.Prefix)
	assert.Equal(t, "./cogbot.db", cfg.DatabasePath)
	assert.Equal(t, ":9090", cfg.MetricsPort)
	assert.Equal(t, "https://api.imgbb.com/1", cfg.Imgbb.BaseURL)
	assert.Equal(t, 256, cfg.Osu.CacheSize)
	assert.False(t, cfg.Proxy.Enabled())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
discord:
  token: abc
  prefix: "?"
  owner_ids: ["1", "2"]
database_path: /tmp/x.db
reactions:
  channel_per_second: 2.5
proxy:
  type: socks5
  address: 127.0.0.1:1080
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Discord.Token)
	assert.Equal(t, "?", cfg.Discord.Prefix)
	assert.Equal(t, []string{"1", "2"}, cfg.Discord.OwnerIDs)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, 2.5, cfg.Reactions.ChannelPerSecond)
	assert.Equal(t, 4.0, cfg.Reactions.GlobalPerSecond, "default kept")
	assert.Equal(t, "socks5", cfg.Proxy.Type)
	assert.Equal(t, 60*time.Second, cfg.ConfirmTimeout())
	assert.Equal(t, "bot", cfg.Invite.Scopes)
	assert.Equal(t, 2*time.Minute, cfg.Osu.CacheTTL())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discord:\n  token: file\n"), 0o600))
	t.Setenv("COGBOT_DISCORD_TOKEN", "env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Discord.Token)
}
