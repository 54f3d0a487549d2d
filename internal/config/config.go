package config

import (
	"strings"
	"time"

	"github.com/haytac/cogbot/internal/logging"
	"github.com/haytac/cogbot/internal/proxy"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Discord               DiscordConfig   `mapstructure:"discord"`
	DatabasePath          string          `mapstructure:"database_path"`
	Log                   logging.Config  `mapstructure:"log"`
	MetricsPort           string          `mapstructure:"metrics_port"`
	EncryptionKey         string          `mapstructure:"encryption_key"`
	Proxy                 proxy.Config    `mapstructure:"proxy"`
	Reactions             ReactionsConfig `mapstructure:"reactions"`
	ConfirmTimeoutSeconds int             `mapstructure:"confirm_timeout_seconds"`
	Invite                InviteConfig    `mapstructure:"invite"`
	Osu                   OsuConfig       `mapstructure:"osu"`
	Imgbb                 ImgbbConfig     `mapstructure:"imgbb"`
	DryRun                bool            // Not from config file, set by flag
}

// DiscordConfig holds the bot account settings.
type DiscordConfig struct {
	Token    string   `mapstructure:"token"`
	Prefix   string   `mapstructure:"prefix"`
	OwnerIDs []string `mapstructure:"owner_ids"`
	ClientID string   `mapstructure:"client_id"` // falls back to the logged-in user ID
}

// ReactionsConfig paces reaction adds.
type ReactionsConfig struct {
	GlobalPerSecond  float64 `mapstructure:"global_per_second"`
	ChannelPerSecond float64 `mapstructure:"channel_per_second"`
}

// InviteConfig holds the default OAuth2 invite parameters.
type InviteConfig struct {
	Permissions int64  `mapstructure:"permissions"`
	Scopes      string `mapstructure:"scopes"`
}

// OsuConfig configures the osu! API client.
type OsuConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	CardURL         string `mapstructure:"card_url"`
	CacheSize       int    `mapstructure:"cache_size"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

// CacheTTL returns the lookup cache lifetime.
func (c OsuConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ImgbbConfig configures the imgbb client.
type ImgbbConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// ConfirmTimeout returns how long reacttermino waits for a confirmation.
func (c *AppConfig) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*AppConfig, error) {
	var cfg AppConfig

	v := viper.New()

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("discord.owner_ids", []string{})
	v.SetDefault("discord.client_id", "")
	v.SetDefault("database_path", "./cogbot.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.discord_level", "error")
	v.SetDefault("metrics_port", ":9090")
	v.SetDefault("encryption_key", "")
	v.SetDefault("proxy.type", "")
	v.SetDefault("proxy.address", "")
	v.SetDefault("proxy.username", "")
	v.SetDefault("proxy.password", "")
	v.SetDefault("reactions.global_per_second", 4.0)
	v.SetDefault("reactions.channel_per_second", 1.0)
	v.SetDefault("confirm_timeout_seconds", 60)
	v.SetDefault("invite.permissions", 0)
	v.SetDefault("invite.scopes", "bot")
	v.SetDefault("osu.base_url", "https://osu.ppy.sh/api")
	v.SetDefault("osu.card_url", "https://lemmmy.pw/osusig/sig.php?colour=pink&uname={username}&mode={mode}")
	v.SetDefault("osu.cache_size", 256)
	v.SetDefault("osu.cache_ttl_seconds", 120)
	v.SetDefault("imgbb.base_url", "https://api.imgbb.com/1")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cogbot")
		v.AddConfigPath("/etc/cogbot/")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("COGBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
