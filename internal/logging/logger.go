package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Console    bool   `mapstructure:"console"`
	TimeFormat string `mapstructure:"time_format"`
	// DiscordLevel is the discordgo library verbosity: error, warn, info or debug.
	DiscordLevel string `mapstructure:"discord_level"`
}

// Setup initializes the global logger and routes discordgo output through it.
func Setup(cfg Config) {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat})
	}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open log file")
		} else {
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat})
	}

	multi := zerolog.MultiLevelWriter(writers...)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn().Str("configured_level", cfg.Level).Msg("Invalid log level, defaulting to info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(level)
	}

	discordgo.Logger = discordLogger

	log.Info().Str("level", zerolog.GlobalLevel().String()).Msg("Logger initialized")
}

// DiscordLogLevel maps a level name to the discordgo session LogLevel.
func DiscordLogLevel(name string) int {
	switch name {
	case "debug":
		return discordgo.LogDebug
	case "info":
		return discordgo.LogInformational
	case "warn":
		return discordgo.LogWarning
	default:
		return discordgo.LogError
	}
}

func discordLogger(msgL, caller int, format string, a ...interface{}) {
	var ev *zerolog.Event
	switch msgL {
	case discordgo.LogError:
		ev = log.Error()
	case discordgo.LogWarning:
		ev = log.Warn()
	case discordgo.LogInformational:
		ev = log.Info()
	default:
		ev = log.Debug()
	}
	ev.Str("component", "discordgo").Msg(fmt.Sprintf(format, a...))
}

// ContextualLogger creates a logger with context fields.
func ContextualLogger(ctx map[string]interface{}) zerolog.Logger {
	return log.With().Fields(ctx).Logger()
}
