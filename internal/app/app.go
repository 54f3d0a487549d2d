package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/cogs"
	"github.com/haytac/cogbot/internal/config"
	"github.com/haytac/cogbot/internal/database"
	"github.com/haytac/cogbot/internal/imgbb"
	"github.com/haytac/cogbot/internal/logging"
	"github.com/haytac/cogbot/internal/metrics"
	"github.com/haytac/cogbot/internal/osu"
	"github.com/haytac/cogbot/internal/proxy"
	"github.com/rs/zerolog/log"
	netproxy "golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"
)

const intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentGuildMessageReactions |
	discordgo.IntentDirectMessages |
	discordgo.IntentDirectMessageReactions |
	discordgo.IntentMessageContent

// Application holds all dependencies for the app.
type Application struct {
	Config  *config.AppConfig
	DB      *database.DB
	Session *discordgo.Session
	Bot     *bot.Bot

	Settings *database.SettingsStore
	Tokens   *database.APITokenStore
}

// OpenStores connects to the database and builds the stores shared by the
// bot and the CLI.
func OpenStores(cfg *config.AppConfig) (*database.DB, *database.SettingsStore, *database.APITokenStore, error) {
	key, err := database.DeriveKey(cfg.EncryptionKey)
	if errors.Is(err, database.ErrInsecureKey) {
		log.Warn().Msg("Configuration 'encryption_key' (or COGBOT_ENCRYPTION_KEY) is not set. API keys are stored with an insecure default key.")
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, database.NewSettingsStore(db), database.NewAPITokenStore(db, key), nil
}

// NewApplication creates and initializes a new application instance.
func NewApplication(cfg *config.AppConfig) (*Application, error) {
	if cfg.Discord.Token == "" {
		return nil, errors.New("discord.token is not configured")
	}

	db, settings, tokens, err := OpenStores(cfg)
	if err != nil {
		return nil, err
	}

	clientFactory := proxy.NewHTTPClientFactory(cfg.Proxy)
	session, err := newSession(cfg, clientFactory)
	if err != nil {
		db.Close()
		return nil, err
	}

	applier := bot.NewReactionApplier(session, bot.ApplierConfig{
		GlobalPerSecond:  cfg.Reactions.GlobalPerSecond,
		ChannelPerSecond: cfg.Reactions.ChannelPerSecond,
		DryRun:           cfg.DryRun,
	})
	b := bot.New(session, bot.Options{
		Prefix:   cfg.Discord.Prefix,
		OwnerIDs: cfg.Discord.OwnerIDs,
		Applier:  applier,
		Resolver: bot.NewStateEmojiResolver(session.State),
	})

	osuClient := osu.NewClient(clientFactory, osu.Config{
		BaseURL:   cfg.Osu.BaseURL,
		CacheSize: cfg.Osu.CacheSize,
		CacheTTL:  cfg.Osu.CacheTTL(),
	})
	loaded := []bot.Cog{
		cogs.NewPhun(),
		cogs.NewReactLog(settings),
		cogs.NewReactTermino(cfg.ConfirmTimeout()),
		cogs.NewImgBB(tokens, imgbb.NewClient(clientFactory, cfg.Imgbb.BaseURL)),
		cogs.NewOsu(osuClient, tokens, settings, cfg.Osu.CardURL),
		cogs.NewCounter(),
		cogs.NewBotInvite(settings, cogs.InviteDefaults{
			ClientID:    cfg.Discord.ClientID,
			Permissions: cfg.Invite.Permissions,
			Scopes:      strings.Fields(cfg.Invite.Scopes),
		}),
		cogs.NewAPIKeys(tokens),
	}
	for _, cog := range loaded {
		if err := b.AddCog(cog); err != nil {
			db.Close()
			return nil, fmt.Errorf("loading cog %s: %w", cog.Name(), err)
		}
		log.Debug().Str("cog", cog.Name()).Msg("Cog loaded")
	}

	return &Application{
		Config:   cfg,
		DB:       db,
		Session:  session,
		Bot:      b,
		Settings: settings,
		Tokens:   tokens,
	}, nil
}

// newSession builds the Discord session, routing REST and gateway traffic
// through the configured proxy.
func newSession(cfg *config.AppConfig, clientFactory *proxy.DefaultHTTPClientFactory) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.LogLevel = logging.DiscordLogLevel(cfg.Log.DiscordLevel)
	session.Identify.Intents = intents

	client, err := clientFactory.GetClient()
	if err != nil {
		return nil, fmt.Errorf("failed to build http client: %w", err)
	}
	session.Client = client

	if !cfg.Proxy.Enabled() {
		return session, nil
	}
	// The default dialer is a package global, so proxy settings go on a copy.
	dialer := *session.Dialer
	switch cfg.Proxy.Type {
	case "http", "https":
		u, err := cfg.Proxy.URL()
		if err != nil {
			return nil, err
		}
		dialer.Proxy = http.ProxyURL(u)
	case "socks5":
		d, err := cfg.Proxy.SOCKS5Dialer()
		if err != nil {
			return nil, err
		}
		contextDialer, ok := d.(netproxy.ContextDialer)
		if !ok {
			return nil, errors.New("SOCKS5 dialer does not implement proxy.ContextDialer")
		}
		dialer.Proxy = nil
		dialer.NetDialContext = contextDialer.DialContext
	}
	session.Dialer = &dialer
	log.Info().Str("type", cfg.Proxy.Type).Str("address", cfg.Proxy.Address).Msg("Discord traffic routed through proxy")
	return session, nil
}

// Run connects to Discord and blocks until a signal arrives, ctx is done or a
// cog requests a shutdown. The returned code is the process exit code.
func (app *Application) Run(ctx context.Context) (int, error) {
	log.Info().Msg("Starting application...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, h := range app.Bot.Handlers(ctx) {
		app.Session.AddHandler(h)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(gctx, app.Config.MetricsPort)
	})

	if err := app.Session.Open(); err != nil {
		cancel()
		_ = g.Wait()
		app.DB.Close()
		return 1, fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Info().Str("prefix", app.Bot.Prefix()).Int("cogs", len(app.Bot.Cogs())).Msg("Connected to Discord")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	code := bot.ExitShutdown
	select {
	case s := <-sigCh:
		log.Info().Str("signal", s.String()).Msg("Received shutdown signal")
	case <-gctx.Done():
		log.Info().Msg("Application context done, shutting down")
	case code = <-app.Bot.ShutdownRequested():
		log.Info().Int("exit_code", code).Msg("Shutdown requested from Discord")
	}

	log.Info().Msg("Closing Discord session...")
	if err := app.Session.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Discord session")
	}

	cancel()
	err := g.Wait()
	if err != nil {
		log.Error().Err(err).Msg("Metrics server stopped with error")
	}

	log.Info().Msg("Closing database connection...")
	if errDB := app.DB.Close(); errDB != nil {
		log.Error().Err(errDB).Msg("Error closing database")
	}

	log.Info().Msg("Application shut down gracefully.")
	return code, err
}
