package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/quickgram/quickgram/internal/auth"
	"github.com/quickgram/quickgram/internal/config"
	"github.com/quickgram/quickgram/internal/handlers"
	"github.com/quickgram/quickgram/internal/logger"
	"github.com/quickgram/quickgram/internal/membership"
	"github.com/quickgram/quickgram/internal/relay"
	"github.com/quickgram/quickgram/internal/resolver"
	"github.com/quickgram/quickgram/internal/server"
	"github.com/quickgram/quickgram/internal/telegram"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBotAPI,
			provideTransport,
			provideVerifier,
			provideGate,
			provideResolver,
			providePipeline,
			provideBot,
			provideServerHandler(providePingHandler),
			provideServerHandler(provideAppHandler),
			provideServerHandler(provideSubmitHandler),
			provideServerHandler(provideWebhookHandler),
			provideServer,
		),
		fx.Invoke(
			registerWebhook,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Bot.Token == "" {
		return config.Config{}, errors.New("bot token is required (set QUICKGRAM_BOT_TOKEN or bot.token)")
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideBotAPI(cfg config.Config) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return bot, nil
}

func provideTransport(log *slog.Logger, bot *tgbotapi.BotAPI, cfg config.Config) *telegram.Transport {
	return telegram.NewTransport(log, bot, cfg.Bot.LogChannelID)
}

func provideVerifier(cfg config.Config) *auth.Verifier {
	return auth.NewVerifier(cfg.Bot.Token, time.Duration(cfg.Bot.InitDataMaxAgeSecs)*time.Second)
}

func provideGate(log *slog.Logger, transport *telegram.Transport, cfg config.Config) *membership.Gate {
	return membership.NewGate(
		log,
		transport,
		cfg.Gate.UpdatesChannel,
		time.Duration(cfg.Gate.TimeoutSeconds)*time.Second,
		transport,
	)
}

func provideResolver(log *slog.Logger, cfg config.Config) *resolver.Client {
	return resolver.NewClient(log, cfg.Resolver.BaseURL, time.Duration(cfg.Resolver.TimeoutSeconds)*time.Second)
}

func providePipeline(log *slog.Logger, transport *telegram.Transport, client *resolver.Client) *relay.Pipeline {
	return relay.NewPipeline(log, transport, client, transport)
}

func provideBot(log *slog.Logger, transport *telegram.Transport, gate *membership.Gate, pipeline *relay.Pipeline, cfg config.Config) *telegram.Bot {
	return telegram.NewBot(log, transport, gate, pipeline, cfg.Gate.UpdatesChannelURL)
}

func providePingHandler(log *slog.Logger) *handlers.PingHandler {
	return handlers.NewPingHandler(log)
}

func provideAppHandler(cfg config.Config) *handlers.AppHandler {
	return handlers.NewAppHandler(cfg.Server.MiniAppPath)
}

func provideSubmitHandler(log *slog.Logger, verifier *auth.Verifier, gate *membership.Gate, pipeline *relay.Pipeline, transport *telegram.Transport) *handlers.SubmitHandler {
	return handlers.NewSubmitHandler(log, verifier, gate, pipeline, transport)
}

func provideWebhookHandler(log *slog.Logger, transport *telegram.Transport, bot *telegram.Bot, cfg config.Config) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, transport.Token(), cfg.Bot.WebhookSecret, bot)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Config.Server.Addr, params.Logger, params.ServerHandlers...)
}

// registerWebhook points Telegram at the public ingress. Without a public
// URL the HTTP surface still runs, but chat updates will not arrive.
func registerWebhook(lc fx.Lifecycle, log *slog.Logger, transport *telegram.Transport, cfg config.Config) {
	lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
		if cfg.Server.PublicURL == "" {
			log.Warn("no public URL configured, skipping webhook registration")
			return nil
		}
		if err := transport.RegisterWebhook(cfg.Server.PublicURL, cfg.Bot.WebhookSecret); err != nil {
			return fmt.Errorf("register webhook: %w", err)
		}
		log.Info("webhook registered", slog.String("public_url", cfg.Server.PublicURL))
		return nil
	}})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting HTTP server", slog.String("addr", cfg.Server.Addr))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
