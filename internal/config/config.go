package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath          = "config.toml"
	DefaultHTTPAddr            = ":8080"
	DefaultUpdatesChannel      = "@quickgram_downloader"
	DefaultUpdatesChannelURL   = "https://t.me/quickgram_downloader"
	DefaultResolverBaseURL     = "https://instagram-media-api.vercel.app"
	DefaultResolverTimeoutSecs = 15
	DefaultGateTimeoutSecs     = 10
	DefaultInitDataMaxAgeSecs  = 3600
	DefaultMiniAppPath         = "web/miniapp.html"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Bot      BotConfig      `toml:"bot"`
	Gate     GateConfig     `toml:"gate"`
	Resolver ResolverConfig `toml:"resolver"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	PublicURL   string `toml:"public_url"`
	MiniAppPath string `toml:"miniapp_path"`
}

type BotConfig struct {
	Token              string `toml:"token"`
	WebhookSecret      string `toml:"webhook_secret"`
	LogChannelID       int64  `toml:"log_channel_id"`
	InitDataMaxAgeSecs int    `toml:"initdata_max_age_seconds"`
}

type GateConfig struct {
	UpdatesChannel    string `toml:"updates_channel"`
	UpdatesChannelURL string `toml:"updates_channel_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

type ResolverConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Load reads configuration from a TOML file, starting from defaults. A
// missing file is not an error. Deploy-time values (bot token, webhook
// secret, public URL, log channel, listen port) may be overridden from the
// environment after the file is applied.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:        DefaultHTTPAddr,
			MiniAppPath: DefaultMiniAppPath,
		},
		Bot: BotConfig{
			InitDataMaxAgeSecs: DefaultInitDataMaxAgeSecs,
		},
		Gate: GateConfig{
			UpdatesChannel:    DefaultUpdatesChannel,
			UpdatesChannelURL: DefaultUpdatesChannelURL,
			TimeoutSeconds:    DefaultGateTimeoutSecs,
		},
		Resolver: ResolverConfig{
			BaseURL:        DefaultResolverBaseURL,
			TimeoutSeconds: DefaultResolverTimeoutSecs,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("QUICKGRAM_BOT_TOKEN")); v != "" {
		cfg.Bot.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("QUICKGRAM_WEBHOOK_SECRET")); v != "" {
		cfg.Bot.WebhookSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("QUICKGRAM_PUBLIC_URL")); v != "" {
		cfg.Server.PublicURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("QUICKGRAM_LOG_CHANNEL_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Bot.LogChannelID = id
		}
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Server.Addr = ":" + v
	}
}
