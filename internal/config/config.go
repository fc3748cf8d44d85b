package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	DB           DBConfig           `mapstructure:"db"`
	Cron         CronConfig         `mapstructure:"cron"`
	Kalshi       KalshiConfig       `mapstructure:"kalshi"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Search       SearchConfig       `mapstructure:"search"`
	Backfill     BackfillConfig     `mapstructure:"backfill"`
	PriceRefresh PriceRefreshConfig `mapstructure:"price_refresh"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Backfill     string `mapstructure:"backfill"`
	PriceRefresh string `mapstructure:"price_refresh"`
}

// KalshiConfig covers the trade API client. The base URL is fixed in the
// client; only the request timeout is tunable.
type KalshiConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig selects the similarity-search provider. "events" calls
// search_kalshi_events_with_markets and returns pre-grouped results;
// "markets" calls match_markets and reshapes the flat rows.
type SearchConfig struct {
	Provider string `mapstructure:"provider"`
}

type BackfillConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

type PriceRefreshConfig struct {
	Platform    string        `mapstructure:"platform"`
	MarketLimit int           `mapstructure:"market_limit"`
	Throttle    time.Duration `mapstructure:"throttle"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.backfill", "@every 1h")
	v.SetDefault("cron.price_refresh", "@every 10m")
	v.SetDefault("kalshi.timeout", "30s")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "text-embedding-3-small")
	v.SetDefault("openai.timeout", "30s")
	v.SetDefault("search.provider", "events")
	v.SetDefault("backfill.batch_size", 64)
	v.SetDefault("price_refresh.platform", "kalshi")
	v.SetDefault("price_refresh.market_limit", 500)
	v.SetDefault("price_refresh.throttle", "50ms")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
