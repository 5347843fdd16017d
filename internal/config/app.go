package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Logging struct {
	Level string `mapstructure:"level"`
}

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type BangkokAPI struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Family  string `mapstructure:"family"`
}

type TinkoffAPI struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Figi    string `mapstructure:"figi"`
	Ticker  string `mapstructure:"ticker"`
}

type Telegram struct {
	Token      string `mapstructure:"token"`
	WebhookURL string `mapstructure:"webhook_url"`
	UseWebhook bool   `mapstructure:"use_webhook"`
}

type Staleness struct {
	ThresholdSeconds int `mapstructure:"threshold_seconds"`
}

type Warmup struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

type Commissions struct {
	BrokerPct    float64 `mapstructure:"broker_pct"`
	WirePct      float64 `mapstructure:"wire_pct"`
	ReceivingPct float64 `mapstructure:"receiving_pct"`
}

type Cache struct {
	FamilyTTLSeconds int `mapstructure:"family_ttl_seconds"`
}

type AppConfig struct {
	Logging     Logging     `mapstructure:"logging"`
	HTTPServer  HTTPServer  `mapstructure:"http_server"`
	HTTPClient  HTTPClient  `mapstructure:"http_client"`
	Bangkok     BangkokAPI  `mapstructure:"bangkok"`
	Tinkoff     TinkoffAPI  `mapstructure:"tinkoff"`
	Telegram    Telegram    `mapstructure:"telegram"`
	Staleness   Staleness   `mapstructure:"staleness"`
	Warmup      Warmup      `mapstructure:"warmup"`
	Commissions Commissions `mapstructure:"commissions"`
	Cache       Cache       `mapstructure:"cache"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	// .env is optional; deployment environments supply real env vars
	_ = godotenv.Load()

	viper.SetConfigFile("config.yaml")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("http_server.port", "8080")
	viper.SetDefault("http_client.timeout_seconds", 10)
	viper.SetDefault("bangkok.base_url", "https://bbl-sea-apim-p.azure-api.net/api/ExchangeRateService")
	viper.SetDefault("bangkok.family", "USD50")
	viper.SetDefault("tinkoff.base_url", "https://invest-public-api.tinkoff.ru/rest")
	viper.SetDefault("tinkoff.figi", "BBG0013HGFT4")
	// reference staleness threshold: 1 hour 1 minute
	viper.SetDefault("staleness.threshold_seconds", 3660)
	viper.SetDefault("warmup.interval_seconds", 0)
	viper.SetDefault("commissions.broker_pct", 2.257)
	viper.SetDefault("commissions.wire_pct", 3.0)
	viper.SetDefault("commissions.receiving_pct", 0.21)
	viper.SetDefault("cache.family_ttl_seconds", 3600)

	// upstream tokens and delivery env vars
	_ = viper.BindEnv("bangkok.token", "TOKEN_BANGKOK")
	_ = viper.BindEnv("tinkoff.token", "TOKEN_TINK")
	_ = viper.BindEnv("telegram.token", "TELEBOT")
	_ = viper.BindEnv("telegram.webhook_url", "WEBHOOK_URL")
	_ = viper.BindEnv("http_server.port", "PORT")

	// tuning env vars
	_ = viper.BindEnv("logging.level", "LOG_LEVEL")
	_ = viper.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = viper.BindEnv("staleness.threshold_seconds", "STALENESS_THRESHOLD_SECONDS")
	_ = viper.BindEnv("warmup.interval_seconds", "WARMUP_INTERVAL_SECONDS")
	_ = viper.BindEnv("tinkoff.ticker", "TINKOFF_TICKER")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
