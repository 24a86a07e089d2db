package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:5050"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Market data
	CoingeckoAPIKey string `env:"COINGECKO_API_KEY"`

	// Starknet
	StarknetRPCURL string `env:"STARKNET_RPC_URL" envDefault:"https://starknet-mainnet.public.blastapi.io/rpc/v0_7"`

	// Twitter insights store (optional, insights context is skipped when empty)
	InsightsDSN string `env:"INSIGHTS_DB_DSN"`

	// Conversation
	MessageLimit int `env:"MESSAGE_LIMIT" envDefault:"5"`

	// Yields refresh schedule (cron spec, UTC)
	YieldsRefreshSpec string `env:"YIELDS_REFRESH_SPEC" envDefault:"0 * * * *"`

	// Storage
	TurnLogPath string `env:"TURN_LOG_PATH" envDefault:"logs/turns.jsonl"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
