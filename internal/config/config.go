package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminChatID      int64  `env:"ADMIN_CHAT_ID"`

	// Backend API
	APIBaseURL        string `env:"PORTAL_API_BASE_URL"`
	APITimeoutSeconds int    `env:"PORTAL_API_TIMEOUT_SECONDS" envDefault:"30"`

	// Storage
	SessionFilePath       string `env:"SESSION_FILE_PATH" envDefault:"data/sessions.json"`
	SubscriptionsFilePath string `env:"SUBSCRIPTIONS_FILE_PATH" envDefault:"data/subscriptions.json"`
	InteractionLogPath    string `env:"INTERACTION_LOG_PATH" envDefault:"logs/interactions.jsonl"`

	// Events digest
	DigestCronSpec string `env:"DIGEST_CRON_SPEC" envDefault:"0 9 * * *"`

	// Status server; 0 disables
	StatusPort int `env:"STATUS_PORT" envDefault:"0"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
