package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/tracing"
)

type Config struct {
	AppConfig *AppConfig
	Logger    *logger.Config
	Tracing   *tracing.JaegerConfig
	IMAP      *IMAPConfig
	SMTP      *SMTPConfig
	OpenAI    *OpenAIConfig
	Reply     *ReplyConfig
	Ledger    *LedgerConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig: &AppConfig{},
		Logger:    &logger.Config{},
		Tracing:   &tracing.JaegerConfig{},
		IMAP:      &IMAPConfig{},
		SMTP:      &SMTPConfig{},
		OpenAI:    &OpenAIConfig{},
		Reply:     &ReplyConfig{},
		Ledger:    &LedgerConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
