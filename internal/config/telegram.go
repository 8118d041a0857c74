package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

// TelegramConfig is read only when ENABLE_TELEGRAM is set. The bot answers
// its owner and nobody else.
type TelegramConfig struct {
	Token       string        `env:"TELEGRAM_TOKEN,required,notEmpty"`
	OwnerID     int64         `env:"TELEGRAM_OWNER_ID,required"`
	PollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"10s"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c, err := parseTelegramConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func parseTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.OwnerID <= 0 {
		return nil, fmt.Errorf("TELEGRAM_OWNER_ID must be a positive user id, got %d", c.OwnerID)
	}
	if c.PollTimeout <= 0 {
		return nil, fmt.Errorf("TELEGRAM_POLL_TIMEOUT must be positive, got %s", c.PollTimeout)
	}
	return c, nil
}
