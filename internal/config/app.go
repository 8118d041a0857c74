package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
)

type AppConfig struct {
	RuntimePath string `env:"MNEMO_RUNTIME_PATH" envDefault:".mnemo"`
	// Memory and chat history backend: sqlite or json
	Store string `env:"MNEMO_STORE" envDefault:"sqlite"`
	// Completion backend: openai or anthropic
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"`

	// Transport Flags
	EnableHTTP     bool   `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool   `env:"ENABLE_CLI" envDefault:"false"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":5001"`

	// Chat entries sent along with each prompt
	ChatHistoryWindow int `env:"CHAT_HISTORY_WINDOW" envDefault:"5"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "mnemo.db")
}

func (c AppConfig) GetMemoriesPath() string {
	return filepath.Join(c.RuntimePath, "memories.json")
}

func (c AppConfig) GetChatHistoryPath() string {
	return filepath.Join(c.RuntimePath, "chat_history.json")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}
