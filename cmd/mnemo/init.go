package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/pkg/log"
	mnemoenv "github.com/sandevgo/mnemo/pkg/env"
	"github.com/spf13/cobra"
)

type initOptions struct {
	force         bool
	provider      string
	store         string
	openAIKey     string
	anthropicKey  string
	telegramToken string
	ownerID       int64
}

var initOpts initOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .env into the runtime directory",
	Long: `Creates the runtime directory and writes a .env holding every setting
with its default value plus the credentials passed as flags.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		path, err := writeEnvFile(ctx, config.GetRuntimePath(), initOpts.force)
		if err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("path", path).Msg("runtime initialized, run 'mnemo start' next")
		return nil
	},
}

func init() {
	f := initCmd.Flags()
	f.BoolVarP(&initOpts.force, "force", "f", false, "overwrite an existing .env")
	f.StringVar(&initOpts.provider, "provider", "openai", "completion provider: openai or anthropic")
	f.StringVar(&initOpts.store, "store", config.StoreSQLite, "store backend: sqlite or json")
	f.StringVar(&initOpts.openAIKey, "openai-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key, used for embeddings")
	f.StringVar(&initOpts.anthropicKey, "anthropic-key", os.Getenv("ANTHROPIC_API_KEY"), "Anthropic API key")
	f.StringVar(&initOpts.telegramToken, "telegram-token", "", "Telegram bot token, enables the bot")
	f.Int64Var(&initOpts.ownerID, "telegram-owner", 0, "Telegram user id allowed to chat")
	rootCmd.AddCommand(initCmd)
}

func writeEnvFile(ctx context.Context, runtimePath string, force bool) (string, error) {
	path := filepath.Join(runtimePath, ".env")
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	cfgs, err := defaultConfigs()
	if err != nil {
		return "", err
	}

	content, err := mnemoenv.MarshalEnv(cfgs...)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(runtimePath, 0o700); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.FromCtx(ctx).Debug().Int("bytes", len(content)).Msg("wrote .env")
	return path, nil
}

// defaultConfigs parses every config from defaults only and overlays the
// init flags.
func defaultConfigs() ([]any, error) {
	opts := env.Options{Environment: map[string]string{}}

	app := &config.AppConfig{}
	recall := &config.RecallConfig{}
	emb := &config.EmbeddingConfig{}
	comp := &config.CompletionConfig{}
	for _, c := range []any{app, recall, emb, comp} {
		if err := env.ParseWithOptions(c, opts); err != nil {
			return nil, err
		}
	}

	// The runtime path is where the file lives
	app.RuntimePath = ""
	app.LLMProvider = initOpts.provider
	app.Store = initOpts.store

	cfgs := []any{app, recall, emb, comp}

	oa := &config.OpenAIConfig{}
	if err := env.ParseWithOptions(oa, env.Options{Environment: map[string]string{"OPENAI_API_KEY": "-"}}); err != nil {
		return nil, err
	}
	oa.APIKey = initOpts.openAIKey
	cfgs = append(cfgs, oa)

	if initOpts.provider == "anthropic" {
		ant := &config.AnthropicConfig{}
		if err := env.ParseWithOptions(ant, env.Options{Environment: map[string]string{"ANTHROPIC_API_KEY": "-"}}); err != nil {
			return nil, err
		}
		ant.APIKey = initOpts.anthropicKey
		cfgs = append(cfgs, ant)
	}

	if initOpts.telegramToken != "" {
		app.EnableTelegram = true
		cfgs = append(cfgs, &config.TelegramConfig{Token: initOpts.telegramToken, OwnerID: initOpts.ownerID})
	}

	return cfgs, nil
}
