package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/providers/embedder"
	"github.com/sandevgo/mnemo/internal/providers/llm"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/internal/service/command"
	"github.com/sandevgo/mnemo/internal/service/embedding"
	"github.com/sandevgo/mnemo/internal/service/recall"
	"github.com/sandevgo/mnemo/internal/storage/jsonfile"
	"github.com/sandevgo/mnemo/internal/storage/sqlite"
	"github.com/sandevgo/mnemo/internal/transport/cli"
	"github.com/sandevgo/mnemo/internal/transport/http"
	"github.com/sandevgo/mnemo/internal/transport/telegram"
	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/sandevgo/mnemo/pkg/srv"
)

// NewServices wires the application. stop ends the run when the terminal
// chat is left.
func NewServices(ctx context.Context, stop context.CancelFunc) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	recallCfg := config.NewRecallConfig(ctx)
	embCfg := config.NewEmbeddingConfig(ctx)
	compCfg := config.NewCompletionConfig(ctx)

	// 2. Storage
	store, err := initStore(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(store.Close))

	// 3. Embeddings behind the LRU cache
	cache, err := embedding.NewCache(
		embedder.NewOpenAI(config.NewOpenAIConfig(ctx), embCfg),
		embedding.Options{
			Capacity:   embCfg.CacheSize,
			Dimensions: embCfg.Dimensions,
			Timeout:    embCfg.Timeout,
			MaxRetries: embCfg.MaxRetries,
		},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedding cache")
	}

	// 4. Completion provider
	completer, err := llm.NewCompleter(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 5. Assistant and slash commands
	opts := assistant.DefaultOptions()
	opts.Recall = recallOptions(recallCfg)
	opts.Consolidator = recall.Consolidator{MaxFactor: recallCfg.MaxConsolidation}
	opts.HistoryWindow = appCfg.ChatHistoryWindow
	opts.Generate = core.GenerateOptions{Temperature: compCfg.Temperature, MaxTokens: compCfg.MaxTokens}
	opts.GenerateTimeout = compCfg.Timeout

	asst := assistant.NewService(cache, store, completer, opts)
	router := command.NewRouter(asst, cache)

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, asst, router, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Fatal().Msg("no transport enabled, set ENABLE_HTTP, ENABLE_TELEGRAM or ENABLE_CLI")
	}
	services = append(services, transports...)

	return services
}

func recallOptions(cfg *config.RecallConfig) recall.Options {
	opts := recall.DefaultOptions()
	opts.SimilarityThreshold = cfg.SimilarityThreshold
	opts.ProbabilityThreshold = cfg.ProbabilityThreshold
	opts.MaxResults = cfg.MaxResults
	opts.Elapsed = recall.ElapsedMode(cfg.ElapsedMode)
	return opts
}

func initStore(ctx context.Context, cfg *config.AppConfig) (core.Store, error) {
	logger := log.FromCtx(ctx)

	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlite.NewStore(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.GetDatabasePath()).Msg("using sqlite store")
		return store, nil
	case config.StoreJSON:
		store, err := jsonfile.Open(ctx, cfg.GetMemoriesPath(), cfg.GetChatHistoryPath())
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.GetRuntimePath()).Msg("using json file store")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Store)
	}
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	asst *assistant.Service,
	router core.CmdRouter,
	stop context.CancelFunc,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableHTTP {
		services = append(services, http.NewServer(cfg.HTTPAddr, asst, http.Recovery(ctx)))
	}

	if cfg.EnableTelegram {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), asst, router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(asst, router, cfg.GetInputHistoryPath(), stop)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
