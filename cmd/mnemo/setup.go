package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/providers/llm"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/internal/service/command"
	"github.com/sandevgo/mnemo/internal/service/memory"
	"github.com/sandevgo/mnemo/internal/storage/sqlite"
	"github.com/sandevgo/mnemo/internal/transport/cli"
	"github.com/sandevgo/mnemo/internal/transport/telegram"
	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/sandevgo/mnemo/pkg/retry"
	"github.com/sandevgo/mnemo/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ollamaCfg := config.NewOllamaConfig(ctx)

	// 2. Storage
	db, factsRepo, messagesRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Model gateway
	composer := memory.NewComposer(appCfg.PromptTokenBudget)
	model := llm.NewOllama(ollamaCfg.BaseURL, ollamaCfg.Model, composer)

	if err := waitForBackend(ctx, model); err != nil {
		logger.Fatal().Err(err).Str("url", ollamaCfg.BaseURL).Msg("model backend unreachable")
	}

	// 4. Conversation pipeline
	extractor := memory.NewExtractor(factsRepo)
	a := assistant.NewAssistant(factsRepo, messagesRepo, extractor, model)

	// 5. Chat commands
	router := command.New(command.NewCommands(factsRepo, messagesRepo, model))

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, a, router)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, core.FactsRepository, core.MessagesRepository, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, nil, err
	}
	return db, sqlite.NewFactsRepo(db), sqlite.NewMessagesRepo(db), nil
}

func waitForBackend(ctx context.Context, model *llm.Ollama) error {
	logger := log.FromCtx(ctx)

	cfg := retry.Backoff()
	cfg.Attempts = 10

	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		if err := model.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("model backend not ready yet")
			return err
		}
		return nil
	})
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	a *assistant.Assistant,
	router core.CmdRouter,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(a, router, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a, router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
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
