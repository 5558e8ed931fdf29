package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MNEMO_RUNTIME_PATH" envDefault:".mnemo"`

	// Transport Flags
	EnableTelegram bool `env:"MNEMO_ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"MNEMO_ENABLE_CLI" envDefault:"true"`

	// Upper bound on the composed system prompt, in tokens.
	PromptTokenBudget int `env:"MNEMO_PROMPT_TOKEN_BUDGET" envDefault:"2048"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "mnemo.db")
}
