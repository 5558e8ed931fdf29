package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

type OllamaConfig struct {
	BaseURL string `env:"MNEMO_OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	Model   string `env:"MNEMO_MODEL,required,notEmpty"`
}

func NewOllamaConfig(ctx context.Context) *OllamaConfig {
	c := &OllamaConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Ollama config")
	}
	return c
}
