package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/pkg/log"
)

const defaultSessionID = "cli-local"

type ReadLine struct {
	cfg       *config.AppConfig
	assistant *assistant.Assistant
	router    core.CmdRouter
	rl        *readline.Instance
}

func NewReadLine(a *assistant.Assistant, router core.CmdRouter, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:       cfg,
		assistant: a,
		router:    router,
		rl:        rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("chat started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if out, handled := r.router.Execute(ctx, defaultSessionID, line); handled {
			fmt.Fprintf(r.rl.Stdout(), "%s\n", out)
			continue
		}

		reply, err := r.assistant.Respond(ctx, defaultSessionID, line)
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n", reply)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
