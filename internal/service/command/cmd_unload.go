package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
)

type UnloadCommand struct {
	model     core.ModelProvider
	formatter *ResponseFormatter
}

func NewUnloadCommand(model core.ModelProvider) core.Command {
	return &UnloadCommand{
		model:     model,
		formatter: NewResponseFormatter(),
	}
}

func (c *UnloadCommand) Name() string {
	return "unload"
}

func (c *UnloadCommand) Description() string {
	return "Ask the backend to evict the model from memory"
}

func (c *UnloadCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if err := c.model.Unload(ctx); err != nil {
		return "", fmt.Errorf("failed to unload model: %w", err)
	}
	return c.formatter.Success("Model unloaded"), nil
}
