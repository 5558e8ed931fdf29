package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
)

type HistoryCommand struct {
	messages  core.MessagesRepository
	formatter *ResponseFormatter
}

func NewHistoryCommand(messages core.MessagesRepository) core.Command {
	return &HistoryCommand{
		messages:  messages,
		formatter: NewResponseFormatter(),
	}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Clear the conversation history of this session"
}

func (c *HistoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 || args[0] != "clear" {
		return c.formatter.Usage("/history clear"), nil
	}

	if err := c.messages.DeleteAll(ctx, sessionID); err != nil {
		return "", fmt.Errorf("failed to clear history: %w", err)
	}

	return c.formatter.Success("History cleared"), nil
}
