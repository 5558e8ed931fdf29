package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/mnemo/internal/core"
)

type MemoryCommand struct {
	facts     core.FactsRepository
	formatter *ResponseFormatter
}

func NewMemoryCommand(facts core.FactsRepository) core.Command {
	return &MemoryCommand{
		facts:     facts,
		formatter: NewResponseFormatter(),
	}
}

func (c *MemoryCommand) Name() string {
	return "memory"
}

func (c *MemoryCommand) Description() string {
	return "List, forget or clear remembered facts"
}

func (c *MemoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.list(ctx)
	}

	switch args[0] {
	case "forget":
		if len(args) < 2 {
			return c.formatter.Usage("/memory forget <id>"), nil
		}
		return c.forget(ctx, args[1])
	case "clear":
		return c.clear(ctx)
	default:
		return c.formatter.Combine(
			c.formatter.Usage("/memory [forget <id> | clear]"),
		), nil
	}
}

func (c *MemoryCommand) list(ctx context.Context) (string, error) {
	facts, err := c.facts.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load facts: %w", err)
	}

	if len(facts) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Memory"),
			c.formatter.Label("Status", "Nothing remembered yet"),
			c.formatter.Tip("Say \"remember that my ... is ...\" and it will stick"),
		), nil
	}

	items := make([]string, len(facts))
	for i, f := range facts {
		when := time.UnixMilli(f.CreatedAt).Format("2006-01-02")
		items[i] = fmt.Sprintf("`#%d` **%s**: %s _(%s)_", f.ID, f.Key, f.Value, when)
	}

	return c.formatter.Combine(
		c.formatter.Info("Memory"),
		c.formatter.Label("Facts", strconv.Itoa(len(facts))),
		c.formatter.List(items),
	), nil
}

func (c *MemoryCommand) forget(ctx context.Context, rawID string) (string, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid fact id %q", rawID)
	}

	if err := c.facts.DeleteByID(ctx, id); err != nil {
		return "", fmt.Errorf("failed to forget fact: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Forgot fact #%d", id)), nil
}

func (c *MemoryCommand) clear(ctx context.Context) (string, error) {
	if err := c.facts.DeleteAll(ctx); err != nil {
		return "", fmt.Errorf("failed to clear memory: %w", err)
	}
	return c.formatter.Success("Memory cleared"), nil
}
