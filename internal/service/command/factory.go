package command

import (
	"github.com/sandevgo/mnemo/internal/core"
)

func NewCommands(
	facts core.FactsRepository,
	messages core.MessagesRepository,
	model core.ModelProvider,
) []core.Command {
	cmds := []core.Command{
		NewMemoryCommand(facts),
		NewHistoryCommand(messages),
		NewUnloadCommand(model),
	}
	return append(cmds, NewHelpCommand(cmds))
}
