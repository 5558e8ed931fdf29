package memory

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/mnemo/internal/core"
)

const (
	// historyLimit caps how many trailing messages are rendered into the
	// prompt.
	historyLimit = 6

	factsHeader   = "Things you know about the user:"
	historyHeader = "Recent conversation:"
)

// DefaultInstructions is the fixed behavioral block sent as the system
// prompt when no override is supplied.
const DefaultInstructions = `You are Mnemo, a warm and capable personal assistant running entirely on the user's own machine.

Response rules:
- Answer directly and concisely. Do not pad replies with filler or repeat the question back.
- If you do not know something, say so plainly instead of guessing.
- Use the remembered facts below when they are relevant to the question. Never invent facts that are not listed.

Memory protocol:
- When, and only when, the user explicitly asks you to remember, save, store or note something, append exactly one JSON object of the form {"memory": {"key": "<short label>", "value": "<the thing to remember>"}} to your reply.
- Never emit that JSON for things the user merely mentions in passing.

Tone:
- Match the user's register: casual when they are casual, precise when they are technical.
- Never state or hint at which tone mode you are using.`

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

type Composer struct {
	// TokenBudget bounds the rendered prompt. 0 disables the bound.
	TokenBudget int
}

func NewComposer(tokenBudget int) *Composer {
	return &Composer{TokenBudget: tokenBudget}
}

// Compose assembles the system prompt: instructions, remembered facts in
// ranker order, then at most the last 6 conversation turns. Pure string
// assembly, deterministic for identical inputs.
func (c *Composer) Compose(instructions string, facts []core.Fact, recent []core.Message) string {
	if instructions == "" {
		instructions = DefaultInstructions
	}

	history := historyLines(recent)
	prompt := render(instructions, facts, history)

	if c.TokenBudget <= 0 {
		return prompt
	}

	// When over budget, drop oldest history lines first. Instructions and
	// facts are never dropped.
	for countTokens(prompt) > c.TokenBudget && len(history) > 0 {
		history = history[1:]
		prompt = render(instructions, facts, history)
	}
	return prompt
}

func render(instructions string, facts []core.Fact, history []string) string {
	var b strings.Builder
	b.WriteString(instructions)

	if len(facts) > 0 {
		b.WriteString("\n\n")
		b.WriteString(factsHeader)
		for _, f := range facts {
			b.WriteString("\n* ")
			b.WriteString(f.Key)
			b.WriteString(": ")
			b.WriteString(f.Value)
		}
	}

	if len(history) > 0 {
		b.WriteString("\n\n")
		b.WriteString(historyHeader)
		for _, line := range history {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}

	return b.String()
}

func historyLines(recent []core.Message) []string {
	// A single message is the turn in flight; only render history once a
	// real exchange exists.
	if len(recent) <= 1 {
		return nil
	}
	if len(recent) > historyLimit {
		recent = recent[len(recent)-historyLimit:]
	}

	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		speaker := "Assistant"
		if m.FromUser() {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return lines
}

func countTokens(text string) int {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})
	if tk == nil {
		// Encoder unavailable (offline first run): rough bytes/4 estimate.
		return len(text) / 4
	}
	return len(tk.Encode(text, nil, nil))
}
