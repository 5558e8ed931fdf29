package assistant

import (
	"context"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/memory"
	"github.com/sandevgo/mnemo/pkg/log"
)

const (
	// contextWindow is how many stored messages constrain ranking and feed
	// the prompt history section.
	contextWindow = 10

	apologyReply = "Sorry, I couldn't reach the model just now. Give me a moment and try again."
)

// MemoryScanner finds facts to remember in turn text.
type MemoryScanner interface {
	Detect(ctx context.Context, text string) (core.Detection, error)
	DetectReply(ctx context.Context, text string) (core.Detection, error)
}

// Assistant runs one conversation turn end to end: memory extraction,
// fact ranking, the model call, and reply cleanup.
type Assistant struct {
	facts    core.FactsRepository
	messages core.MessagesRepository
	scanner  MemoryScanner
	model    core.ModelProvider
}

func NewAssistant(
	facts core.FactsRepository,
	messages core.MessagesRepository,
	scanner MemoryScanner,
	model core.ModelProvider,
) *Assistant {
	return &Assistant{
		facts:    facts,
		messages: messages,
		scanner:  scanner,
		model:    model,
	}
}

// Respond handles a single user turn and returns the assistant's reply.
// Gateway failures never bubble up as errors: the transcript gets a fixed
// apology and the real cause goes to the log.
func (a *Assistant) Respond(ctx context.Context, sessionID string, input string) (string, error) {
	logger := log.FromCtx(ctx)

	userMsg := core.Message{SessionID: sessionID, Role: core.RoleUser, Content: input}
	if _, err := a.messages.Insert(ctx, userMsg); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	det, err := a.scanner.Detect(ctx, input)
	if err != nil {
		return "", fmt.Errorf("memory extraction failed: %w", err)
	}
	if det.Detected {
		ack := fmt.Sprintf("I've remembered that %s is %s.", det.Key, det.Value)
		a.saveReply(ctx, sessionID, ack)
		return ack, nil
	}

	recent, err := a.messages.List(ctx, sessionID, contextWindow)
	if err != nil {
		return "", fmt.Errorf("failed to fetch history: %w", err)
	}

	allFacts, err := a.facts.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load facts: %w", err)
	}

	promptCtx := &core.PromptContext{
		Recent: recent,
		Facts:  memory.Rank(input, allFacts, recent, memory.DefaultMaxResults),
	}

	reply, err := a.model.Complete(ctx, input, promptCtx, "")
	if err != nil {
		logger.Error().Err(err).Str("session", sessionID).Msg("model call failed")
		a.saveReply(ctx, sessionID, apologyReply)
		return apologyReply, nil
	}

	replyDet, err := a.scanner.DetectReply(ctx, reply)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store fact from reply")
	}
	if replyDet.Detected && replyDet.FromJSON {
		reply = memory.Scrub(reply)
	}

	a.saveReply(ctx, sessionID, reply)
	return reply, nil
}

// saveReply persists an assistant message. The turn already has a reply to
// show, so storage trouble here is logged and swallowed.
func (a *Assistant) saveReply(ctx context.Context, sessionID string, content string) {
	msg := core.Message{SessionID: sessionID, Role: core.RoleAssistant, Content: content}
	if _, err := a.messages.Insert(ctx, msg); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to save assistant message")
	}
}
