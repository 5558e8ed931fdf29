package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFacts struct {
	facts     []core.Fact
	insertErr error
	nextID    int64
}

func (f *fakeFacts) Insert(ctx context.Context, fact core.Fact) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	fact.ID = f.nextID
	f.facts = append(f.facts, fact)
	return fact.ID, nil
}

func (f *fakeFacts) Update(ctx context.Context, fact core.Fact) error { return nil }

func (f *fakeFacts) ListAll(ctx context.Context) ([]core.Fact, error) {
	out := make([]core.Fact, len(f.facts))
	copy(out, f.facts)
	return out, nil
}

func (f *fakeFacts) Search(ctx context.Context, substring string) ([]core.Fact, error) {
	return nil, nil
}

func (f *fakeFacts) DeleteByID(ctx context.Context, id int64) error { return nil }
func (f *fakeFacts) DeleteAll(ctx context.Context) error            { return nil }

type fakeMessages struct {
	msgs      []core.Message
	insertErr error
	nextID    int64
}

func (m *fakeMessages) Insert(ctx context.Context, msg core.Message) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.nextID++
	msg.ID = m.nextID
	m.msgs = append(m.msgs, msg)
	return msg.ID, nil
}

func (m *fakeMessages) List(ctx context.Context, sessionID string, limit int) ([]core.Message, error) {
	var session []core.Message
	for _, msg := range m.msgs {
		if msg.SessionID == sessionID {
			session = append(session, msg)
		}
	}
	if limit > 0 && len(session) > limit {
		session = session[len(session)-limit:]
	}
	return session, nil
}

func (m *fakeMessages) DeleteAll(ctx context.Context, sessionID string) error {
	m.msgs = nil
	return nil
}

type fakeModel struct {
	reply     string
	err       error
	calls     int
	promptCtx *core.PromptContext
}

func (f *fakeModel) Complete(ctx context.Context, message string, promptCtx *core.PromptContext, systemOverride string) (string, error) {
	f.calls++
	f.promptCtx = promptCtx
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) Unload(ctx context.Context) error { return nil }

func newTestAssistant(model *fakeModel) (*Assistant, *fakeFacts, *fakeMessages) {
	facts := &fakeFacts{}
	messages := &fakeMessages{}
	a := NewAssistant(facts, messages, memory.NewExtractor(facts), model)
	return a, facts, messages
}

func TestRespond_RememberShortCircuits(t *testing.T) {
	model := &fakeModel{reply: "should not be used"}
	a, facts, messages := newTestAssistant(model)

	reply, err := a.Respond(context.Background(), "s1", "Remember that my birthday is June 5th")
	require.NoError(t, err)

	assert.Equal(t, "I've remembered that birthday is June 5th.", reply)
	assert.Zero(t, model.calls)

	require.Len(t, facts.facts, 1)
	assert.Equal(t, "birthday", facts.facts[0].Key)
	assert.Equal(t, "June 5th", facts.facts[0].Value)

	require.Len(t, messages.msgs, 2)
	assert.Equal(t, core.RoleUser, messages.msgs[0].Role)
	assert.Equal(t, core.RoleAssistant, messages.msgs[1].Role)
	assert.Equal(t, reply, messages.msgs[1].Content)
}

func TestRespond_RememberThenRecall(t *testing.T) {
	model := &fakeModel{reply: "Your birthday is June 5th."}
	a, facts, _ := newTestAssistant(model)
	ctx := context.Background()

	_, err := a.Respond(ctx, "s1", "Remember that my birthday is June 5th")
	require.NoError(t, err)

	_, err = facts.Insert(ctx, core.Fact{Key: "hometown", Value: "Lisbon"})
	require.NoError(t, err)
	_, err = facts.Insert(ctx, core.Fact{Key: "dog name", Value: "Rex"})
	require.NoError(t, err)

	reply, err := a.Respond(ctx, "s1", "when is my birthday")
	require.NoError(t, err)
	assert.Equal(t, "Your birthday is June 5th.", reply)
	assert.Equal(t, 1, model.calls)

	require.NotNil(t, model.promptCtx)
	require.NotEmpty(t, model.promptCtx.Facts)
	assert.Equal(t, "birthday", model.promptCtx.Facts[0].Key)

	prompt := memory.NewComposer(0).Compose("", model.promptCtx.Facts, model.promptCtx.Recent)
	assert.Contains(t, prompt, "* birthday: June 5th")
}

func TestRespond_GatewayFailureReturnsApology(t *testing.T) {
	model := &fakeModel{err: errors.New("connection refused")}
	a, _, messages := newTestAssistant(model)

	reply, err := a.Respond(context.Background(), "s1", "how are you")
	require.NoError(t, err)
	assert.Equal(t, apologyReply, reply)

	require.Len(t, messages.msgs, 2)
	assert.Equal(t, apologyReply, messages.msgs[1].Content)
}

func TestRespond_ScrubsJSONFactFromReply(t *testing.T) {
	model := &fakeModel{reply: `Sure! {"memory":{"key":"wifi password","value":"hunter2"}} Done.`}
	a, facts, messages := newTestAssistant(model)

	reply, err := a.Respond(context.Background(), "s1", "please keep track of the wifi password hunter2")
	require.NoError(t, err)

	assert.Equal(t, "Sure! Done.", reply)
	assert.NotContains(t, reply, "{")

	require.Len(t, facts.facts, 1)
	assert.Equal(t, "wifi password", facts.facts[0].Key)
	assert.Equal(t, "hunter2", facts.facts[0].Value)

	assert.Equal(t, "Sure! Done.", messages.msgs[1].Content)
}

func TestRespond_PlainReplyUnchanged(t *testing.T) {
	model := &fakeModel{reply: "The capital of France is Paris."}
	a, _, messages := newTestAssistant(model)

	reply, err := a.Respond(context.Background(), "s1", "what is the capital of France")
	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", reply)
	assert.Equal(t, reply, messages.msgs[1].Content)
}

func TestRespond_UserMessagePersistFailure(t *testing.T) {
	model := &fakeModel{reply: "hi"}
	facts := &fakeFacts{}
	messages := &fakeMessages{insertErr: errors.New("disk full")}
	a := NewAssistant(facts, messages, memory.NewExtractor(facts), model)

	_, err := a.Respond(context.Background(), "s1", "hello")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
	assert.Zero(t, model.calls)
}

func TestRespond_FactPersistFailurePropagates(t *testing.T) {
	model := &fakeModel{}
	facts := &fakeFacts{insertErr: errors.New("locked")}
	messages := &fakeMessages{}
	a := NewAssistant(facts, messages, memory.NewExtractor(facts), model)

	_, err := a.Respond(context.Background(), "s1", "remember that my name is Ada")
	require.Error(t, err)
	assert.Zero(t, model.calls)
}

func TestRespond_HistoryWindowCapped(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	a, _, messages := newTestAssistant(model)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := a.Respond(ctx, "s1", "tell me something interesting")
		require.NoError(t, err)
	}

	require.NotNil(t, model.promptCtx)
	assert.LessOrEqual(t, len(model.promptCtx.Recent), contextWindow)
	assert.NotEmpty(t, messages.msgs)
}
