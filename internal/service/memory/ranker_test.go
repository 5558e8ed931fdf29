package memory

import (
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_EmptyInputs(t *testing.T) {
	facts := []core.Fact{{Key: "favorite color", Value: "blue"}}

	assert.Nil(t, Rank("anything", nil, nil, DefaultMaxResults))
	assert.Nil(t, Rank("the and for", facts, nil, DefaultMaxResults), "stopword-only query")
	assert.Nil(t, Rank("is my to", facts, nil, DefaultMaxResults), "short terms only")
	assert.Nil(t, Rank("favorite color", facts, nil, 0), "maxResults below 1")
	assert.Nil(t, Rank("favorite color", facts, nil, -3))
}

func TestRank_FavoriteColor(t *testing.T) {
	facts := []core.Fact{
		{ID: 1, Key: "birthday", Value: "June 5th"},
		{ID: 2, Key: "favorite color", Value: "blue"},
		{ID: 3, Key: "pet", Value: "cat"},
	}

	ranked := Rank("what is my favorite color", facts, nil, DefaultMaxResults)
	require.NotEmpty(t, ranked)
	assert.Equal(t, int64(2), ranked[0].ID)
}

func TestRank_Deterministic(t *testing.T) {
	facts := []core.Fact{
		{ID: 1, Key: "favorite color", Value: "blue"},
		{ID: 2, Key: "favorite food", Value: "ramen"},
		{ID: 3, Key: "birthday", Value: "June 5th"},
	}
	recent := []core.Message{
		{Role: core.RoleUser, Content: "tell me about colors"},
		{Role: core.RoleAssistant, Content: "sure"},
	}

	first := Rank("favorite color", facts, recent, DefaultMaxResults)
	second := Rank("favorite color", facts, recent, DefaultMaxResults)
	assert.Equal(t, first, second)
}

func TestRank_StableOnTies(t *testing.T) {
	// Identical facts score identically; input order must survive.
	facts := []core.Fact{
		{ID: 1, Key: "pet", Value: "cat"},
		{ID: 2, Key: "pet", Value: "cat"},
		{ID: 3, Key: "pet", Value: "cat"},
	}

	ranked := Rank("pet", facts, nil, DefaultMaxResults)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(1), ranked[0].ID)
	assert.Equal(t, int64(2), ranked[1].ID)
	assert.Equal(t, int64(3), ranked[2].ID)
}

func TestRank_MaxResultsCap(t *testing.T) {
	facts := make([]core.Fact, 0, 8)
	for i := int64(1); i <= 8; i++ {
		facts = append(facts, core.Fact{ID: i, Key: "topic", Value: "thing"})
	}

	ranked := Rank("topic", facts, nil, 5)
	assert.Len(t, ranked, 5)

	ranked = Rank("topic", facts, nil, 20)
	assert.Len(t, ranked, 8)
}

func TestRank_AllFactsReturned(t *testing.T) {
	// Zero-score facts still participate in the ordering; the top result
	// is just sorted first.
	facts := []core.Fact{
		{ID: 1, Key: "pet", Value: "cat"},
		{ID: 2, Key: "favorite color", Value: "blue"},
	}

	ranked := Rank("favorite color", facts, nil, DefaultMaxResults)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].ID)
	assert.Equal(t, int64(1), ranked[1].ID)
}

func TestWindowCount(t *testing.T) {
	tests := []struct {
		text  string
		term  string
		count int
	}{
		{"aaa", "aa", 2}, // overlapping repeats over-count
		{"favorite color blue", "color", 1},
		{"scattered", "cat", 1}, // substring inside a word still counts
		{"abc", "abcd", 0},
		{"abc", "", 0},
		{"colorful color", "color", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.count, windowCount(tt.text, tt.term), "windowCount(%q, %q)", tt.text, tt.term)
	}
}

func TestScoreFact_ExactTokenBoost(t *testing.T) {
	terms := []string{"color"}

	exact := scoreFact(core.Fact{Key: "color", Value: "blue"}, terms, nil)
	partial := scoreFact(core.Fact{Key: "colorful", Value: "blue"}, terms, nil)

	assert.InDelta(t, 1.5, exact, 1e-9)
	assert.InDelta(t, 1.0, partial, 1e-9)
}

func TestScoreFact_RecencyBoost(t *testing.T) {
	fact := core.Fact{Key: "birthday", Value: "June"}
	terms := []string{"birthday"}

	pad := func(n int) []core.Message {
		msgs := make([]core.Message, 0, n)
		for i := 0; i < n; i++ {
			msgs = append(msgs, core.Message{Role: core.RoleAssistant, Content: "ok"})
		}
		return msgs
	}

	// Base: one windowed hit on an exact token = 1.0 * 1.5.
	base := scoreFact(fact, terms, nil)
	require.InDelta(t, 1.5, base, 1e-9)

	// Newest message of the window mentioning the term adds the full 0.5.
	newest := append(pad(4), core.Message{Role: core.RoleUser, Content: "when is my birthday"})
	assert.InDelta(t, 2.0, scoreFact(fact, terms, newest), 1e-9)

	// The oldest of the five-message window adds only 0.1.
	oldest := append([]core.Message{{Role: core.RoleUser, Content: "when is my birthday"}}, pad(4)...)
	assert.InDelta(t, 1.6, scoreFact(fact, terms, oldest), 1e-9)

	// Messages beyond the window are ignored.
	beyond := append([]core.Message{{Role: core.RoleUser, Content: "birthday talk"}}, pad(5)...)
	assert.InDelta(t, 1.5, scoreFact(fact, terms, beyond), 1e-9)
}
