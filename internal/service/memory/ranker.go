package memory

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sandevgo/mnemo/internal/core"
)

const (
	// DefaultMaxResults is how many facts make it into a prompt.
	DefaultMaxResults = 5

	// recencyWindow is how many trailing messages feed the recency boost.
	recencyWindow = 5

	exactTokenBoost   = 1.5
	recencyBoostScale = 0.5
)

var nonWordRun = regexp.MustCompile(`\W+`)

// stopwords is a fixed English list; terms on it never count as query terms.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "man": {}, "new": {}, "now": {},
	"old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "did": {},
	"its": {}, "let": {}, "she": {}, "too": {}, "use": {}, "what": {},
	"when": {}, "with": {}, "that": {}, "this": {}, "from": {}, "they": {},
	"will": {}, "would": {}, "there": {}, "their": {}, "about": {},
}

// Rank scores every fact against the query and returns the top maxResults.
// Scoring is deterministic and the sort is stable, so equal-scored facts
// keep their input order.
func Rank(query string, facts []core.Fact, recent []core.Message, maxResults int) []core.Fact {
	if len(facts) == 0 || maxResults < 1 {
		return nil
	}

	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		fact  core.Fact
		score float64
	}

	ranked := make([]scored, 0, len(facts))
	for _, f := range facts {
		ranked = append(ranked, scored{fact: f, score: scoreFact(f, terms, recent)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if maxResults > len(ranked) {
		maxResults = len(ranked)
	}
	out := make([]core.Fact, 0, maxResults)
	for _, s := range ranked[:maxResults] {
		out = append(out, s.fact)
	}
	return out
}

func queryTerms(query string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, t := range nonWordRun.Split(strings.ToLower(query), -1) {
		if len(t) <= 2 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

func scoreFact(f core.Fact, terms []string, recent []core.Message) float64 {
	factText := strings.ToLower(f.Key + " " + f.Value)

	var score float64
	for _, term := range terms {
		score += float64(windowCount(factText, term))
	}

	// One multiplicative boost when any whole token matches a term exactly.
	if hasExactToken(factText, terms) {
		score *= exactTokenBoost
	}

	// Recent conversational mentions push a fact up, the newest message
	// counting the most.
	window := recent
	if len(window) > recencyWindow {
		window = window[len(window)-recencyWindow:]
	}
	for i, msg := range window {
		content := strings.ToLower(msg.Content)
		if !containsAnyTerm(content, terms) {
			continue
		}
		distFromNewest := len(window) - 1 - i
		score += float64(recencyWindow-distFromNewest) / float64(recencyWindow) * recencyBoostScale
	}

	return score
}

// windowCount slides a window of exactly len(term) characters over text and
// counts matching windows. Overlapping repeats count more than once: "aa"
// occurs twice in "aaa".
func windowCount(text, term string) int {
	if term == "" || len(term) > len(text) {
		return 0
	}
	count := 0
	for i := 0; i+len(term) <= len(text); i++ {
		if text[i:i+len(term)] == term {
			count++
		}
	}
	return count
}

func hasExactToken(factText string, terms []string) bool {
	for _, token := range strings.Fields(factText) {
		for _, term := range terms {
			if token == term {
				return true
			}
		}
	}
	return false
}

func containsAnyTerm(content string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}
