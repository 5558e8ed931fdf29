package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
)

// Ordered template list. Order matters: earlier patterns shadow later ones
// on overlapping input, so "remember that my X is Y" never falls through to
// the bare "my X is Y" template.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bremember that (?:my|the) (.+?) (?:is|are) (.+)`),
	regexp.MustCompile(`(?i)\bsave (.+?) as (.+)`),
	regexp.MustCompile(`(?i)\bstore (.+?) as (.+)`),
	regexp.MustCompile(`(?i)\bnote that (?:my|the) (.+?) (?:is|are) (.+)`),
	regexp.MustCompile(`(?i)\bmy (.+?) (?:is|are) (.+)`),
}

// jsonCandidate matches a brace-delimited run with at most one nested
// object, enough for the {"memory": {"key": ..., "value": ...}} convention.
var jsonCandidate = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\})?[^{}]*\}`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// envelopeKeys is the accepted wrapping order for the reply convention.
var envelopeKeys = []string{"memory", "remember", "store"}

type Extractor struct {
	facts core.FactsRepository
}

func NewExtractor(facts core.FactsRepository) *Extractor {
	return &Extractor{facts: facts}
}

// Detect scans free text for an explicit remember/save/store/note statement
// and persists the captured fact on a match.
func (e *Extractor) Detect(ctx context.Context, text string) (core.Detection, error) {
	det := matchPatterns(text)
	if !det.Detected {
		return core.Detection{}, nil
	}

	if err := e.persist(ctx, det); err != nil {
		return core.Detection{}, err
	}
	return det, nil
}

// DetectReply scans a model reply. The embedded JSON convention is tried
// first; when no candidate yields a fact the text templates apply.
func (e *Extractor) DetectReply(ctx context.Context, text string) (core.Detection, error) {
	det := matchJSON(ctx, text)
	if !det.Detected {
		det = matchPatterns(text)
	}
	if !det.Detected {
		return core.Detection{}, nil
	}

	if err := e.persist(ctx, det); err != nil {
		return core.Detection{}, err
	}
	return det, nil
}

func (e *Extractor) persist(ctx context.Context, det core.Detection) error {
	id, err := e.facts.Insert(ctx, core.Fact{Key: det.Key, Value: det.Value})
	if err != nil {
		return fmt.Errorf("failed to persist fact: %w", err)
	}

	log.FromCtx(ctx).Info().
		Int64("id", id).
		Str("key", det.Key).
		Bool("from_json", det.FromJSON).
		Msg("memory captured")
	return nil
}

func matchPatterns(text string) core.Detection {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		if key == "" || value == "" {
			continue
		}

		return core.Detection{Detected: true, Key: key, Value: value}
	}
	return core.Detection{}
}

func matchJSON(ctx context.Context, text string) core.Detection {
	for _, candidate := range jsonCandidate.FindAllString(text, -1) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			// Malformed fragment, keep scanning.
			log.FromCtx(ctx).Debug().Str("fragment", candidate).Msg("skipping malformed json candidate")
			continue
		}

		for _, envelope := range envelopeKeys {
			raw, ok := obj[envelope]
			if !ok {
				continue
			}
			if key, value, ok := keyValuePair(raw); ok {
				return core.Detection{Detected: true, Key: key, Value: value, FromJSON: true}
			}
		}

		// No envelope: the object itself may carry key/value.
		if key, value, ok := keyValueFields(obj); ok {
			return core.Detection{Detected: true, Key: key, Value: value, FromJSON: true}
		}
	}
	return core.Detection{}
}

func keyValuePair(raw json.RawMessage) (string, string, bool) {
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil {
		return "", "", false
	}
	return keyValueFields(inner)
}

func keyValueFields(obj map[string]json.RawMessage) (string, string, bool) {
	key := stringField(obj, "key")
	value := stringField(obj, "value")
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func stringField(obj map[string]json.RawMessage, name string) string {
	raw, ok := obj[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Scrub removes every brace-delimited JSON-looking fragment from a reply
// and collapses the surrounding whitespace.
func Scrub(text string) string {
	cleaned := jsonCandidate.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
}
