package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
)

const (
	// cooldownWindow is how long the next backend call is held off after
	// a failure.
	cooldownWindow = 60 * time.Second

	temperature = 0.7
	maxTokens   = 800

	// keepAlive keeps the model resident server-side between turns.
	keepAlive = "1h"
)

type generateRequest struct {
	Model     string          `json:"model"`
	Prompt    string          `json:"prompt"`
	System    string          `json:"system,omitempty"`
	Stream    bool            `json:"stream"`
	Options   generateOptions `json:"options,omitempty"`
	KeepAlive any             `json:"keep_alive"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Ollama talks to a local Ollama-compatible server over /api/generate.
// It owns the error cooldown: within cooldownWindow of a failure exactly
// one caller sleeps out the remainder, concurrent callers proceed.
type Ollama struct {
	baseProvider
	composer core.PromptComposer
	cooldown time.Duration

	lastErrorAt atomic.Int64 // unix millis, 0 = none
	waiting     atomic.Bool  // single-flight cooldown guard
}

func NewOllama(baseURL, model string, composer core.PromptComposer) *Ollama {
	return &Ollama{
		baseProvider: newBaseProvider(baseURL, model),
		composer:     composer,
		cooldown:     cooldownWindow,
	}
}

func (o *Ollama) Complete(ctx context.Context, message string, promptCtx *core.PromptContext, systemOverride string) (string, error) {
	if err := o.waitCooldown(ctx); err != nil {
		return "", err
	}

	var facts []core.Fact
	var recent []core.Message
	if promptCtx != nil {
		facts = promptCtx.Facts
		recent = promptCtx.Recent
	}

	body := generateRequest{
		Model:     o.model,
		Prompt:    message,
		System:    o.composer.Compose(systemOverride, facts, recent),
		Stream:    false,
		Options:   generateOptions{Temperature: temperature, NumPredict: maxTokens},
		KeepAlive: keepAlive,
	}

	reply, err := o.generate(ctx, body)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// Unload signals the backend to evict the model immediately: same endpoint,
// empty prompt, zero keep-alive.
func (o *Ollama) Unload(ctx context.Context) error {
	body := generateRequest{
		Model:     o.model,
		Prompt:    "",
		Stream:    false,
		KeepAlive: 0,
	}

	_, err := o.generate(ctx, body)
	if err != nil {
		return fmt.Errorf("unload: %w", err)
	}
	return nil
}

func (o *Ollama) generate(ctx context.Context, body generateRequest) (string, error) {
	resp, err := o.doRequest(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		o.stampError()
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		o.stampError()
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		o.stampError()
		return "", fmt.Errorf("backend returned http %d: %s", resp.StatusCode, string(data))
	}

	var result generateResponse
	if err := json.Unmarshal(data, &result); err != nil {
		o.stampError()
		return "", fmt.Errorf("decode: %w", err)
	}

	// Unload requests legitimately come back empty; completions must not.
	if body.Prompt != "" && result.Response == "" {
		o.stampError()
		return "", fmt.Errorf("backend returned empty response")
	}

	o.lastErrorAt.Store(0)
	return result.Response, nil
}

func (o *Ollama) stampError() {
	o.lastErrorAt.Store(time.Now().UnixMilli())
}

func (o *Ollama) waitCooldown(ctx context.Context) error {
	last := o.lastErrorAt.Load()
	if last == 0 {
		return nil
	}

	elapsed := time.Since(time.UnixMilli(last))
	if elapsed >= o.cooldown {
		return nil
	}

	// Single flight: if another call is already sleeping out the window,
	// this one proceeds immediately.
	if !o.waiting.CompareAndSwap(false, true) {
		return nil
	}
	defer o.waiting.Store(false)

	remaining := o.cooldown - elapsed
	log.FromCtx(ctx).Debug().Dur("remaining", remaining).Msg("cooling down before backend call")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(remaining):
		return nil
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists the model names the backend has available.
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var result tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

// Ping reports whether the backend answers at all.
func (o *Ollama) Ping(ctx context.Context) error {
	_, err := o.Models(ctx)
	return err
}
