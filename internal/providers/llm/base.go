package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// No explicit per-request deadline beyond the client timeout: local model
// generation can legitimately take minutes on weak hardware.
const requestTimeout = 120 * time.Second

type baseProvider struct {
	client  *http.Client
	baseURL string
	model   string
}

func newBaseProvider(baseURL, model string) baseProvider {
	return baseProvider{
		client: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: baseURL,
		model:   model,
	}
}

func (b *baseProvider) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return resp, nil
}
