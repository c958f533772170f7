package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmbeddingProvider converts text into a fixed-dimension vector. The
// dimension is fixed by the concrete provider and must not change during
// the lifetime of one database file, since every row's vector is compared
// by length before cosine scoring.
type EmbeddingProvider interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HTTPEmbeddingProvider calls an HTTP embedding endpoint exposing an
// Ollama-compatible /api/embeddings contract, shaped after a conventional
// internal/memory/embeddings/ollama subpackage.
type HTTPEmbeddingProvider struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

// NewHTTPEmbeddingProvider configures an HTTP-based embedding transport.
func NewHTTPEmbeddingProvider(baseURL, model string, dimension int) *HTTPEmbeddingProvider {
	return &HTTPEmbeddingProvider{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HTTPEmbeddingProvider) Name() string   { return "http:" + p.model }
func (p *HTTPEmbeddingProvider) Dimension() int { return p.dimension }

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed posts text to the configured endpoint and returns its vector.
func (p *HTTPEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("provider: marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("provider: build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider: embedding endpoint returned %d", resp.StatusCode)
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("provider: decode embedding response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("provider: empty embedding response")
	}
	return out.Embedding, nil
}
