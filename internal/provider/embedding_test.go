package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPEmbeddingProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("request path = %q, want /api/embeddings", r.URL.Path)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt != "hello world" {
			t.Errorf("request prompt = %q, want %q", req.Prompt, "hello world")
		}
		json.NewEncoder(w).Encode(embeddingResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	p := NewHTTPEmbeddingProvider(srv.URL, "test-model", 3)
	vec, err := p.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len(vec) = %d, want 3", len(vec))
	}
	if p.Dimension() != 3 {
		t.Errorf("Dimension() = %d, want 3", p.Dimension())
	}
}

func TestHTTPEmbeddingProviderEmptyResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{})
	}))
	defer srv.Close()

	p := NewHTTPEmbeddingProvider(srv.URL, "test-model", 3)
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Error("Embed() with empty response error = nil, want error")
	}
}

func TestHTTPEmbeddingProviderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPEmbeddingProvider(srv.URL, "test-model", 3)
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Error("Embed() with 500 response error = nil, want error")
	}
}
