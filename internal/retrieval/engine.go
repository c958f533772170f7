package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/provider"
	"github.com/agentkits/memory/internal/store"
)

// Hit is one ranked search result, tagged by the table it came from so
// heterogeneous results can be merged into one list.
type Hit struct {
	SourceTable   string
	ID            string
	Content       string
	KeywordScore  float64
	SemanticScore float64
	FusedScore    float64
}

// maxSessionScanRows bounds how many rows of each session table the engine
// reads per query.
const maxSessionScanRows = 2000

// Engine runs lexical, vector, and hybrid search over the store.
type Engine struct {
	DB      *store.DB
	Embed   provider.EmbeddingProvider
	Weights Weights
}

// New constructs an Engine with the default fusion weights.
func New(db *store.DB, embed provider.EmbeddingProvider) *Engine {
	return &Engine{DB: db, Embed: embed, Weights: Default}
}

// SearchMemoryEntries runs hybrid search over the memory_entries table:
// lexical FTS (falling back to substring match) merged with brute-force
// cosine similarity, fused by e.Weights.
func (e *Engine) SearchMemoryEntries(ctx context.Context, query string, limit int) ([]Hit, error) {
	lexHits, err := e.lexicalMemoryEntries(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	semHits, err := e.semanticMemoryEntries(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return fuse(lexHits, semHits, e.Weights, limit), nil
}

func (e *Engine) lexicalMemoryEntries(ctx context.Context, query string, limit int) (map[string]Hit, error) {
	out := map[string]Hit{}
	ftsQuery := SanitizeFTSQuery(query)
	var entries []*model.MemoryEntry
	var err error
	if ftsQuery != "" {
		entries, err = e.DB.SearchMemoryEntriesFTS(ctx, ftsQuery, limit)
	}
	if ftsQuery == "" || err != nil || len(entries) == 0 {
		entries, err = e.DB.SearchMemoryEntriesLike(ctx, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieval: lexical memory entries: %w", err)
	}
	for _, m := range entries {
		out[m.ID] = Hit{SourceTable: "memory_entries", ID: m.ID, Content: m.Content, KeywordScore: keywordScore(m.Content, query)}
	}
	return out, nil
}

func (e *Engine) semanticMemoryEntries(ctx context.Context, query string, limit int) (map[string]Hit, error) {
	out := map[string]Hit{}
	if e.Embed == nil {
		return out, nil
	}
	queryVec, err := e.Embed.Embed(ctx, query)
	if err != nil {
		return out, nil
	}
	entries, err := e.DB.AllMemoryEntriesForVectorScan(ctx, maxSessionScanRows)
	if err != nil {
		return nil, fmt.Errorf("retrieval: semantic memory entries: %w", err)
	}
	for _, m := range entries {
		sim := float64(store.CosineSimilarity(queryVec, m.Embedding))
		if sim < e.Weights.SemanticFloor {
			continue
		}
		out[m.ID] = Hit{SourceTable: "memory_entries", ID: m.ID, Content: m.Content, SemanticScore: sim}
	}
	_ = limit
	return out, nil
}

// fuse merges lexical and semantic hit maps by id, computing the weighted
// fused score, dropping rows below the fused floor, and returning the
// highest-scoring limit rows.
func fuse(lexical, semantic map[string]Hit, w Weights, limit int) []Hit {
	merged := map[string]Hit{}
	for id, h := range lexical {
		merged[id] = h
	}
	for id, h := range semantic {
		if existing, ok := merged[id]; ok {
			existing.SemanticScore = h.SemanticScore
			if existing.Content == "" {
				existing.Content = h.Content
			}
			merged[id] = existing
		} else {
			merged[id] = h
		}
	}

	out := make([]Hit, 0, len(merged))
	for _, h := range merged {
		h.FusedScore = w.Lexical*h.KeywordScore + w.Semantic*h.SemanticScore
		if h.FusedScore < w.FusedFloor {
			continue
		}
		out = append(out, h)
	}
	sortByFusedScoreDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByFusedScoreDesc(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].FusedScore > hits[j-1].FusedScore; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// contentFor extracts the text field retrieval scores against for a given
// source table's record, used by session-scoped search.
func contentFor(sourceTable string, texts ...string) string {
	return strings.TrimSpace(strings.Join(texts, " "))
}
