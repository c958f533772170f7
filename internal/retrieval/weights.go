// Package retrieval implements the hybrid lexical+vector search engine:
// full-text (FTS5 trigram, falling back to substring match) and brute-force
// cosine similarity, fused by a fixed weighted sum. The fusion weights are
// a stable contract, not a tuning knob.
package retrieval

// Weights controls how lexical and semantic scores combine into one fused
// ranking score. Callers in this repository always use Default; it is a
// struct rather than package constants only so tests can construct
// alternate weightings without touching global state.
type Weights struct {
	Lexical       float64
	Semantic      float64
	FusedFloor    float64
	SemanticFloor float64
}

// Default is the fixed fusion weighting this package requires: 0.3 lexical,
// 0.7 semantic, a 0.05 fused-score floor, and a 0.1 semantic-similarity
// floor below which a vector match is discarded before fusion.
var Default = Weights{
	Lexical:       0.3,
	Semantic:      0.7,
	FusedFloor:    0.05,
	SemanticFloor: 0.1,
}
