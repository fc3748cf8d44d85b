// Package search turns a query embedding into frontend-ready results by
// delegating similarity ranking to a database function and filtering
// and reshaping what comes back.
package search

import (
	"context"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Request carries a resolved query: the embedding plus effective
// parameters after defaults are applied.
type Request struct {
	Embedding       []float32
	Limit           int
	MinSimilarity   float64
	MarketsPerEvent int
}

// Defaults are the per-provider request defaults; the two deployment
// variants historically shipped with different ones.
type Defaults struct {
	Limit           int
	MinSimilarity   float64
	MarketsPerEvent int
}

// Provider executes a similarity search and returns results already
// filtered by similarity. An empty result slice is a valid outcome, not
// an error.
type Provider interface {
	Search(ctx context.Context, req Request) ([]any, error)
	Defaults() Defaults
}
