// Package vecutil provides text-level helpers on top of the cosine kernel and
// a vector.Store. It stays embedding-agnostic by requiring an EmbedFunc
// supplied by the caller.
package vecutil

import (
	"context"
	"fmt"

	"github.com/viant/vecscore/cosine"
)

// EmbedFunc converts free-form text into an embedding.
//
// Implementations can call any embedding provider (OpenAI, local model,
// other cloud APIs, etc.) as long as they return a slice of float32 values.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// EmbedAll embeds texts in order, stopping at the first error.
func EmbedAll(ctx context.Context, embed EmbedFunc, texts []string) ([][]float32, error) {
	if embed == nil {
		return nil, fmt.Errorf("vecutil: EmbedFunc is nil")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("vecutil: embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// ScoreTexts embeds query and candidates and returns the cosine similarity of
// each candidate to the query, in candidate order.
func ScoreTexts(ctx context.Context, embed EmbedFunc, query string, candidates []string, opts ...cosine.Option) ([]float64, error) {
	if embed == nil {
		return nil, fmt.Errorf("vecutil: EmbedFunc is nil")
	}
	q, err := embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vecutil: embed query: %w", err)
	}
	items, err := EmbedAll(ctx, embed, candidates)
	if err != nil {
		return nil, err
	}
	return cosine.BatchCosineSimilarity(q, items, opts...), nil
}
