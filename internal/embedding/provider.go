// Package embedding produces dense vectors for code chunks and search
// queries. Two profiles are available: "local", a daemon process speaking
// HTTP that wraps a real sentence-embedding model, and "light", a
// dependency-free CPU profile selected by Config.Profile "light" or ""
// (spec §4.K). NewProvider does not switch to "light" on its own: when the
// local daemon fails to initialize it returns the error.
package embedding

import (
	"context"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

// Provider converts text into fixed-dimension vectors.
type Provider interface {
	// Embed returns the vector for a single piece of text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds many texts in one call where the underlying
	// provider supports batching, halving the batch on an out-of-memory
	// style failure and retrying down to a batch size of one (spec §4.K).
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dim reports the provider's output vector dimensionality.
	Dim() int

	// ModelID identifies the model family (e.g. "bge-small-en-v1.5").
	ModelID() string

	// ModelVersion identifies the specific model revision in use.
	ModelVersion() string

	// Close releases any resources (background processes, connections).
	Close() error
}

// withBatchHalving calls embed once for texts; on failure it splits texts
// into two halves and retries each half independently, continuing to
// split until batches of size one still fail, at which point the error
// from that singleton call is returned. This recovers from embedding
// servers that reject large batches under memory pressure without
// abandoning the whole request.
func withBatchHalving(ctx context.Context, texts []string, embed func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	out, err := embed(ctx, texts)
	if err == nil {
		return out, nil
	}
	if len(texts) <= 1 {
		return nil, indexerr.Wrap(indexerr.EmbeddingProviderError, "embed single text", err)
	}

	mid := len(texts) / 2
	first, err1 := withBatchHalving(ctx, texts[:mid], embed)
	if err1 != nil {
		return nil, err1
	}
	second, err2 := withBatchHalving(ctx, texts[mid:], embed)
	if err2 != nil {
		return nil, err2
	}
	return append(first, second...), nil
}
