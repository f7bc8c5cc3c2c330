package embedding

import (
	"context"
	"fmt"
)

// BatchProgress reports progress through a large EmbedWithProgress call,
// for CLI commands that embed many chunks at once during a full index.
type BatchProgress struct {
	BatchIndex      int
	TotalBatches    int
	ProcessedChunks int
	TotalChunks     int
}

// EmbedWithProgress embeds texts in fixed-size batches, sending a
// BatchProgress on progressCh after each batch completes. progressCh may be
// nil to disable progress reporting. Results preserve the input order.
func EmbedWithProgress(ctx context.Context, provider Provider, texts []string, batchSize int, progressCh chan<- BatchProgress) ([][]float32, error) {
	total := len(texts)
	if total == 0 {
		return [][]float32{}, nil
	}
	if batchSize <= 0 {
		batchSize = total
	}

	numBatches := (total + batchSize - 1) / batchSize
	results := make([][]float32, total)
	processed := 0

	for batchIdx := 0; batchIdx < numBatches; batchIdx++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := batchIdx * batchSize
		end := start + batchSize
		if end > total {
			end = total
		}

		embeddings, err := provider.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d failed: %w", batchIdx+1, numBatches, err)
		}
		copy(results[start:end], embeddings)

		processed += end - start
		if progressCh != nil {
			progressCh <- BatchProgress{
				BatchIndex:      batchIdx + 1,
				TotalBatches:    numBatches,
				ProcessedChunks: processed,
				TotalChunks:     total,
			}
		}
	}

	return results, nil
}
