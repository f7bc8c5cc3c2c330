package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

const (
	lightModelID      = "light-hash-projection"
	lightModelVersion = "v1"
	lightDimensions   = 256
)

// LightProvider is the dependency-free CPU fallback profile: it projects
// text into a fixed-dimension vector by hashing, with no model download
// and no daemon process. The vector is derived from a SHA-256 digest of the
// whole text, so only identical texts get identical vectors; texts that
// share words are not placed closer together. It keeps the hybrid index
// running when no local model is installed (spec §4.K).
type LightProvider struct{}

func NewLightProvider() *LightProvider { return &LightProvider{} }

// Embed hashes text into overlapping 4-byte windows and normalizes each
// into [-1, 1], giving a deterministic, collision-resistant-enough vector
// for small and medium corpora.
func (p *LightProvider) Embed(_ context.Context, text string) ([]float32, error) {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, lightDimensions)
	for i := 0; i < lightDimensions; i++ {
		offset := (i * 4) % (len(hash) - 3)
		val := binary.BigEndian.Uint32(hash[offset : offset+4])
		vec[i] = (float32(val)/float32(1<<32))*2.0 - 1.0
	}
	return vec, nil
}

func (p *LightProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return withBatchHalving(ctx, texts, func(_ context.Context, batch []string) ([][]float32, error) {
		out := make([][]float32, len(batch))
		for i, t := range batch {
			v, err := p.Embed(ctx, t)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	})
}

func (p *LightProvider) Dim() int             { return lightDimensions }
func (p *LightProvider) ModelID() string      { return lightModelID }
func (p *LightProvider) ModelVersion() string { return lightModelVersion }
func (p *LightProvider) Close() error         { return nil }
