package embedding

import (
	"context"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

// Config selects and configures an embedding Provider.
type Config struct {
	// Profile is "local" (daemon-backed real model) or "light" (CPU
	// fallback, no daemon). Empty defaults to "light" so indexing never
	// blocks on a network download.
	Profile string
}

// NewProvider constructs and, for the local profile, initializes a
// Provider per Config.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Profile {
	case "", "light":
		return NewLightProvider(), nil
	case "local":
		p := NewLocalProvider()
		if err := p.Initialize(ctx); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, indexerr.New(indexerr.ConfigInvalid, "unknown embedding profile: "+cfg.Profile)
	}
}
