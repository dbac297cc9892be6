package universe

import (
	"context"
	"fmt"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// CachedProvider serves the last universe persisted by the chain.
// Sits between the live sources and the static fallback so a cycle
// survives an exchange outage with a recent real list.
type CachedProvider struct {
	repo contracts.InstrumentRepository
}

// NewCachedProvider creates a CachedProvider over the instrument cache
func NewCachedProvider(repo contracts.InstrumentRepository) *CachedProvider {
	return &CachedProvider{repo: repo}
}

// Source names the provider for logging
func (p *CachedProvider) Source() string { return "pg-cache" }

// Instruments returns the cached universe. An empty or unreadable
// cache reports ErrUniverseUnavailable so the chain moves on.
func (p *CachedProvider) Instruments(ctx context.Context) ([]contracts.Instrument, error) {
	instruments, err := p.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: instrument cache: %v", contracts.ErrUniverseUnavailable, err)
	}
	return instruments, nil
}
