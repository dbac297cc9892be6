package universe

import (
	"context"
	"fmt"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// Chain tries each provider in order and returns the first universe
// obtained. Source() reports the provider that last succeeded. With a
// cache attached, every list obtained from a live source is persisted
// so the CachedProvider has a recent copy to serve.
type Chain struct {
	providers []contracts.UniverseProvider
	cache     contracts.InstrumentRepository
	logger    *logger.Logger
	last      string
}

// NewChain creates a Chain over the given providers
func NewChain(log *logger.Logger, providers ...contracts.UniverseProvider) *Chain {
	return &Chain{providers: providers, logger: log, last: "none"}
}

// WithCache attaches the instrument cache written back on live fetches
func (c *Chain) WithCache(repo contracts.InstrumentRepository) *Chain {
	c.cache = repo
	return c
}

// Source names the provider that supplied the last universe
func (c *Chain) Source() string { return c.last }

// Instruments returns the first successful provider result. When all
// providers fail the chain reports ErrUniverseUnavailable.
func (c *Chain) Instruments(ctx context.Context) ([]contracts.Instrument, error) {
	var lastErr error
	for _, p := range c.providers {
		instruments, err := p.Instruments(ctx)
		if err != nil {
			c.logger.WithError(err).WithField("source", p.Source()).
				Warn("Universe source failed, trying next")
			lastErr = err
			continue
		}
		c.last = p.Source()
		c.logger.WithFields(map[string]interface{}{
			"source": p.Source(),
			"count":  len(instruments),
		}).Info("Universe loaded")
		c.writeBack(ctx, p, instruments)
		return instruments, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all universe sources failed: %w", lastErr)
	}
	return nil, contracts.ErrUniverseUnavailable
}

// writeBack refreshes the cache after a live fetch. Results served
// from the cache itself or the static fallback are not written. A
// failed write never fails the cycle.
func (c *Chain) writeBack(ctx context.Context, p contracts.UniverseProvider, instruments []contracts.Instrument) {
	if c.cache == nil {
		return
	}
	switch p.(type) {
	case *CachedProvider, *StaticProvider:
		return
	}
	if err := c.cache.ReplaceAll(ctx, instruments); err != nil {
		c.logger.WithError(err).Warn("Instrument cache write failed")
	}
}
