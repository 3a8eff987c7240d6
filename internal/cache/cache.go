// Package cache implements the layered read-through cache for current
// location lookups. Backends form an ordered fallback chain; the first
// healthy one is probed once and remembered, and a mid-operation failure
// degrades to the next tier silently. A cache failure is never surfaced to
// the caller, only a latency/staleness cost.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/metrics"
)

const serviceName = "tracking-service"

// Backend is one tier in the fallback chain.
type Backend interface {
	Name() types.CacheTier
	Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error)
	Set(ctx context.Context, userID uuid.UUID, p models.CurrentPosition, ttl time.Duration) error
	Delete(ctx context.Context, userID uuid.UUID) error
	Ping(ctx context.Context) error
}

// SourceFunc reads the authoritative current position when every cache tier
// misses or fails. It is the final tier of the chain.
type SourceFunc func(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error)

// Chain coordinates the ordered backends.
type Chain struct {
	backends []Backend
	source   SourceFunc
	ttl      time.Duration

	reprobeEvery time.Duration

	mu          sync.Mutex
	activeIdx   int // index into backends; len(backends) means source only
	probed      bool
	lastProbeAt time.Time

	l logger.Logger
}

// NewChain builds a chain over the given backends, in priority order.
func NewChain(backends []Backend, source SourceFunc, ttl, reprobeEvery time.Duration, l logger.Logger) *Chain {
	return &Chain{
		backends:     backends,
		source:       source,
		ttl:          ttl,
		reprobeEvery: reprobeEvery,
		l:            l,
	}
}

// ActiveTier reports which tier would serve the next request.
func (c *Chain) ActiveTier() types.CacheTier {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.probed {
		return types.TierNone
	}
	if c.activeIdx >= len(c.backends) {
		return types.TierSource
	}
	return c.backends[c.activeIdx].Name()
}

// ensureProbed selects the first healthy backend. Called lazily on first
// use; afterwards re-probes from the top on an interval so a recovered
// faster tier is picked up again without probing on every call.
func (c *Chain) ensureProbed(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.probed && (c.reprobeEvery <= 0 || time.Since(c.lastProbeAt) < c.reprobeEvery) {
		return
	}

	ctx = wrap.WithAction(ctx, types.ActionCacheTierProbe)

	idx := len(c.backends)
	for i, b := range c.backends {
		if err := b.Ping(ctx); err != nil {
			c.l.Warn(ctx, "cache tier unavailable", "tier", b.Name().String(), "error", err.Error())
			continue
		}
		idx = i
		break
	}

	c.activeIdx = idx
	c.probed = true
	c.lastProbeAt = time.Now()

	c.l.Info(ctx, "cache tier selected", "tier", c.tierAt(idx).String())
	metrics.SetActiveTier(serviceName, c.tierNames(), c.tierAt(idx).String())
}

func (c *Chain) tierAt(idx int) types.CacheTier {
	if idx >= len(c.backends) {
		return types.TierSource
	}
	return c.backends[idx].Name()
}

func (c *Chain) tierNames() []string {
	names := make([]string, 0, len(c.backends)+1)
	for _, b := range c.backends {
		names = append(names, b.Name().String())
	}
	return append(names, types.TierSource.String())
}

// degradeFrom moves the active tier past the failed index.
func (c *Chain) degradeFrom(ctx context.Context, failedIdx int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeIdx != failedIdx {
		return // someone else already degraded
	}
	c.activeIdx = failedIdx + 1

	ctx = wrap.WithAction(ctx, types.ActionCacheTierDegraded)
	c.l.Warn(ctx, "cache tier degraded",
		"from", c.tierAt(failedIdx).String(),
		"to", c.tierAt(c.activeIdx).String(),
	)
	metrics.SetActiveTier(serviceName, c.tierNames(), c.tierAt(c.activeIdx).String())
}

func (c *Chain) active() (Backend, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeIdx >= len(c.backends) {
		return nil, c.activeIdx
	}
	return c.backends[c.activeIdx], c.activeIdx
}

// GetCurrentLocation reads through the chain: active tier first, then the
// source store on a miss (repopulating the tier), degrading on tier errors.
func (c *Chain) GetCurrentLocation(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	c.ensureProbed(ctx)

	for {
		backend, idx := c.active()
		if backend == nil {
			break
		}

		p, err := backend.Get(ctx, userID)
		switch {
		case err == nil:
			metrics.RecordCacheLookup(serviceName, backend.Name().String(), "hit")
			return p, nil
		case errors.Is(err, types.ErrCacheMiss):
			metrics.RecordCacheLookup(serviceName, backend.Name().String(), "miss")
			p, err := c.source(ctx, userID)
			if err != nil {
				return models.CurrentPosition{}, err
			}
			// repopulate best-effort
			if setErr := backend.Set(ctx, userID, p, c.ttl); setErr != nil {
				c.l.Debug(ctx, "cache repopulate failed", "tier", backend.Name().String(), "error", setErr.Error())
			}
			return p, nil
		default:
			metrics.RecordCacheLookup(serviceName, backend.Name().String(), "error")
			c.degradeFrom(ctx, idx)
		}
	}

	// every tier failed or none configured, read the source directly
	metrics.RecordCacheLookup(serviceName, types.TierSource.String(), "hit")
	return c.source(ctx, userID)
}

// SetCurrentLocation write-through refreshes the cache entry after an
// accepted location write. Failures degrade silently.
func (c *Chain) SetCurrentLocation(ctx context.Context, userID uuid.UUID, p models.CurrentPosition) {
	c.ensureProbed(ctx)

	for {
		backend, idx := c.active()
		if backend == nil {
			return
		}

		if err := backend.Set(ctx, userID, p, c.ttl); err != nil {
			metrics.RecordCacheLookup(serviceName, backend.Name().String(), "error")
			c.degradeFrom(ctx, idx)
			continue
		}
		return
	}
}

// Invalidate drops the entry for a user from the active tier.
func (c *Chain) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.ensureProbed(ctx)

	backend, _ := c.active()
	if backend == nil {
		return
	}
	if err := backend.Delete(ctx, userID); err != nil {
		c.l.Debug(ctx, "cache invalidate failed", "tier", backend.Name().String(), "error", err.Error())
	}
}
