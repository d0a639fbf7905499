package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"marketbar/internal/gate"
	"marketbar/internal/provider"
	"marketbar/internal/store"
)

// Provider serves snapshots from the cache file while the gate allows it and
// asks the wrapped provider otherwise. Fresh snapshots replace the cache file.
type Provider struct {
	P      provider.Provider
	Store  *store.File
	Policy gate.Policy

	// Refresh skips the gate and always fetches.
	Refresh bool
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger zerolog.Logger
}

func (c *Provider) Name() string { return c.P.Name() }

// Fetch returns a cached snapshot (Cached=true) or a fresh one. A failed
// fetch leaves the cache file untouched; there is no fallback to stale data.
func (c *Provider) Fetch(ctx context.Context, ids []string) (provider.Snapshot, error) {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	if !c.Refresh {
		st, err := c.Store.Stat()
		if err != nil {
			return provider.Snapshot{}, err
		}
		d := c.Policy.Decide(now, st)
		c.Logger.Debug().
			Bool("use_cache", d.UseCache).
			Str("reason", d.Reason).
			Time("cache_mtime", st.ModTime).
			Msg("freshness gate")

		if d.UseCache {
			b, err := c.Store.Load()
			if err != nil {
				return provider.Snapshot{}, err
			}
			snap, err := provider.ParseSnapshot(b)
			if err != nil {
				return provider.Snapshot{}, fmt.Errorf("cache file %s: %w", c.Store.Path, err)
			}
			snap.Cached = true
			snap.ModTime = st.ModTime
			return snap, nil
		}
	}

	start := time.Now()
	snap, err := c.P.Fetch(ctx, ids)
	if err != nil {
		c.Logger.Error().Err(err).Str("provider", c.P.Name()).Msg("fetch failed")
		return provider.Snapshot{}, err
	}
	c.Logger.Debug().
		Str("provider", c.P.Name()).
		Int("instruments", len(snap.Response.InstrumentResponses)).
		Dur("took", time.Since(start)).
		Msg("fetched quotes")

	if err := c.Store.Save(snap.Raw); err != nil {
		return provider.Snapshot{}, err
	}
	snap.ModTime = now
	return snap, nil
}
