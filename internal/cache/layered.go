package cache

import (
	"context"

	"github.com/qdoctor/agent/internal/core"
	"github.com/qdoctor/agent/pkg/log"
)

// Layered combines the in-memory L1 with an optional persistent L2. A failing
// L2 degrades to a miss: caching is an optimization, never a hard dependency.
type Layered struct {
	l1 *Memory
	l2 core.CacheStore // nil when persistence is disabled
}

func NewLayered(l1 *Memory, l2 core.CacheStore) *Layered {
	return &Layered{l1: l1, l2: l2}
}

func (c *Layered) Get(ctx context.Context, key string) (core.FinalResponse, bool, error) {
	if resp, ok, _ := c.l1.Get(ctx, key); ok {
		return resp, true, nil
	}

	if c.l2 == nil {
		return core.FinalResponse{}, false, nil
	}

	resp, ok, err := c.l2.Get(ctx, key)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("persistent cache read failed, treating as miss")
		return core.FinalResponse{}, false, nil
	}
	if !ok {
		return core.FinalResponse{}, false, nil
	}

	// Promote so the next hit stays in memory.
	_ = c.l1.Set(ctx, key, resp)
	return resp, true, nil
}

func (c *Layered) Set(ctx context.Context, key string, resp core.FinalResponse) error {
	_ = c.l1.Set(ctx, key, resp)

	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, resp); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("persistent cache write failed")
		}
	}
	return nil
}

func (c *Layered) Invalidate(ctx context.Context, key string) error {
	_ = c.l1.Invalidate(ctx, key)
	if c.l2 != nil {
		if err := c.l2.Invalidate(ctx, key); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("persistent cache invalidate failed")
		}
	}
	return nil
}

func (c *Layered) Purge(ctx context.Context) error {
	_ = c.l1.Purge(ctx)
	if c.l2 != nil {
		if err := c.l2.Purge(ctx); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("persistent cache purge failed")
			return err
		}
	}
	return nil
}
