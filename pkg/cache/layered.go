package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through L1 to L2 and writes through both.
type LayeredCache struct {
	l1  Store
	l2  Store
	cfg LayeredConfig
}

// NewLayeredCache combines a fast local store with a shared one.
func NewLayeredCache(l1, l2 Store, opts ...LayeredOption) *LayeredCache {
	cfg := LayeredConfig{L1TTL: 10 * time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LayeredCache{l1: l1, l2: l2, cfg: cfg}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return setJSON(ctx, lc, key, value, expiration)
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	return getJSON(ctx, lc, key, dest)
}

// SetBytes writes L2 first; L1 is only updated once L2 accepted the value.
func (lc *LayeredCache) SetBytes(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, data, expiration); err != nil {
		return err
	}
	_ = lc.l1.SetBytes(ctx, key, data, lc.l1TTL(expiration))
	return nil
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if data, err := lc.l1.GetBytes(ctx, key); err == nil {
		return data, nil
	}
	data, err := lc.l2.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = lc.l1.SetBytes(ctx, key, data, lc.cfg.L1TTL)
	return data, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, err := lc.l1.Exists(ctx, keys...); err == nil && ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	return errors.Join(lc.l1.Close(), lc.l2.Close())
}

func (lc *LayeredCache) l1TTL(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.cfg.L1TTL {
		return expiration
	}
	return lc.cfg.L1TTL
}

var _ Service = (*LayeredCache)(nil)
