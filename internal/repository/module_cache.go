package repository

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"modulegate_backend/internal/model"
	"modulegate_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// ModuleCache keeps modules by id in redis for re-entry reads. It is never
// consulted for access code lookups. A nil client turns every call into a miss.
type ModuleCache struct {
	Redis *redis.Client
	ttl   atomic.Int64
}

func NewModuleCache(rdb *redis.Client, ttl time.Duration) *ModuleCache {
	c := &ModuleCache{Redis: rdb}
	c.SetTTL(ttl)
	return c
}

func (c *ModuleCache) SetTTL(ttl time.Duration) {
	c.ttl.Store(int64(ttl))
}

func (c *ModuleCache) TTL() time.Duration {
	return time.Duration(c.ttl.Load())
}

func moduleKey(id string) string {
	return util.ModuleCachePrefix + id
}

// Get returns nil, nil on a miss.
func (c *ModuleCache) Get(ctx context.Context, id string) (*model.Module, error) {
	if c.Redis == nil {
		return nil, nil
	}
	data, err := c.Redis.Get(ctx, moduleKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var module model.Module
	if err := json.Unmarshal(data, &module); err != nil {
		// drop entries written by an older layout
		c.Redis.Del(ctx, moduleKey(id))
		return nil, nil
	}
	return &module, nil
}

func (c *ModuleCache) Set(ctx context.Context, module *model.Module) error {
	ttl := c.TTL()
	if c.Redis == nil || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(module)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, moduleKey(module.ID), data, ttl).Err()
}

func (c *ModuleCache) Invalidate(ctx context.Context, id string) error {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Del(ctx, moduleKey(id)).Err()
}
