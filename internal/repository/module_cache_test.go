package repository

import (
	"context"
	"testing"
	"time"

	"modulegate_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleCacheWithoutRedisIsAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewModuleCache(nil, time.Minute)

	require.NoError(t, cache.Set(ctx, &model.Module{UUIDBase: model.UUIDBase{ID: "m1"}}))
	got, err := cache.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, cache.Invalidate(ctx, "m1"))
}

func TestModuleCacheTTLIsReloadable(t *testing.T) {
	cache := NewModuleCache(nil, time.Minute)
	assert.Equal(t, time.Minute, cache.TTL())
	cache.SetTTL(5 * time.Second)
	assert.Equal(t, 5*time.Second, cache.TTL())
}

func TestModuleKey(t *testing.T) {
	assert.Equal(t, "module:abc", moduleKey("abc"))
}
