//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/dte-api/internal/infrastructure/cache"
)

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	c, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "no se pudo iniciar Redis")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := cache.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	l := cache.NewRedisLocker(rdb, "")
	otraInstancia := cache.NewRedisLocker(rdb, "")

	token, ok, err := l.Adquirir(ctx, "dte:transmision:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = otraInstancia.Adquirir(ctx, "dte:transmision:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "el candado se comparte entre instancias")

	ttl, err := rdb.PTTL(ctx, "lock:dte:transmision:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, otraInstancia.Liberar(ctx, "dte:transmision:1", "token-ajeno"))
	_, ok, _ = otraInstancia.Adquirir(ctx, "dte:transmision:1", time.Minute)
	assert.False(t, ok, "un token ajeno no libera el candado")

	require.NoError(t, l.Liberar(ctx, "dte:transmision:1", token))
	_, ok, _ = otraInstancia.Adquirir(ctx, "dte:transmision:1", time.Minute)
	assert.True(t, ok)

	renovable, ok, _ := l.Adquirir(ctx, "renovable", 200*time.Millisecond)
	require.True(t, ok)
	ok, err = l.Renovar(ctx, "renovable", renovable, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ttl, err = rdb.PTTL(ctx, "lock:renovable").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second, "Renovar extiende el TTL")
	ok, err = otraInstancia.Renovar(ctx, "renovable", "token-ajeno", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = l.Adquirir(ctx, "corto", 100*time.Millisecond)
	require.True(t, ok)
	assert.Eventually(t, func() bool {
		_, ok, _ := otraInstancia.Adquirir(ctx, "corto", time.Minute)
		return ok
	}, 2*time.Second, 50*time.Millisecond, "el candado vence con su TTL")
}
