package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
)

const prefijoCandado = "lock:"

// liberarScript borra la clave solo si todavía guarda el token de quien la tomó.
var liberarScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renovarScript extiende el TTL solo si la clave todavía guarda el token.
var renovarScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker candados compartidos entre instancias con SET NX PX.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker construye el locker sobre un cliente existente. prefix vacío = "lock:".
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = prefijoCandado
	}
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Adquirir(ctx context.Context, clave string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+clave, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis SET NX %s: %w", clave, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Liberar(ctx context.Context, clave, token string) error {
	if err := liberarScript.Run(ctx, l.client, []string{l.prefix + clave}, token).Err(); err != nil {
		return fmt.Errorf("redis liberar %s: %w", clave, err)
	}
	return nil
}

func (l *RedisLocker) Renovar(ctx context.Context, clave, token string, ttl time.Duration) (bool, error) {
	n, err := renovarScript.Run(ctx, l.client, []string{l.prefix + clave}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis renovar %s: %w", clave, err)
	}
	return n == 1, nil
}

var _ appdte.Locker = (*RedisLocker)(nil)
