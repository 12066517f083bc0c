package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotConnected = errors.New("redis not connected")

var client *redis.Client

// SetClient is called by internal/initial once the connection is verified.
func SetClient(c *redis.Client) {
	client = c
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

func IsConnected() bool {
	return client != nil
}

func checkClient() error {
	if client == nil {
		return ErrNotConnected
	}
	return nil
}

// Get returns redis.Nil when the key is missing.
func Get(ctx context.Context, key string) (string, error) {
	if err := checkClient(); err != nil {
		return "", err
	}
	return client.Get(ctx, key).Result()
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := checkClient(); err != nil {
		return err
	}
	return client.Set(ctx, key, value, expiration).Err()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock sets key to a fresh token unless it is already held. The token is
// needed to release it.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := checkClient(); err != nil {
		return "", false, err
	}
	token := uuid.NewString()
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseLock deletes key only while it still holds token, so a holder whose TTL
// ran out cannot drop the next holder's lock.
func ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	if err := checkClient(); err != nil {
		return false, err
	}
	n, err := releaseScript.Run(ctx, client, []string{key}, token).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Del(ctx, keys...).Result()
}

func Ping(ctx context.Context) error {
	if err := checkClient(); err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}
