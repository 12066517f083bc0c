package initial

import (
	"context"
	"fmt"
	"time"

	"Omamori/internal/config"
	"Omamori/pkg/redis"
	"Omamori/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects when a host is configured. Without Redis the latest-risk cache
// is bypassed and the monitor runs without a lock.
func InitRedis(conf config.RedisConfig) {
	if conf.Host == "" {
		zlog.Info("redis not configured, skipping")
		return
	}
	port := conf.Port
	if port == 0 {
		port = 6379
	}
	addr := fmt.Sprintf("%s:%d", conf.Host, port)

	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.Password,
		DB:           conf.DB,
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zlog.Error("redis connect failed", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return
	}

	redis.SetClient(client)
	zlog.Info("redis connected", zap.String("addr", addr))
}
