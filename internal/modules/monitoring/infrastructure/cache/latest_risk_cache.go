package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/repository"
	myredis "Omamori/pkg/redis"

	"github.com/redis/go-redis/v9"
)

type latestRiskCacheImpl struct {
	ttl time.Duration
}

func NewLatestRiskCache(ttl time.Duration) repository.LatestRiskCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &latestRiskCacheImpl{ttl: ttl}
}

func latestRiskKey(sessionID int64) string {
	return fmt.Sprintf("omamori:session:%d:risk", sessionID)
}

func (c *latestRiskCacheImpl) Get(ctx context.Context, sessionID int64) (*entity.LatestRisk, error) {
	if !myredis.IsConnected() {
		return nil, nil
	}
	raw, err := myredis.Get(ctx, latestRiskKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r entity.LatestRisk
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *latestRiskCacheImpl) Set(ctx context.Context, risk *entity.LatestRisk) error {
	if !myredis.IsConnected() || risk == nil {
		return nil
	}
	b, err := json.Marshal(risk)
	if err != nil {
		return err
	}
	return myredis.Set(ctx, latestRiskKey(risk.WorkSessionId), b, c.ttl)
}

func (c *latestRiskCacheImpl) Delete(ctx context.Context, sessionID int64) error {
	if !myredis.IsConnected() {
		return nil
	}
	_, err := myredis.Del(ctx, latestRiskKey(sessionID))
	return err
}
