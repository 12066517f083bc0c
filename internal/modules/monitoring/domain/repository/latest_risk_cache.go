package repository

import (
	"context"

	"Omamori/internal/modules/monitoring/domain/entity"
)

type LatestRiskCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, sessionID int64) (*entity.LatestRisk, error)
	Set(ctx context.Context, risk *entity.LatestRisk) error
	Delete(ctx context.Context, sessionID int64) error
}
