package repository

import (
	"context"
	"time"

	"Omamori/internal/modules/alert/domain/entity"
)

type OutboxRepository interface {
	Create(ctx context.Context, ev *entity.AlertOutboxEvent) error
	ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.AlertOutboxEvent, error)
	MarkPublished(ctx context.Context, id int64, topic string, partition int, offset int64, publishedAt time.Time) error
	MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error
	MarkDead(ctx context.Context, id int64, errMsg string) error
}
