package persistence

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/alert/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type outboxRepositoryImpl struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) repository.OutboxRepository {
	return &outboxRepositoryImpl{db: db}
}

func (r *outboxRepositoryImpl) Create(ctx context.Context, ev *entity.AlertOutboxEvent) error {
	if ev == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(ev).Error
}

// claimLease keeps claimed rows away from other relays while they are being published.
const claimLease = time.Minute

// ClaimForPublish picks pending or failed events whose retry time has come and pushes
// their retry time past the lease. Rows locked by another relay are skipped.
func (r *outboxRepositoryImpl) ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.AlertOutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []entity.AlertOutboxEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var events []entity.AlertOutboxEvent
		err := tx.Where("status IN ?", []int8{entity.OutboxPending, entity.OutboxFailed}).
			Where("next_retry_at <= ?", now).
			Order("id ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Find(&events).Error
		if err != nil {
			return err
		}
		if len(events) == 0 {
			out = []entity.AlertOutboxEvent{}
			return nil
		}

		ids := make([]int64, 0, len(events))
		for i := range events {
			ids = append(ids, events[i].Id)
		}
		if err := tx.Model(&entity.AlertOutboxEvent{}).
			Where("id IN ?", ids).
			Update("next_retry_at", now.Add(claimLease)).Error; err != nil {
			return err
		}
		out = events
		return nil
	})
	return out, err
}

func (r *outboxRepositoryImpl) MarkPublished(ctx context.Context, id int64, topic string, partition int, offset int64, publishedAt time.Time) error {
	updates := map[string]any{
		"status":          entity.OutboxPublished,
		"kafka_topic":     strings.TrimSpace(topic),
		"kafka_partition": partition,
		"kafka_offset":    offset,
		"published_at":    publishedAt,
		"last_error":      "",
	}
	return r.db.WithContext(ctx).Model(&entity.AlertOutboxEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *outboxRepositoryImpl) MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error {
	updates := map[string]any{
		"status":        entity.OutboxFailed,
		"retry_count":   gorm.Expr("retry_count + 1"),
		"next_retry_at": nextRetryAt,
		"last_error":    truncateError(errMsg),
	}
	return r.db.WithContext(ctx).Model(&entity.AlertOutboxEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *outboxRepositoryImpl) MarkDead(ctx context.Context, id int64, errMsg string) error {
	updates := map[string]any{
		"status":      entity.OutboxDead,
		"retry_count": gorm.Expr("retry_count + 1"),
		"last_error":  truncateError(errMsg),
	}
	return r.db.WithContext(ctx).Model(&entity.AlertOutboxEvent{}).Where("id = ?", id).Updates(updates).Error
}

const maxErrorBytes = 500

// truncateError fits msg into last_error without splitting a rune.
func truncateError(msg string) string {
	msg = strings.TrimSpace(msg)
	if len(msg) <= maxErrorBytes {
		return msg
	}
	cut := maxErrorBytes
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
