package queue

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"Omamori/internal/modules/alert/domain/repository"
	"Omamori/internal/modules/alert/infrastructure/mq"
	"Omamori/pkg/metrics"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

// OutboxRelay moves alert outbox rows to Kafka.
type OutboxRelay struct {
	repo         repository.OutboxRepository
	pub          mq.Publisher
	topic        string
	batchSize    int
	maxRetries   int
	pollInterval time.Duration
	now          func() time.Time
}

const defaultMaxRetries = 20

// NewOutboxRelay builds a relay. An event that fails maxRetries times is dead-lettered.
func NewOutboxRelay(repo repository.OutboxRepository, pub mq.Publisher, topic string, batchSize, maxRetries int, pollInterval time.Duration) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxRelay{
		repo:         repo,
		pub:          pub,
		topic:        strings.TrimSpace(topic),
		batchSize:    batchSize,
		maxRetries:   maxRetries,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Run polls until ctx is cancelled. Claim errors back off exponentially up to 30s.
func (r *OutboxRelay) Run(ctx context.Context) error {
	if r.repo == nil {
		return errors.New("outbox repo is nil")
	}
	if r.pub == nil {
		return errors.New("publisher is nil")
	}

	backoff := r.pollInterval
	for {
		n, err := r.RunOnce(ctx)
		wait := r.pollInterval
		switch {
		case err != nil:
			wait = backoff
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		case n > 0:
			backoff = r.pollInterval
			wait = 0
		default:
			backoff = r.pollInterval
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	events, err := r.repo.ClaimForPublish(ctx, now, r.batchSize)
	if err != nil {
		zlog.Warn("alert outbox relay claim failed", zap.Error(err))
		return 0, err
	}

	published := 0
	for i := range events {
		ev := events[i]
		if r.topic == "" {
			_ = r.repo.MarkPublishFailed(ctx, ev.Id, now.Add(5*time.Minute), "kafka topic is empty")
			continue
		}

		res, pubErr := r.pub.Publish(ctx, mq.Message{
			Topic: r.topic,
			Key:   []byte(strconv.FormatInt(ev.AlertId, 10)),
			Value: []byte(ev.PayloadJson),
			Headers: map[string]string{
				"event_id":        ev.EventId,
				"event_type":      ev.EventType,
				"organization_id": strconv.FormatInt(ev.OrganizationId, 10),
			},
		})
		if pubErr != nil {
			metrics.OutboxPublished(false)
			r.fail(ctx, ev.Id, ev.RetryCount, now, pubErr)
			continue
		}

		metrics.OutboxPublished(true)
		if err := r.repo.MarkPublished(ctx, ev.Id, r.topic, int(res.Partition), res.Offset, r.now()); err != nil {
			zlog.Warn("alert outbox relay mark published failed", zap.Int64("id", ev.Id), zap.Error(err))
			continue
		}
		published++
	}
	return published, nil
}

func (r *OutboxRelay) fail(ctx context.Context, id int64, retryCount int, now time.Time, pubErr error) {
	if retryCount+1 >= r.maxRetries {
		zlog.Error("alert outbox event dead-lettered", zap.Int64("id", id), zap.Int("retries", retryCount+1), zap.Error(pubErr))
		metrics.OutboxDeadLettered()
		if err := r.repo.MarkDead(ctx, id, pubErr.Error()); err != nil {
			zlog.Warn("alert outbox relay mark dead failed", zap.Int64("id", id), zap.Error(err))
		}
		return
	}
	next := computeNextRetry(now, retryCount)
	if err := r.repo.MarkPublishFailed(ctx, id, next, pubErr.Error()); err != nil {
		zlog.Warn("alert outbox relay mark failed", zap.Int64("id", id), zap.Error(err))
	}
}

func computeNextRetry(now time.Time, retryCount int) time.Time {
	if retryCount < 0 {
		retryCount = 0
	}
	d := 500 * time.Millisecond
	for i := 0; i < retryCount && d < 5*time.Minute; i++ {
		d *= 2
	}
	if d > 5*time.Minute {
		d = 5 * time.Minute
	}
	return now.Add(d)
}
