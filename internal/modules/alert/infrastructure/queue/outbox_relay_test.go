package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/alert/infrastructure/mq"
	"Omamori/internal/modules/alert/infrastructure/persistence"
	"Omamori/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePublisher struct {
	mu   sync.Mutex
	fail bool
	err  error
	msgs []mq.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg mq.Message) (mq.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		if p.err != nil {
			return mq.PublishResult{}, p.err
		}
		return mq.PublishResult{}, errors.New("broker unavailable")
	}
	p.msgs = append(p.msgs, msg)
	return mq.PublishResult{Partition: 2, Offset: int64(len(p.msgs))}, nil
}

func (p *fakePublisher) Close() error { return nil }

func seedEvent(t *testing.T, db *gorm.DB, alertID int64, now time.Time) *entity.AlertOutboxEvent {
	t.Helper()
	a := &entity.Alert{Id: alertID, OrganizationId: 7, WorkSessionId: 3, AlertType: entity.AlertSOS, Severity: entity.SeverityCritical, Status: entity.StatusOpen}
	ev, err := entity.NewOutboxEvent(entity.EventAlertCreated, a, "", now)
	require.NoError(t, err)
	require.NoError(t, persistence.NewOutboxRepository(db).Create(context.Background(), ev))
	return ev
}

func TestOutboxRelayPublishes(t *testing.T) {
	db := testkit.NewDB(t)
	clock := testkit.NewClock()
	pub := &fakePublisher{}
	ev := seedEvent(t, db, 42, clock.T)

	relay := NewOutboxRelay(persistence.NewOutboxRepository(db), pub, "omamori.alerts", 10, 0, time.Second)
	relay.now = clock.Now

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "omamori.alerts", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, ev.EventId, msg.Headers["event_id"])
	assert.Equal(t, entity.EventAlertCreated, msg.Headers["event_type"])
	assert.Equal(t, "7", msg.Headers["organization_id"])

	var stored entity.AlertOutboxEvent
	require.NoError(t, db.First(&stored, ev.Id).Error)
	assert.Equal(t, int8(entity.OutboxPublished), stored.Status)
	assert.Equal(t, 2, stored.KafkaPartition)
	require.NotNil(t, stored.PublishedAt)

	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, pub.msgs, 1)
}

func TestOutboxRelayRetriesAfterFailure(t *testing.T) {
	db := testkit.NewDB(t)
	clock := testkit.NewClock()
	pub := &fakePublisher{fail: true}
	ev := seedEvent(t, db, 9, clock.T)

	relay := NewOutboxRelay(persistence.NewOutboxRepository(db), pub, "omamori.alerts", 10, 0, time.Second)
	relay.now = clock.Now

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var stored entity.AlertOutboxEvent
	require.NoError(t, db.First(&stored, ev.Id).Error)
	assert.Equal(t, int8(entity.OutboxFailed), stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "broker unavailable", stored.LastError)

	// not yet due
	pub.fail = false
	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clock.Advance(time.Second)
	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOutboxRelayDeadLettersAfterMaxRetries(t *testing.T) {
	db := testkit.NewDB(t)
	clock := testkit.NewClock()
	pub := &fakePublisher{fail: true}
	ev := seedEvent(t, db, 5, clock.T)

	relay := NewOutboxRelay(persistence.NewOutboxRepository(db), pub, "omamori.alerts", 10, 2, time.Second)
	relay.now = clock.Now

	_, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = relay.RunOnce(context.Background())
	require.NoError(t, err)

	var stored entity.AlertOutboxEvent
	require.NoError(t, db.First(&stored, ev.Id).Error)
	assert.Equal(t, int8(entity.OutboxDead), stored.Status)
	assert.Equal(t, 2, stored.RetryCount)

	// dead rows are never claimed again, even once the broker is back
	pub.fail = false
	clock.Advance(time.Hour)
	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, pub.msgs)
}

func TestOutboxRelayKeepsLastErrorValidUTF8(t *testing.T) {
	db := testkit.NewDB(t)
	clock := testkit.NewClock()
	pub := &fakePublisher{fail: true, err: errors.New(strings.Repeat("a", 499) + "é broker gone")}
	ev := seedEvent(t, db, 6, clock.T)

	relay := NewOutboxRelay(persistence.NewOutboxRepository(db), pub, "omamori.alerts", 10, 0, time.Second)
	relay.now = clock.Now
	_, err := relay.RunOnce(context.Background())
	require.NoError(t, err)

	var stored entity.AlertOutboxEvent
	require.NoError(t, db.First(&stored, ev.Id).Error)
	assert.True(t, utf8.ValidString(stored.LastError))
	assert.Equal(t, strings.Repeat("a", 499), stored.LastError)
}

func TestComputeNextRetry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(500*time.Millisecond), computeNextRetry(now, 0))
	assert.Equal(t, now.Add(2*time.Second), computeNextRetry(now, 2))
	assert.Equal(t, now.Add(5*time.Minute), computeNextRetry(now, 30))
}

func TestOutboxRelayRunStopsOnCancel(t *testing.T) {
	db := testkit.NewDB(t)
	relay := NewOutboxRelay(persistence.NewOutboxRepository(db), &fakePublisher{}, "omamori.alerts", 10, 0, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
