package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	topics    map[string]sarama.TopicDetail
	listErr   error
	created   map[string]*sarama.TopicDetail
	grownTo   map[string]int32
	createErr error
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		topics:  make(map[string]sarama.TopicDetail),
		created: make(map[string]*sarama.TopicDetail),
		grownTo: make(map[string]int32),
	}
}

func (a *fakeAdmin) ListTopics() (map[string]sarama.TopicDetail, error) {
	return a.topics, a.listErr
}

func (a *fakeAdmin) CreateTopic(topic string, detail *sarama.TopicDetail, _ bool) error {
	if a.createErr != nil {
		return a.createErr
	}
	a.created[topic] = detail
	return nil
}

func (a *fakeAdmin) CreatePartitions(topic string, count int32, _ [][]int32, _ bool) error {
	a.grownTo[topic] = count
	return nil
}

func TestAlertTopicNormalize(t *testing.T) {
	got, err := AlertTopic{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, AlertTopic{Name: DefaultAlertTopic, Partitions: 1, Replication: 1, Retention: DefaultAlertRetention}, got)

	got, err = AlertTopic{Name: " ops.alerts ", Partitions: 6, Replication: 3, Retention: 48 * time.Hour, MinInSync: 2}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "ops.alerts", got.Name)
	assert.Equal(t, int32(6), got.Partitions)
	assert.Equal(t, int16(3), got.Replication)

	_, err = AlertTopic{Retention: time.Minute}.Normalize()
	assert.ErrorIs(t, err, ErrRetentionTooLow)

	_, err = AlertTopic{Replication: 1, MinInSync: 2}.Normalize()
	assert.ErrorIs(t, err, ErrMinInSync)
}

func TestAlertTopicDetail(t *testing.T) {
	d, err := AlertTopic{Partitions: 3, Replication: 3, MinInSync: 2}.Detail()
	require.NoError(t, err)
	assert.Equal(t, int32(3), d.NumPartitions)
	assert.Equal(t, int16(3), d.ReplicationFactor)
	assert.Equal(t, "604800000", *d.ConfigEntries["retention.ms"])
	assert.Equal(t, "delete", *d.ConfigEntries["cleanup.policy"])
	assert.Equal(t, "2", *d.ConfigEntries["min.insync.replicas"])

	d, err = AlertTopic{}.Detail()
	require.NoError(t, err)
	assert.NotContains(t, d.ConfigEntries, "min.insync.replicas")
}

func TestEnsureAlertTopic(t *testing.T) {
	t.Run("creates missing topic", func(t *testing.T) {
		admin := newFakeAdmin()
		res, err := ensureAlertTopic(admin, AlertTopic{Partitions: 3})
		require.NoError(t, err)
		assert.Equal(t, ProvisionResult{Created: true, Partitions: 3}, res)
		require.Contains(t, admin.created, DefaultAlertTopic)
		assert.Equal(t, int32(3), admin.created[DefaultAlertTopic].NumPartitions)
	})

	t.Run("lost create race counts as created", func(t *testing.T) {
		admin := newFakeAdmin()
		admin.createErr = sarama.ErrTopicAlreadyExists
		res, err := ensureAlertTopic(admin, AlertTopic{})
		require.NoError(t, err)
		assert.True(t, res.Created)
	})

	t.Run("grows an existing topic", func(t *testing.T) {
		admin := newFakeAdmin()
		admin.topics[DefaultAlertTopic] = sarama.TopicDetail{NumPartitions: 1}
		res, err := ensureAlertTopic(admin, AlertTopic{Partitions: 4})
		require.NoError(t, err)
		assert.Equal(t, ProvisionResult{Partitions: 4}, res)
		assert.Equal(t, int32(4), admin.grownTo[DefaultAlertTopic])
		assert.Empty(t, admin.created)
	})

	t.Run("never shrinks", func(t *testing.T) {
		admin := newFakeAdmin()
		admin.topics[DefaultAlertTopic] = sarama.TopicDetail{NumPartitions: 8}
		res, err := ensureAlertTopic(admin, AlertTopic{Partitions: 2})
		require.NoError(t, err)
		assert.Equal(t, int32(8), res.Partitions)
		assert.Empty(t, admin.grownTo)
	})

	t.Run("invalid config touches nothing", func(t *testing.T) {
		admin := newFakeAdmin()
		admin.listErr = errors.New("must not be called")
		_, err := ensureAlertTopic(admin, AlertTopic{Retention: time.Second})
		assert.ErrorIs(t, err, ErrRetentionTooLow)
	})

	t.Run("list failure", func(t *testing.T) {
		admin := newFakeAdmin()
		admin.listErr = errors.New("broker down")
		_, err := ensureAlertTopic(admin, AlertTopic{})
		assert.EqualError(t, err, "broker down")
	})
}

func TestEnsureAlertTopicNeedsBrokers(t *testing.T) {
	_, err := EnsureAlertTopic(nil, "omamori", AlertTopic{})
	assert.ErrorIs(t, err, ErrNoBrokers)
}
