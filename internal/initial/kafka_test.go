package initial

import (
	"testing"
	"time"

	"Omamori/internal/config"
	"Omamori/internal/modules/alert/infrastructure/mq/kafka"

	"github.com/stretchr/testify/assert"
)

func TestAlertTopicFromConfig(t *testing.T) {
	topic := alertTopicFromConfig(config.KafkaConfig{
		AlertTopic:     "site.alerts",
		Partitions:     6,
		Replication:    3,
		MinInSync:      2,
		RetentionHours: 72,
	})
	assert.Equal(t, kafka.AlertTopic{Name: "site.alerts", Partitions: 6, Replication: 3, Retention: 72 * time.Hour, MinInSync: 2}, topic)
}

func TestInitKafkaWithoutBrokers(t *testing.T) {
	pub, topic := InitKafka(config.KafkaConfig{})
	assert.Nil(t, pub)
	assert.Equal(t, kafka.DefaultAlertTopic, topic)
}

func TestInitKafkaRejectsBadTopicConfig(t *testing.T) {
	pub, topic := InitKafka(config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, AlertTopic: "ops.alerts", RetentionHours: -1})
	assert.Nil(t, pub)
	assert.Equal(t, "ops.alerts", topic)
}
