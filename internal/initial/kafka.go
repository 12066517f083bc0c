package initial

import (
	"time"

	"Omamori/internal/config"
	"Omamori/internal/modules/alert/infrastructure/mq"
	"Omamori/internal/modules/alert/infrastructure/mq/kafka"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

func alertTopicFromConfig(conf config.KafkaConfig) kafka.AlertTopic {
	return kafka.AlertTopic{
		Name:        conf.AlertTopic,
		Partitions:  conf.Partitions,
		Replication: conf.Replication,
		Retention:   time.Duration(conf.RetentionHours) * time.Hour,
		MinInSync:   conf.MinInSync,
	}
}

// InitKafka returns nil when no brokers are configured; outbox rows then stay pending.
// An invalid topic config disables publishing as well.
func InitKafka(conf config.KafkaConfig) (mq.Publisher, string) {
	topic, err := alertTopicFromConfig(conf).Normalize()
	if err != nil {
		zlog.Error("kafka alert topic config invalid", zap.Error(err))
		return nil, topic.Name
	}
	if len(conf.Brokers) == 0 {
		zlog.Info("kafka not configured, alert events stay in the outbox")
		return nil, topic.Name
	}

	res, err := kafka.EnsureAlertTopic(conf.Brokers, conf.ClientID, topic)
	if err != nil {
		zlog.Warn("kafka ensure topic failed", zap.String("topic", topic.Name), zap.Error(err))
	} else {
		zlog.Info("kafka alert topic ready", zap.String("topic", topic.Name), zap.Bool("created", res.Created), zap.Int32("partitions", res.Partitions))
	}

	pub, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{Brokers: conf.Brokers, ClientID: conf.ClientID})
	if err != nil {
		zlog.Error("kafka producer init failed", zap.Error(err))
		return nil, topic.Name
	}
	return pub, topic.Name
}
