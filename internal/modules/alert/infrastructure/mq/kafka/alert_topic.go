package kafka

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

const (
	DefaultAlertTopic     = "omamori.alerts"
	DefaultAlertRetention = 7 * 24 * time.Hour
	minAlertRetention     = time.Hour
)

var (
	ErrNoBrokers       = errors.New("kafka brokers is empty")
	ErrRetentionTooLow = errors.New("kafka alert retention below one hour")
	ErrMinInSync       = errors.New("kafka min.insync.replicas exceeds replication factor")
)

// AlertTopic is the topic alert.created and alert.status_changed events go to.
// Zero values fall back to defaults in Normalize.
type AlertTopic struct {
	Name        string
	Partitions  int32
	Replication int16
	Retention   time.Duration
	MinInSync   int16
}

func (t AlertTopic) Normalize() (AlertTopic, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		t.Name = DefaultAlertTopic
	}
	if t.Partitions <= 0 {
		t.Partitions = 1
	}
	if t.Replication <= 0 {
		t.Replication = 1
	}
	switch {
	case t.Retention == 0:
		t.Retention = DefaultAlertRetention
	case t.Retention < minAlertRetention:
		return t, ErrRetentionTooLow
	}
	if t.MinInSync > t.Replication {
		return t, ErrMinInSync
	}
	return t, nil
}

// Detail renders the sarama create request. Alert events expire by age, never by compaction.
func (t AlertTopic) Detail() (*sarama.TopicDetail, error) {
	t, err := t.Normalize()
	if err != nil {
		return nil, err
	}
	retention := strconv.FormatInt(t.Retention.Milliseconds(), 10)
	cleanup := "delete"
	entries := map[string]*string{
		"retention.ms":   &retention,
		"cleanup.policy": &cleanup,
	}
	if t.MinInSync > 0 {
		isr := strconv.Itoa(int(t.MinInSync))
		entries["min.insync.replicas"] = &isr
	}
	return &sarama.TopicDetail{
		NumPartitions:     t.Partitions,
		ReplicationFactor: t.Replication,
		ConfigEntries:     entries,
	}, nil
}

// topicAdmin is the slice of sarama.ClusterAdmin provisioning needs.
type topicAdmin interface {
	ListTopics() (map[string]sarama.TopicDetail, error)
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
	CreatePartitions(topic string, count int32, assignment [][]int32, validateOnly bool) error
}

// ProvisionResult reports what EnsureAlertTopic had to do.
type ProvisionResult struct {
	Created    bool
	Partitions int32
}

func ensureAlertTopic(admin topicAdmin, t AlertTopic) (ProvisionResult, error) {
	detail, err := t.Detail()
	if err != nil {
		return ProvisionResult{}, err
	}
	t, _ = t.Normalize()

	topics, err := admin.ListTopics()
	if err != nil {
		return ProvisionResult{}, err
	}
	existing, ok := topics[t.Name]
	if !ok {
		if err := admin.CreateTopic(t.Name, detail, false); err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
			return ProvisionResult{}, err
		}
		return ProvisionResult{Created: true, Partitions: t.Partitions}, nil
	}

	// partitions can only grow; a shrink request keeps what the broker has
	if existing.NumPartitions >= t.Partitions {
		return ProvisionResult{Partitions: existing.NumPartitions}, nil
	}
	if err := admin.CreatePartitions(t.Name, t.Partitions, nil, false); err != nil {
		return ProvisionResult{}, fmt.Errorf("grow %s to %d partitions: %w", t.Name, t.Partitions, err)
	}
	return ProvisionResult{Partitions: t.Partitions}, nil
}

func EnsureAlertTopic(brokers []string, clientID string, t AlertTopic) (ProvisionResult, error) {
	if len(brokers) == 0 {
		return ProvisionResult{}, ErrNoBrokers
	}
	if _, err := t.Normalize(); err != nil {
		return ProvisionResult{}, err
	}

	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	sc.ClientID = strings.TrimSpace(clientID)

	admin, err := sarama.NewClusterAdmin(brokers, sc)
	if err != nil {
		return ProvisionResult{}, err
	}
	defer admin.Close()

	return ensureAlertTopic(admin, t)
}
