package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventAlertCreated       = "alert.created"
	EventAlertStatusChanged = "alert.status_changed"
)

const (
	OutboxPending   = 0
	OutboxPublished = 1
	OutboxFailed    = 2
	// OutboxDead rows ran out of retries and are never claimed again.
	OutboxDead = 3
)

// AlertOutboxEvent is written in the same transaction as the alert change and
// relayed to Kafka afterwards.
type AlertOutboxEvent struct {
	Id             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	EventId        string     `gorm:"column:event_id;type:char(36);uniqueIndex;not null"`
	EventType      string     `gorm:"column:event_type;type:varchar(40);not null"`
	AlertId        int64      `gorm:"column:alert_id;index;not null"`
	OrganizationId int64      `gorm:"column:organization_id;not null"`
	PayloadJson    string     `gorm:"column:payload_json;type:text;not null"`
	Status         int8       `gorm:"column:status;index;not null;default:0"`
	RetryCount     int        `gorm:"column:retry_count;not null;default:0"`
	NextRetryAt    time.Time  `gorm:"column:next_retry_at;index"`
	KafkaTopic     string     `gorm:"column:kafka_topic;type:varchar(100)"`
	KafkaPartition int        `gorm:"column:kafka_partition"`
	KafkaOffset    int64      `gorm:"column:kafka_offset"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	LastError      string     `gorm:"column:last_error;type:varchar(500)"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (AlertOutboxEvent) TableName() string {
	return "alert_outbox_events"
}

// AlertEventPayload is what goes on the wire, both to Kafka and to websocket clients.
type AlertEventPayload struct {
	EventId        string     `json:"event_id"`
	EventType      string     `json:"event_type"`
	AlertId        int64      `json:"alert_id"`
	OrganizationId int64      `json:"organization_id"`
	WorkSessionId  int64      `json:"work_session_id"`
	SafetyLogId    *int64     `json:"safety_log_id,omitempty"`
	AlertType      AlertType  `json:"alert_type"`
	Severity       Severity   `json:"severity"`
	Status         Status     `json:"status"`
	PreviousStatus Status     `json:"previous_status,omitempty"`
	Message        string     `json:"message"`
	HandledBy      *string    `json:"handled_by_user_id,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// NewOutboxEvent snapshots the alert. The alert must already have an id.
func NewOutboxEvent(eventType string, a *Alert, previous Status, now time.Time) (*AlertOutboxEvent, error) {
	payload := AlertEventPayload{
		EventId:        uuid.NewString(),
		EventType:      eventType,
		AlertId:        a.Id,
		OrganizationId: a.OrganizationId,
		WorkSessionId:  a.WorkSessionId,
		SafetyLogId:    a.SafetyLogId,
		AlertType:      a.AlertType,
		Severity:       a.Severity,
		Status:         a.Status,
		PreviousStatus: previous,
		Message:        a.Message,
		HandledBy:      a.HandledByUserId,
		ResolvedAt:     a.ResolvedAt,
		OccurredAt:     now,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &AlertOutboxEvent{
		EventId:        payload.EventId,
		EventType:      eventType,
		AlertId:        a.Id,
		OrganizationId: a.OrganizationId,
		PayloadJson:    string(b),
		Status:         OutboxPending,
		NextRetryAt:    now,
		CreatedAt:      now,
	}, nil
}
