package entity

import "time"

type WorkSessionStatus string

func ParseWorkSessionStatus(v string) (WorkSessionStatus, bool) {
	switch s := WorkSessionStatus(v); s {
	case WorkSessionInProgress, WorkSessionFinished, WorkSessionCancelled:
		return s, true
	}
	return "", false
}

const (
	WorkSessionInProgress WorkSessionStatus = "in_progress"
	WorkSessionFinished   WorkSessionStatus = "finished"
	WorkSessionCancelled  WorkSessionStatus = "cancelled"
)

// WorkSession is the span during which a worker is monitored. It owns safety logs and alerts.
type WorkSession struct {
	Id                     int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserId                 string            `gorm:"column:user_id;type:varchar(32);index;not null"`
	OrganizationId         int64             `gorm:"column:organization_id;index;not null"`
	Status                 WorkSessionStatus `gorm:"column:status;type:varchar(20);index;not null"`
	CheckInIntervalMinutes int               `gorm:"column:check_in_interval_minutes;not null;default:30"`
	StartedAt              time.Time         `gorm:"column:started_at;not null"`
	EndedAt                *time.Time        `gorm:"column:ended_at"`
	CreatedAt              time.Time         `gorm:"column:created_at"`
	UpdatedAt              time.Time         `gorm:"column:updated_at"`
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

func (s *WorkSession) InProgress() bool {
	return s.Status == WorkSessionInProgress
}

func (s *WorkSession) OwnedBy(userID string) bool {
	return userID != "" && s.UserId == userID
}
