package entity

import "time"

const (
	MonitorJobPending   = 0
	MonitorJobDone      = 1
	MonitorJobCancelled = 2
)

// MonitorJob is a delayed check on a work session. When it fires and nothing was
// logged since ArmedAt, a timeout alert is raised.
type MonitorJob struct {
	Id            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	WorkSessionId int64      `gorm:"column:work_session_id;index;not null"`
	ArmedAt       time.Time  `gorm:"column:armed_at;not null"`
	DueAt         time.Time  `gorm:"column:due_at;index;not null"`
	Status        int        `gorm:"column:status;index;not null;default:0"`
	FiredAt       *time.Time `gorm:"column:fired_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (MonitorJob) TableName() string {
	return "monitor_jobs"
}
