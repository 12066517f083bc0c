package entity

import "time"

type TriggerType string

const (
	TriggerHeartbeat TriggerType = "heartbeat"
	TriggerCheckIn   TriggerType = "check_in"
	TriggerSOS       TriggerType = "sos"
)

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerHeartbeat, TriggerCheckIn, TriggerSOS:
		return true
	}
	return false
}

// SafetyLog is one reading submitted by a worker device. Rows are never updated.
type SafetyLog struct {
	Id               int64       `gorm:"column:id;primaryKey;autoIncrement"`
	WorkSessionId    int64       `gorm:"column:work_session_id;index;not null"`
	LoggedAt         time.Time   `gorm:"column:logged_at;index;not null"`
	Latitude         *float64    `gorm:"column:latitude"`
	Longitude        *float64    `gorm:"column:longitude"`
	BatteryLevel     *int        `gorm:"column:battery_level"`
	TriggerType      TriggerType `gorm:"column:trigger_type;type:varchar(20);not null"`
	GpsAccuracy      *float64    `gorm:"column:gps_accuracy"`
	WeatherTemp      *float64    `gorm:"column:weather_temp"`
	WeatherCondition string      `gorm:"column:weather_condition;type:varchar(50)"`
	InactiveMinutes  *int        `gorm:"column:inactive_minutes"`
	IsOfflineSync    bool        `gorm:"column:is_offline_sync;not null;default:false"`
	UndoExpiresAt    *time.Time  `gorm:"column:undo_expires_at"`
	CreatedAt        time.Time   `gorm:"column:created_at"`

	RiskAssessment *RiskAssessment `gorm:"foreignKey:SafetyLogId;constraint:OnDelete:CASCADE"`
}

func (SafetyLog) TableName() string {
	return "safety_logs"
}
