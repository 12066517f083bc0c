package entity

import (
	"time"

	"gorm.io/datatypes"
)

type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskCaution RiskLevel = "caution"
	RiskDanger  RiskLevel = "danger"
)

// AssessmentDetails is stored as JSON. Both parts are derived from the log.
type AssessmentDetails struct {
	Reasons []string       `json:"reasons"`
	Factors map[string]int `json:"factors"`
}

// RiskAssessment is the single derived record of a SafetyLog.
type RiskAssessment struct {
	Id          int64                                 `gorm:"column:id;primaryKey;autoIncrement"`
	SafetyLogId int64                                 `gorm:"column:safety_log_id;uniqueIndex;not null"`
	Score       int                                   `gorm:"column:score;not null;default:0"`
	Level       RiskLevel                             `gorm:"column:level;type:varchar(20);index;not null"`
	Details     datatypes.JSONType[AssessmentDetails] `gorm:"column:details"`
	CreatedAt   time.Time                             `gorm:"column:created_at"`
	UpdatedAt   time.Time                             `gorm:"column:updated_at"`
}

func (RiskAssessment) TableName() string {
	return "risk_assessments"
}
