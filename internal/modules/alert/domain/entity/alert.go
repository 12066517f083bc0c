package entity

import "time"

type AlertType string

const (
	AlertSOS        AlertType = "sos"
	AlertRiskHigh   AlertType = "risk_high"
	AlertRiskMedium AlertType = "risk_medium"
	AlertBatteryLow AlertType = "battery_low"
	AlertTimeout    AlertType = "timeout"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertSOS, AlertRiskHigh, AlertRiskMedium, AlertBatteryLow, AlertTimeout:
		return true
	}
	return false
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// DefaultSeverity is used when an alert is raised without an explicit severity.
func (t AlertType) DefaultSeverity() Severity {
	switch t {
	case AlertSOS:
		return SeverityCritical
	case AlertRiskHigh, AlertTimeout:
		return SeverityHigh
	case AlertRiskMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Alert is raised to the admins of the work session's organization.
// HandledByUserId and ResolvedAt are only ever set by Resolve.
type Alert struct {
	Id              int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorkSessionId   int64      `gorm:"column:work_session_id;index;not null" json:"work_session_id"`
	OrganizationId  int64      `gorm:"column:organization_id;index;not null" json:"organization_id"`
	SafetyLogId     *int64     `gorm:"column:safety_log_id;index" json:"safety_log_id,omitempty"`
	AlertType       AlertType  `gorm:"column:alert_type;type:varchar(20);index;not null" json:"alert_type"`
	Severity        Severity   `gorm:"column:severity;type:varchar(20);not null" json:"severity"`
	Status          Status     `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	Message         string     `gorm:"column:message;type:varchar(255)" json:"message"`
	HandledByUserId *string    `gorm:"column:handled_by_user_id;type:varchar(32)" json:"handled_by_user_id,omitempty"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// TransitionTo moves the alert to next. Resolving stamps the actor and the time;
// any other status leaves the resolution fields as they are.
func (a *Alert) TransitionTo(next Status, actorID string, now time.Time) error {
	if err := a.Status.CheckTransition(next); err != nil {
		return err
	}
	a.Status = next
	if next == StatusResolved {
		actor := actorID
		at := now
		a.HandledByUserId = &actor
		a.ResolvedAt = &at
	}
	a.UpdatedAt = now
	return nil
}
