package respond

import (
	"time"

	"Omamori/internal/modules/alert/domain/entity"
)

type AlertRespond struct {
	Id              int64      `json:"id"`
	WorkSessionId   int64      `json:"work_session_id"`
	OrganizationId  int64      `json:"organization_id"`
	SafetyLogId     *int64     `json:"safety_log_id,omitempty"`
	AlertType       string     `json:"alert_type"`
	Severity        string     `json:"severity"`
	Status          string     `json:"status"`
	Message         string     `json:"message"`
	HandledByUserId *string    `json:"handled_by_user_id,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type AlertListRespond struct {
	Items []AlertRespond `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
}

// AlertPush is the websocket frame sent to organization admins.
type AlertPush struct {
	Type  string       `json:"type"`
	Event string       `json:"event"`
	Alert AlertRespond `json:"alert"`
}

func FromEntity(a *entity.Alert) AlertRespond {
	return AlertRespond{
		Id:              a.Id,
		WorkSessionId:   a.WorkSessionId,
		OrganizationId:  a.OrganizationId,
		SafetyLogId:     a.SafetyLogId,
		AlertType:       string(a.AlertType),
		Severity:        string(a.Severity),
		Status:          string(a.Status),
		Message:         a.Message,
		HandledByUserId: a.HandledByUserId,
		ResolvedAt:      a.ResolvedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
