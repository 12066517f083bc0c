package respond

import (
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
)

type WorkSessionRespond struct {
	Id                     int64      `json:"id"`
	UserId                 string     `json:"user_id"`
	OrganizationId         int64      `json:"organization_id"`
	Status                 string     `json:"status"`
	CheckInIntervalMinutes int        `json:"check_in_interval_minutes"`
	StartedAt              time.Time  `json:"started_at"`
	EndedAt                *time.Time `json:"ended_at,omitempty"`
}

type SafetyLogRespond struct {
	Id               int64              `json:"id"`
	WorkSessionId    int64              `json:"work_session_id"`
	LoggedAt         time.Time          `json:"logged_at"`
	Latitude         *float64           `json:"latitude,omitempty"`
	Longitude        *float64           `json:"longitude,omitempty"`
	BatteryLevel     *int               `json:"battery_level,omitempty"`
	TriggerType      string             `json:"trigger_type"`
	GpsAccuracy      *float64           `json:"gps_accuracy,omitempty"`
	WeatherTemp      *float64           `json:"weather_temp,omitempty"`
	WeatherCondition string             `json:"weather_condition,omitempty"`
	InactiveMinutes  *int               `json:"inactive_minutes,omitempty"`
	IsOfflineSync    bool               `json:"is_offline_sync"`
	Assessment       *AssessmentRespond `json:"assessment,omitempty"`
}

type AssessmentRespond struct {
	SafetyLogId             int64          `json:"safety_log_id"`
	Score                   int            `json:"score"`
	RiskLevel               string         `json:"risk_level"`
	RiskReasons             []string       `json:"risk_reasons"`
	Factors                 map[string]int `json:"factors"`
	NextPollIntervalSeconds int            `json:"next_poll_interval_seconds"`
}

type CreateSafetyLogRespond struct {
	SafetyLog     SafetyLogRespond  `json:"safety_log"`
	Assessment    AssessmentRespond `json:"assessment"`
	UndoExpiresAt *time.Time        `json:"undo_expires_at"`
	AlertId       *int64            `json:"alert_id,omitempty"`
}

type WorkSessionListRespond struct {
	Items []WorkSessionRespond `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
}

type SafetyLogListRespond struct {
	Items []SafetyLogRespond `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
}

func FromWorkSession(s *entity.WorkSession) WorkSessionRespond {
	return WorkSessionRespond{
		Id:                     s.Id,
		UserId:                 s.UserId,
		OrganizationId:         s.OrganizationId,
		Status:                 string(s.Status),
		CheckInIntervalMinutes: s.CheckInIntervalMinutes,
		StartedAt:              s.StartedAt,
		EndedAt:                s.EndedAt,
	}
}

func FromSafetyLog(l *entity.SafetyLog) SafetyLogRespond {
	return SafetyLogRespond{
		Id:               l.Id,
		WorkSessionId:    l.WorkSessionId,
		LoggedAt:         l.LoggedAt,
		Latitude:         l.Latitude,
		Longitude:        l.Longitude,
		BatteryLevel:     l.BatteryLevel,
		TriggerType:      string(l.TriggerType),
		GpsAccuracy:      l.GpsAccuracy,
		WeatherTemp:      l.WeatherTemp,
		WeatherCondition: l.WeatherCondition,
		InactiveMinutes:  l.InactiveMinutes,
		IsOfflineSync:    l.IsOfflineSync,
	}
}
