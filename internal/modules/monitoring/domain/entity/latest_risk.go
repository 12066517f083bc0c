package entity

import "time"

// LatestRisk is the most recent assessment of a work session as served to dashboards.
// It is cached, not stored in its own table.
type LatestRisk struct {
	WorkSessionId   int64          `json:"work_session_id"`
	SafetyLogId     int64          `json:"safety_log_id"`
	Score           int            `json:"score"`
	Level           RiskLevel      `json:"risk_level"`
	Reasons         []string       `json:"risk_reasons"`
	Factors         map[string]int `json:"factors"`
	NextPollSeconds int            `json:"next_poll_interval_seconds"`
	AssessedAt      time.Time      `json:"assessed_at"`
}
