package request

import "time"

type StartWorkSessionRequest struct {
	OrganizationId         int64 `json:"organization_id" binding:"required"`
	CheckInIntervalMinutes int   `json:"check_in_interval_minutes"`
}

// CreateSafetyLogRequest carries one device reading. Every sensor field is optional.
type CreateSafetyLogRequest struct {
	LoggedAt         *time.Time `json:"logged_at"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	BatteryLevel     *int       `json:"battery_level"`
	TriggerType      string     `json:"trigger_type" binding:"required"`
	GpsAccuracy      *float64   `json:"gps_accuracy"`
	WeatherTemp      *float64   `json:"weather_temp"`
	WeatherCondition string     `json:"weather_condition"`
	InactiveMinutes  *int       `json:"inactive_minutes"`
	IsOfflineSync    bool       `json:"is_offline_sync"`
}

// ListWorkSessionRequest filters an organization's sessions; Status is optional.
type ListWorkSessionRequest struct {
	PageRequest
	Status string `form:"status"`
}

type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func (p PageRequest) Normalize(defaultSize, maxSize int) (offset, limit, page int) {
	page = p.Page
	if page <= 0 {
		page = 1
	}
	limit = p.PageSize
	if limit <= 0 || limit > maxSize {
		limit = defaultSize
	}
	return (page - 1) * limit, limit, page
}
