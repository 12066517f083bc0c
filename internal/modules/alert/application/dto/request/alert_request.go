package request

type CreateAlertRequest struct {
	WorkSessionId int64  `json:"work_session_id" binding:"required"`
	AlertType     string `json:"alert_type" binding:"required"`
	Severity      string `json:"severity"`
	Message       string `json:"message" binding:"max=255"`
}

type UpdateAlertStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListAlertRequest struct {
	Status        string `form:"status"`
	WorkSessionId int64  `form:"work_session_id"`
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
}
